package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventHeader_HasDate(t *testing.T) {
	header := &EventHeader{
		ID:    1,
		Name:  "Jake's secret party",
		Dates: []string{"2014-01-01", "2014-01-05", "2014-01-12"},
	}

	assert.True(t, header.HasDate("2014-01-05"))
	assert.True(t, header.HasDate("2014-01-05T18:30:00Z"))
	assert.True(t, header.HasDate("20140112"))
	assert.False(t, header.HasDate("2014-01-06"))
	assert.False(t, header.HasDate("not a date"))
}

func TestInvalidVoteDateError(t *testing.T) {
	err := fmt.Errorf("submit vote: %w", &InvalidVoteDateError{EventID: 7, Date: "2014-02-01"})

	assert.True(t, errors.Is(err, ErrInvalidVoteDate))
	assert.Contains(t, err.Error(), `"2014-02-01"`)

	var target *InvalidVoteDateError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, int64(7), target.EventID)
}

func TestInvalidDateError_Unwraps(t *testing.T) {
	cause := errors.New("bad layout")
	err := &InvalidDateError{Date: "tomorrow", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `invalid date "tomorrow": bad layout`, err.Error())
}
