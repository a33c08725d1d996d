package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"eventshuffle/internal/domain"
	"eventshuffle/pkg/utils"
)

const calendarProductID = "-//eventshuffle//results//EN"

// RenderResultsCalendar encodes the suitable dates as all-day VEVENTs
func RenderResultsCalendar(results *domain.ResultsView, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, calendarProductID)

	for _, suitable := range results.SuitableDates {
		day, err := utils.ParseDateKey(suitable.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to export date: %w", err)
		}

		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, fmt.Sprintf("event-%d-%s@eventshuffle", results.ID, suitable.Date))
		ve.Props.SetText(ical.PropSummary, results.Name)
		ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		ve.Props.SetDate(ical.PropDateTimeStart, day)
		ve.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
		if len(suitable.People) > 0 {
			ve.Props.SetText(ical.PropDescription, "Attendees: "+strings.Join(suitable.People, ", "))
		}
		cal.Children = append(cal.Children, ve)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}

	return buf.Bytes(), nil
}
