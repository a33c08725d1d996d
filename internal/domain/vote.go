package domain

// Vote is one participant's availability for one candidate date
type Vote struct {
	Seq     int64  `json:"-"`
	EventID int64  `json:"event_id"`
	Name    string `json:"name"`
	Date    string `json:"date"`
}

// DateVotes lists the people who can attend on a date
type DateVotes struct {
	Date   string   `json:"date"`
	People []string `json:"people"`
}

// CreateVoteRequest represents a vote submission request. Votes must be present
// but may be empty, which records the participant with no suitable date.
type CreateVoteRequest struct {
	Name  string   `json:"name" validate:"required"`
	Votes []string `json:"votes" validate:"required,dive,required"`
}
