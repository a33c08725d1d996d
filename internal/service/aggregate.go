package service

import (
	"eventshuffle/internal/domain"
)

// AggregateVotes groups votes by date. Dates appear in the order their first vote
// was stored and people in vote order; dates nobody voted for are left out.
func AggregateVotes(votes []domain.Vote) []domain.DateVotes {
	result := make([]domain.DateVotes, 0)
	index := make(map[string]int)

	for _, vote := range votes {
		i, ok := index[vote.Date]
		if !ok {
			i = len(result)
			index[vote.Date] = i
			result = append(result, domain.DateVotes{Date: vote.Date, People: []string{}})
		}
		result[i].People = append(result[i].People, vote.Name)
	}

	return result
}

// SuitableDates keeps the dates every participant can attend. With no participants
// every candidate date qualifies, each with an empty people list.
func SuitableDates(event *domain.Event, view []domain.DateVotes) []domain.DateVotes {
	if len(event.Participants) == 0 {
		result := make([]domain.DateVotes, 0, len(event.Dates))
		for _, date := range event.Dates {
			result = append(result, domain.DateVotes{Date: date, People: []string{}})
		}
		return result
	}

	result := make([]domain.DateVotes, 0)
	for _, entry := range view {
		if len(entry.People) == len(event.Participants) {
			result = append(result, entry)
		}
	}

	return result
}
