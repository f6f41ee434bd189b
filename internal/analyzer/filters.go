package analyzer

import (
	"time"

	"github.com/raphaelgruber/chatlens/internal/models"
)

// FilterOptions narrows a conversation before analysis. Zero values impose
// no constraint.
type FilterOptions struct {
	// Participant keeps only this sender's messages (case-insensitive).
	// System messages are always kept.
	Participant string

	// StartDate/EndDate bound message timestamps, inclusive on both ends.
	StartDate *time.Time
	EndDate   *time.Time
}

// ApplyFilters applies the date-range filter, then the participant filter.
// The input conversation is never mutated; the result is a fresh value.
func ApplyFilters(conversation *models.Conversation, opts FilterOptions) *models.Conversation {
	result := conversation

	if opts.StartDate != nil || opts.EndDate != nil {
		result = result.FilterByDateRange(opts.StartDate, opts.EndDate)
	}

	if opts.Participant != "" {
		result = result.FilterByParticipant(opts.Participant)
	}

	return result
}
