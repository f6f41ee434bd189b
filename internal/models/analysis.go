package models

import (
	"fmt"
	"strings"
)

// AnalysisResult holds the aggregated LLM output for one conversation.
type AnalysisResult struct {
	Summary              string            `json:"summary"`
	Topics               []string          `json:"topics"`
	ActionItems          []string          `json:"action_items"`
	ParticipantSummaries map[string]string `json:"participant_summaries"`
	MessageCount         int               `json:"message_count"`
	ParticipantCount     int               `json:"participant_count"`
	DateRange            string            `json:"date_range"`
}

// NewAnalysisResult returns an empty result with initialized maps.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Topics:               []string{},
		ActionItems:          []string{},
		ParticipantSummaries: map[string]string{},
	}
}

const (
	reportBanner  = "============================================================"
	reportDivider = "────────────────────────────────────────"
)

// FormatReport renders the result as a human-readable plain-text report.
func (r *AnalysisResult) FormatReport() string {
	var sections []string

	sections = append(sections, reportBanner)
	sections = append(sections, "CHAT ANALYSIS REPORT")
	sections = append(sections, reportBanner)

	if r.DateRange != "" {
		sections = append(sections, fmt.Sprintf("\nDate Range: %s", r.DateRange))
	}
	sections = append(sections, fmt.Sprintf("Messages: %d", r.MessageCount))
	sections = append(sections, fmt.Sprintf("Participants: %d", r.ParticipantCount))

	if r.Summary != "" {
		sections = append(sections, "\n"+reportDivider, "SUMMARY", reportDivider, r.Summary)
	}

	if len(r.Topics) > 0 {
		sections = append(sections, "\n"+reportDivider, "KEY TOPICS", reportDivider)
		for i, topic := range r.Topics {
			sections = append(sections, fmt.Sprintf("  %d. %s", i+1, topic))
		}
	}

	if len(r.ActionItems) > 0 {
		sections = append(sections, "\n"+reportDivider, "ACTION ITEMS", reportDivider)
		for i, item := range r.ActionItems {
			sections = append(sections, fmt.Sprintf("  %d. %s", i+1, item))
		}
	}

	if len(r.ParticipantSummaries) > 0 {
		sections = append(sections, "\n"+reportDivider, "PARTICIPANT ANALYSIS", reportDivider)
		for _, name := range sortedKeys(r.ParticipantSummaries) {
			sections = append(sections, fmt.Sprintf("\n  [%s]", name))
			sections = append(sections, fmt.Sprintf("  %s", r.ParticipantSummaries[name]))
		}
	}

	sections = append(sections, "\n"+reportBanner)
	return strings.Join(sections, "\n")
}
