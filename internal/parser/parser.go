// Package parser turns chat exports in various formats into conversations.
//
// Each format is a Parser implementation; the Registry tries them in a fixed
// priority order with the plain-text parser last, since its raw-text
// heuristic is broad enough to shadow the others.
package parser

import (
	"errors"
	"fmt"

	"github.com/raphaelgruber/chatlens/internal/models"
)

// ErrUnrecognizedInput is returned when no parser accepts a source.
var ErrUnrecognizedInput = errors.New("unrecognized input format")

// Parser is the capability pair every format implements.
type Parser interface {
	// CanHandle reports whether this parser accepts the source (a file
	// path or raw text, depending on the format).
	CanHandle(source string) bool

	// Parse converts the source into a Conversation.
	Parse(source string) (*models.Conversation, error)
}

// Registry dispatches a source to the first parser that accepts it.
type Registry struct {
	parsers []Parser
}

// NewRegistry builds a registry trying parsers in the given order.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// Parse finds the first parser whose CanHandle accepts the source and runs
// it. Returns ErrUnrecognizedInput when none does.
func (r *Registry) Parse(source string) (*models.Conversation, error) {
	for _, p := range r.parsers {
		if p.CanHandle(source) {
			return p.Parse(source)
		}
	}
	return nil, fmt.Errorf("%w: supported formats are .txt, .pdf, .docx and screenshot images", ErrUnrecognizedInput)
}
