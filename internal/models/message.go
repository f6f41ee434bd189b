// Package models defines the message and conversation value types shared by
// the parsers, the analyzer, and the interfaces.
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SystemSender is the sender recorded for platform-generated messages that
// carry no sender of their own (join/leave notices, encryption banners).
const SystemSender = "System"

// Message is a single chat message, possibly spanning multiple source lines.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	IsSystem  bool      `json:"is_system"`
	IsMedia   bool      `json:"is_media"`
}

// String renders the canonical one-line form used for reporting and for
// chunk size accounting. It is independent of the original export format.
func (m Message) String() string {
	ts := m.Timestamp.Format("2006-01-02 15:04")
	if m.IsSystem {
		return fmt.Sprintf("[%s] %s", ts, m.Content)
	}
	return fmt.Sprintf("[%s] %s: %s", ts, m.Sender, m.Content)
}

// Conversation is an ordered sequence of messages in source order. The
// derived views assume the source was chronological; they do not re-sort.
type Conversation struct {
	Messages []Message `json:"messages"`
}

// NewConversation wraps a message slice in a Conversation.
func NewConversation(messages []Message) *Conversation {
	return &Conversation{Messages: messages}
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Participants returns the distinct non-system senders, sorted.
func (c *Conversation) Participants() []string {
	seen := make(map[string]struct{})
	for _, m := range c.Messages {
		if m.IsSystem {
			continue
		}
		seen[m.Sender] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartDate returns the timestamp of the first message. The bound is
// positional, not a scan, so it is only meaningful for chronological input.
func (c *Conversation) StartDate() (time.Time, bool) {
	if len(c.Messages) == 0 {
		return time.Time{}, false
	}
	return c.Messages[0].Timestamp, true
}

// EndDate returns the timestamp of the last message (positional).
func (c *Conversation) EndDate() (time.Time, bool) {
	if len(c.Messages) == 0 {
		return time.Time{}, false
	}
	return c.Messages[len(c.Messages)-1].Timestamp, true
}

// FilterByParticipant returns a new Conversation keeping messages whose
// sender matches name case-insensitively. System messages are always kept.
func (c *Conversation) FilterByParticipant(name string) *Conversation {
	var filtered []Message
	for _, m := range c.Messages {
		if m.IsSystem || strings.EqualFold(m.Sender, name) {
			filtered = append(filtered, m)
		}
	}
	return &Conversation{Messages: filtered}
}

// FilterByDateRange returns a new Conversation keeping messages inside the
// inclusive [start, end] range. A nil bound imposes no constraint.
func (c *Conversation) FilterByDateRange(start, end *time.Time) *Conversation {
	var filtered []Message
	for _, m := range c.Messages {
		if start != nil && m.Timestamp.Before(*start) {
			continue
		}
		if end != nil && m.Timestamp.After(*end) {
			continue
		}
		filtered = append(filtered, m)
	}
	return &Conversation{Messages: filtered}
}

// ToText serializes all messages to their canonical form, one per message,
// joined by newlines.
func (c *Conversation) ToText() string {
	lines := make([]string, len(c.Messages))
	for i, m := range c.Messages {
		lines[i] = m.String()
	}
	return strings.Join(lines, "\n")
}
