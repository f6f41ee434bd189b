package analyzer

import "github.com/raphaelgruber/chatlens/internal/models"

// DefaultMaxChars keeps a chunk's serialized text around 3-4K tokens,
// leaving room for the prompt within an 8K context window.
const DefaultMaxChars = 12000

// Chunker splits a conversation into pieces that fit an LLM context window.
type Chunker struct {
	maxChars int
}

// NewChunker returns a chunker bounded by maxChars of canonical text.
// Non-positive values fall back to DefaultMaxChars.
func NewChunker(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Chunker{maxChars: maxChars}
}

// MaxChars returns the configured chunk size bound.
func (c *Chunker) MaxChars() int {
	return c.maxChars
}

// Chunk greedily accumulates messages into size-bounded sub-conversations.
// It never splits inside a message: a single message longer than the bound
// becomes the sole content of an oversized chunk. Concatenating the chunks
// reproduces the input sequence exactly. An empty conversation yields an
// empty slice.
func (c *Chunker) Chunk(conversation *models.Conversation) []*models.Conversation {
	if conversation.Len() == 0 {
		return nil
	}

	var chunks []*models.Conversation
	var current []models.Message
	currentChars := 0

	for _, msg := range conversation.Messages {
		msgLen := len(msg.String())

		if currentChars+msgLen > c.maxChars && len(current) > 0 {
			chunks = append(chunks, models.NewConversation(current))
			current = nil
			currentChars = 0
		}

		current = append(current, msg)
		currentChars += msgLen + 1 // +1 for the joining newline
	}

	if len(current) > 0 {
		chunks = append(chunks, models.NewConversation(current))
	}

	return chunks
}

// NeedsChunking reports whether the conversation's canonical serialization
// exceeds the chunk size bound.
func (c *Chunker) NeedsChunking(conversation *models.Conversation) bool {
	return len(conversation.ToText()) > c.maxChars
}
