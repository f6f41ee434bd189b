// Package analyzer orchestrates the analysis pipeline: parse, filter,
// chunk, summarize via the LLM collaborator, merge.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/chatlens/internal/llm"
	"github.com/raphaelgruber/chatlens/internal/metrics"
	"github.com/raphaelgruber/chatlens/internal/models"
	"github.com/raphaelgruber/chatlens/internal/parser"
)

// maxParticipantsForAnalysis caps the participant list in the combined
// prompt so very large groups do not blow up the prompt.
const maxParticipantsForAnalysis = 10

// Analyzer is the single entry point for both the CLI and the HTTP API.
type Analyzer struct {
	llm      llm.Client
	chunker  *Chunker
	registry *parser.Registry
	logger   *slog.Logger
	metrics  *metrics.Collector
}

// New builds an analyzer around the given collaborators. vision may be nil
// to disable vision-model screenshot transcription (OCR fallback still
// runs). collector may be nil to disable metrics.
func New(client llm.Client, vision parser.VisionExtractor, maxChunkChars int, logger *slog.Logger, collector *metrics.Collector) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}

	// Text parser last: its raw-text heuristic is broad enough to shadow
	// the structured formats.
	registry := parser.NewRegistry(
		parser.NewPDFParser(),
		parser.NewDocxParser(),
		parser.NewImageParser(vision, logger),
		parser.NewTextParser(),
	)

	return &Analyzer{
		llm:      client,
		chunker:  NewChunker(maxChunkChars),
		registry: registry,
		logger:   logger,
		metrics:  collector,
	}
}

// Metrics exposes the analyzer's collector for the stats endpoint.
func (a *Analyzer) Metrics() *metrics.Collector {
	return a.metrics
}

// Parse auto-detects the source format and parses it into a Conversation.
func (a *Analyzer) Parse(source string) (*models.Conversation, error) {
	start := time.Now()
	conversation, err := a.registry.Parse(source)
	if err != nil {
		return nil, err
	}
	a.metrics.RecordTiming(metrics.OpParse, time.Since(start))

	a.logger.Info("parsed source",
		"messages", conversation.Len(),
		"participants", len(conversation.Participants()))
	return conversation, nil
}

// Analyze runs the full pipeline: parse, filter, chunk, analyze, merge.
func (a *Analyzer) Analyze(ctx context.Context, source string, opts FilterOptions) (*models.AnalysisResult, error) {
	start := time.Now()
	defer func() {
		a.metrics.RecordTiming(metrics.OpAnalyze, time.Since(start))
	}()

	conversation, err := a.Parse(source)
	if err != nil {
		return nil, err
	}

	if conversation.Len() == 0 {
		result := models.NewAnalysisResult()
		result.Summary = "No messages found in the input."
		return result, nil
	}

	filtered := ApplyFilters(conversation, opts)
	if filtered.Len() == 0 {
		result := models.NewAnalysisResult()
		result.Summary = "No messages match the given filters."
		return result, nil
	}

	result := models.NewAnalysisResult()
	result.MessageCount = filtered.Len()
	result.ParticipantCount = len(filtered.Participants())
	if startDate, ok := filtered.StartDate(); ok {
		endDate, _ := filtered.EndDate()
		result.DateRange = fmt.Sprintf("%s to %s",
			startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	}

	chunkStart := time.Now()
	chunks := a.chunker.Chunk(filtered)
	a.metrics.RecordTiming(metrics.OpChunk, time.Since(chunkStart))
	a.logger.Info("split conversation", "chunks", len(chunks))

	if len(chunks) == 1 {
		err = a.analyzeCombined(ctx, chunks[0], result)
	} else {
		err = a.analyzeMultiChunk(ctx, chunks, result)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// generate wraps the LLM call with timing.
func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	response, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	a.metrics.RecordTiming(metrics.OpLLMGenerate, time.Since(start))
	return response, nil
}

// analyzeCombined covers a single chunk with one combined LLM call
// (summary, topics, action items and participant summaries in one go).
func (a *Analyzer) analyzeCombined(ctx context.Context, chunk *models.Conversation, result *models.AnalysisResult) error {
	participants := chunk.Participants()
	if len(participants) > maxParticipantsForAnalysis {
		participants = participants[:maxParticipantsForAnalysis]
	}

	lines := make([]string, len(participants))
	for i, name := range participants {
		lines[i] = llm.ParticipantLine(name)
	}

	raw, err := a.generate(ctx, llm.AnalyzeAllPrompt(chunk.ToText(), strings.Join(lines, "\n")))
	if err != nil {
		return err
	}

	parseCombinedResponse(raw, result)
	return nil
}

// analyzeMultiChunk makes one set of calls per chunk in chunk order, then a
// merge call per aspect, so partial results concatenate coherently.
func (a *Analyzer) analyzeMultiChunk(ctx context.Context, chunks []*models.Conversation, result *models.AnalysisResult) error {
	var summaries, topics, actions []string

	for i, chunk := range chunks {
		a.logger.Info("analyzing chunk", "index", i+1, "total", len(chunks))
		chatText := chunk.ToText()

		summary, err := a.generate(ctx, llm.SummarizePrompt(chatText))
		if err != nil {
			return err
		}
		summaries = append(summaries, summary)

		chunkTopics, err := a.generate(ctx, llm.ExtractTopicsPrompt(chatText))
		if err != nil {
			return err
		}
		topics = append(topics, chunkTopics)

		chunkActions, err := a.generate(ctx, llm.ExtractActionItemsPrompt(chatText))
		if err != nil {
			return err
		}
		actions = append(actions, chunkActions)
	}

	mergedSummary, err := a.generate(ctx, llm.MergeSummariesPrompt(strings.Join(summaries, "\n\n---\n\n")))
	if err != nil {
		return err
	}
	result.Summary = mergedSummary

	mergedTopics, err := a.generate(ctx, llm.MergeTopicsPrompt(strings.Join(topics, "\n")))
	if err != nil {
		return err
	}
	result.Topics = parseList(mergedTopics)

	mergedActions, err := a.generate(ctx, llm.MergeActionItemsPrompt(strings.Join(actions, "\n")))
	if err != nil {
		return err
	}
	result.ActionItems = parseList(mergedActions)

	return nil
}

// parseCombinedResponse splits the combined response into its labeled
// sections and fills the result.
func parseCombinedResponse(raw string, result *models.AnalysisResult) {
	sections := map[string]string{
		"summary":      "",
		"topics":       "",
		"action items": "",
		"participants": "",
	}
	current := ""

	for _, line := range strings.Split(raw, "\n") {
		label := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(line)), ":")
		if _, ok := sections[label]; ok {
			current = label
			continue
		}
		if current != "" {
			sections[current] += line + "\n"
		}
	}

	result.Summary = strings.TrimSpace(sections["summary"])
	result.Topics = parseList(sections["topics"])
	result.ActionItems = parseList(sections["action items"])

	// Participant summaries come as "- Name: summary" lines.
	for _, line := range strings.Split(strings.TrimSpace(sections["participants"]), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		if name, summary, ok := strings.Cut(line, ": "); ok {
			result.ParticipantSummaries[strings.TrimSpace(name)] = strings.TrimSpace(summary)
		}
	}
}

// parseList turns a bulleted or numbered LLM list into clean items. Lines
// without a recognizable list prefix are dropped.
func parseList(raw string) []string {
	items := []string{}
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			line = line[2:]
		case len(line) > 2 && isDigit(line[0]) && isListMark(line[1]):
			line = line[2:]
		case len(line) > 3 && isDigit(line[0]) && isDigit(line[1]) && isListMark(line[2]):
			line = line[3:]
		default:
			continue
		}
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isListMark(b byte) bool { return b == '.' || b == ')' }
