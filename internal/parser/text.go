package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/raphaelgruber/chatlens/internal/models"
)

// invisibleMarks matches the formatting characters chat exports inject into
// lines (bidi marks, zero-width characters, BOM). They are cosmetic and must
// never survive into parsed content.
var invisibleMarks = regexp.MustCompile("[\u200E\u200F\u202A\u202B\u202C\u200B\u200D\uFEFF]")

// spaceLikes maps the non-break space variants some exports use (notably the
// narrow no-break space before AM/PM) to a plain space, so the patterns and
// the time layouts see ordinary whitespace.
var spaceLikes = strings.NewReplacer("\u00A0", " ", "\u202F", " ")

// timestampPatterns is the ordered list of line-start timestamp forms.
// Order matters: some patterns are prefixes of others, first match wins.
var timestampPatterns = []*regexp.Regexp{
	// [HH:MM, DD/MM/YYYY] Sender: message (time-first bracketed)
	regexp.MustCompile(`^\[(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[APap][Mm])?),\s+(\d{1,2}/\d{1,2}/\d{2,4})\]\s+`),
	// [DD/MM/YYYY, HH:MM:SS] Sender: message (date-first bracketed)
	regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{2,4}),\s+(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[APap][Mm])?)\]\s+`),
	// DD/MM/YYYY, H:MM AM/PM - Sender: message (dash-separated, 12h)
	regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}),\s+(\d{1,2}:\d{2}(?::\d{2})?\s*[APap][Mm]?)\s+[-–—]\s+`),
	// DD/MM/YYYY, HH:MM - Sender: message (dash-separated, 24h)
	regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}),\s+(\d{1,2}:\d{2}(?::\d{2})?)\s+[-–—]\s+`),
}

// timeFirstPattern has its date and time groups swapped relative to the rest.
var timeFirstPattern = timestampPatterns[0]

// dateLayouts is the ordered ladder of layouts tried against the combined
// "date, time" string. Day-first layouts come before month-first ones, so a
// region-ambiguous date like 03/04/2024 always resolves day-first.
var dateLayouts = []string{
	"2/1/2006, 15:04",
	"2/1/2006, 15:04:05",
	"1/2/2006, 3:04 PM",
	"1/2/2006, 3:04:05 PM",
	"2/1/06, 15:04",
	"2/1/06, 15:04:05",
	"1/2/06, 3:04 PM",
	"1/2/06, 3:04:05 PM",
	"2/1/2006, 3:04 PM",
	"2/1/2006, 3:04:05 PM",
}

// systemIndicators classify platform-generated notifications. Matching is
// substring-based, so user content containing one of these phrases is
// misclassified; that surface is accepted.
var systemIndicators = []string{
	"messages and calls are end-to-end encrypted",
	"created group",
	"added you",
	"added ",
	"removed ",
	"left",
	"changed the subject",
	"changed this group",
	"changed the group",
	"you were added",
	"security code changed",
	"joined using this group",
}

const mediaIndicator = "<media omitted>"

// probeLimit bounds how much of a raw-text source the CanHandle heuristic
// inspects.
const probeLimit = 1000

// TextParser parses exported chat text files and raw pasted text.
type TextParser struct{}

// NewTextParser returns a parser for plain-text chat exports.
func NewTextParser() *TextParser {
	return &TextParser{}
}

var _ Parser = (*TextParser)(nil)

// CanHandle accepts an existing .txt path, or raw text whose first lines
// (within the first ~1000 cleaned characters) start with a known timestamp
// pattern. This is a heuristic probe, not a parseability guarantee.
func (p *TextParser) CanHandle(source string) bool {
	if filepath.Ext(source) == ".txt" {
		if _, err := os.Stat(source); err == nil {
			return true
		}
	}

	probe := source
	if len(probe) > probeLimit {
		probe = probe[:probeLimit]
	}
	probe = spaceLikes.Replace(probe)
	probe = invisibleMarks.ReplaceAllString(probe, "")

	for _, line := range strings.Split(probe, "\n") {
		for _, pattern := range timestampPatterns {
			if pattern.MatchString(line) {
				return true
			}
		}
	}
	return false
}

// Parse reads the source (file path or raw text) and parses it.
func (p *TextParser) Parse(source string) (*models.Conversation, error) {
	text, err := p.readSource(source)
	if err != nil {
		return nil, err
	}
	return p.ParseText(text), nil
}

// ParseText converts raw chat text into a Conversation. It is deterministic:
// a pure function of the input and the fixed pattern and layout lists.
//
// Each line either starts a new message (timestamp pattern matches and the
// captured date parses) or continues the message being built; lines before
// the first recognized message are discarded. A line that matches a pattern but
// whose date fails every layout is a continuation, never an error.
func (p *TextParser) ParseText(text string) *models.Conversation {
	var messages []models.Message
	var current *models.Message

	// A trailing newline terminates the last line; it is not an empty
	// continuation of the final message.
	text = strings.TrimSuffix(text, "\n")

	for _, line := range strings.Split(text, "\n") {
		msg := p.tryParseLine(line)
		switch {
		case msg != nil:
			if current != nil {
				messages = append(messages, *current)
			}
			current = msg
		case current != nil:
			current.Content += "\n" + cleanLine(line)
		}
	}

	if current != nil {
		messages = append(messages, *current)
	}

	return models.NewConversation(messages)
}

// readSource reads a file when the source is an existing path, otherwise
// treats the source itself as raw text.
func (p *TextParser) readSource(source string) (string, error) {
	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return source, nil
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source, err)
	}
	return decodeText(raw), nil
}

// decodeText probes encodings in a fixed order: UTF-8 with BOM, UTF-8,
// UTF-16, Latin-1. The first that decodes cleanly wins.
func decodeText(raw []byte) string {
	if bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		return string(raw[3:])
	}
	if utf8.Valid(raw) {
		return string(raw)
	}

	// UTF-16 needs an even byte count; the decoder substitutes rather
	// than erroring on a lone trailing byte.
	if len(raw)%2 == 0 {
		utf16Dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if decoded, err := utf16Dec.Bytes(raw); err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}

	// Latin-1 maps every byte, so this cannot fail.
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return string(decoded)
}

func cleanLine(line string) string {
	line = spaceLikes.Replace(line)
	return strings.TrimSpace(invisibleMarks.ReplaceAllString(line, ""))
}

// tryParseLine returns a new message when the line starts one, nil otherwise.
func (p *TextParser) tryParseLine(line string) *models.Message {
	line = cleanLine(line)
	if line == "" {
		return nil
	}

	for _, pattern := range timestampPatterns {
		if match := pattern.FindStringSubmatch(line); match != nil {
			return p.extractMessage(match, line, pattern)
		}
	}
	return nil
}

// extractMessage builds a message from a pattern match. Returns nil when the
// captured date/time text parses under no known layout: a label match with
// an unparseable value never produces a message.
func (p *TextParser) extractMessage(match []string, line string, pattern *regexp.Regexp) *models.Message {
	dateStr, timeStr := match[1], match[2]
	if pattern == timeFirstPattern {
		dateStr, timeStr = timeStr, dateStr
	}

	timestamp, ok := parseTimestamp(dateStr, timeStr)
	if !ok {
		return nil
	}

	rest := line[len(match[0]):]

	// "Sender: content" split on the first colon followed by whitespace.
	// Without it the whole remainder is a system notification.
	if sender, content, ok := splitSender(rest); ok {
		lower := strings.ToLower(content)
		return &models.Message{
			Timestamp: timestamp,
			Sender:    sender,
			Content:   content,
			IsSystem:  isSystemMessage(lower),
			IsMedia:   strings.Contains(lower, mediaIndicator),
		}
	}

	return &models.Message{
		Timestamp: timestamp,
		Sender:    models.SystemSender,
		Content:   strings.TrimSpace(rest),
		IsSystem:  true,
	}
}

// parseTimestamp tries the layout ladder in order; first success wins.
func parseTimestamp(dateStr, timeStr string) (time.Time, bool) {
	combined := dateStr + ", " + strings.TrimSpace(timeStr)
	// Go layouts match AM/PM case-sensitively; exports use both.
	combined = strings.ToUpper(combined)

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, combined); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// splitSender splits "Sender: content" at the first colon when that colon is
// followed by whitespace. The sender part can never contain a colon, so a
// remainder like "http://example.com" yields no sender.
func splitSender(rest string) (sender, content string, ok bool) {
	idx := strings.IndexByte(rest, ':')
	if idx <= 0 || idx+1 >= len(rest) {
		return "", "", false
	}
	if next := rest[idx+1]; next != ' ' && next != '\t' {
		return "", "", false
	}
	return strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+2:]), true
}

func isSystemMessage(lowerContent string) bool {
	for _, indicator := range systemIndicators {
		if strings.Contains(lowerContent, indicator) {
			return true
		}
	}
	return false
}
