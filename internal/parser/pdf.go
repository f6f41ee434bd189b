package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rsc.io/pdf"

	"github.com/raphaelgruber/chatlens/internal/models"
)

// PDFParser extracts plain text from PDF chat exports and hands it to the
// text parser for structuring.
type PDFParser struct {
	text *TextParser
}

// NewPDFParser returns a parser for .pdf exports.
func NewPDFParser() *PDFParser {
	return &PDFParser{text: NewTextParser()}
}

var _ Parser = (*PDFParser)(nil)

// CanHandle accepts existing .pdf paths.
func (p *PDFParser) CanHandle(source string) bool {
	if strings.ToLower(filepath.Ext(source)) != ".pdf" {
		return false
	}
	_, err := os.Stat(source)
	return err == nil
}

// Parse extracts per-page text and delegates to the text parser.
func (p *PDFParser) Parse(source string) (*models.Conversation, error) {
	text, err := extractPDFText(source)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return p.text.ParseText(text), nil
}

func extractPDFText(path string) (string, error) {
	reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		var sb strings.Builder
		var lastY float64
		for _, t := range page.Content().Text {
			// A change in vertical position starts a new line.
			if sb.Len() > 0 {
				if t.Y != lastY {
					sb.WriteByte('\n')
				}
			}
			sb.WriteString(t.S)
			lastY = t.Y
		}
		if sb.Len() > 0 {
			pages = append(pages, sb.String())
		}
	}

	return strings.Join(pages, "\n"), nil
}
