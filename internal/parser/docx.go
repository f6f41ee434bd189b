package parser

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/chatlens/internal/models"
)

// DocxParser extracts paragraph text from DOCX chat exports and hands it to
// the text parser for structuring.
type DocxParser struct {
	text *TextParser
}

// NewDocxParser returns a parser for .docx exports.
func NewDocxParser() *DocxParser {
	return &DocxParser{text: NewTextParser()}
}

var _ Parser = (*DocxParser)(nil)

// CanHandle accepts existing .docx paths.
func (p *DocxParser) CanHandle(source string) bool {
	if strings.ToLower(filepath.Ext(source)) != ".docx" {
		return false
	}
	_, err := os.Stat(source)
	return err == nil
}

// Parse extracts document text and delegates to the text parser.
func (p *DocxParser) Parse(source string) (*models.Conversation, error) {
	text, err := extractDocxText(source)
	if err != nil {
		return nil, fmt.Errorf("extract docx text: %w", err)
	}
	return p.text.ParseText(text), nil
}

// extractDocxText reads word/document.xml from the DOCX zip and collects the
// text runs (<w:t>), one output line per paragraph (<w:p>).
func extractDocxText(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	for _, f := range reader.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()

		text, err := collectParagraphs(rc)
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		return text, nil
	}

	return "", fmt.Errorf("%s: no word/document.xml entry", path)
}

func collectParagraphs(r io.Reader) (string, error) {
	var paragraphs []string
	var current strings.Builder

	decoder := xml.NewDecoder(r)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := token.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				var text string
				if err := decoder.DecodeElement(&text, &el); err == nil {
					current.WriteString(text)
				}
			}
		case xml.EndElement:
			if el.Name.Local == "p" {
				if line := strings.TrimSpace(current.String()); line != "" {
					paragraphs = append(paragraphs, line)
				}
				current.Reset()
			}
		}
	}

	if line := strings.TrimSpace(current.String()); line != "" {
		paragraphs = append(paragraphs, line)
	}

	return strings.Join(paragraphs, "\n"), nil
}
