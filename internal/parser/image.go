package parser

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/chatlens/internal/models"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
}

const visionPrompt = "This is a screenshot of a group chat. " +
	"Extract ALL the chat messages exactly as they appear. " +
	"Format each message as: DD/MM/YYYY, HH:MM - Sender: message\n" +
	"Include timestamps, sender names, and full message text. " +
	"Do not add any commentary, just output the extracted messages."

// VisionExtractor transcribes a chat screenshot to text. An empty result
// with a nil error means the model produced nothing usable.
type VisionExtractor interface {
	ExtractText(ctx context.Context, image []byte, prompt string) (string, error)
}

// ImageParser extracts chat text from screenshots: vision model first, then
// a tesseract OCR fallback. Screenshots are best-effort, so when both paths
// fail it returns an empty conversation rather than an error.
type ImageParser struct {
	text   *TextParser
	vision VisionExtractor
	logger *slog.Logger
}

// NewImageParser returns a parser for screenshot images. vision may be nil,
// in which case only the OCR fallback runs.
func NewImageParser(vision VisionExtractor, logger *slog.Logger) *ImageParser {
	return &ImageParser{text: NewTextParser(), vision: vision, logger: logger}
}

var _ Parser = (*ImageParser)(nil)

// CanHandle accepts existing image paths with a known extension.
func (p *ImageParser) CanHandle(source string) bool {
	if !imageExtensions[strings.ToLower(filepath.Ext(source))] {
		return false
	}
	_, err := os.Stat(source)
	return err == nil
}

// Parse extracts chat text from the screenshot and delegates to the text
// parser. Extraction failure yields an empty conversation.
func (p *ImageParser) Parse(source string) (*models.Conversation, error) {
	text := p.tryVision(source)
	if text == "" {
		text = p.tryOCR(source)
	}
	if text == "" {
		p.logger.Warn("could not extract text from image", "path", source)
		return models.NewConversation(nil), nil
	}
	return p.text.ParseText(text), nil
}

func (p *ImageParser) tryVision(source string) string {
	if p.vision == nil {
		return ""
	}

	image, err := os.ReadFile(source)
	if err != nil {
		p.logger.Info("read image failed, falling back to OCR", "path", source, "error", err)
		return ""
	}

	text, err := p.vision.ExtractText(context.Background(), image, visionPrompt)
	if err != nil {
		p.logger.Info("vision extraction failed, falling back to OCR", "path", source, "error", err)
		return ""
	}

	text = strings.TrimSpace(text)
	if text != "" {
		p.logger.Info("extracted text using vision model", "path", source)
	}
	return text
}

func (p *ImageParser) tryOCR(source string) string {
	out, err := exec.Command("tesseract", source, "stdout").Output()
	if err != nil {
		p.logger.Warn("OCR extraction failed", "path", source, "error", err)
		return ""
	}

	text := strings.TrimSpace(string(out))
	if text != "" {
		p.logger.Info("extracted text using OCR", "path", source)
	}
	return text
}
