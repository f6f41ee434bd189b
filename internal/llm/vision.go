package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/raphaelgruber/chatlens/internal/config"
)

// VisionModel transcribes images through a multimodal Ollama model.
type VisionModel struct {
	llm       *ollama.LLM
	modelName string
}

// NewVisionModel creates a vision client for the configured vision model.
func NewVisionModel(cfg config.Config) (*VisionModel, error) {
	model, err := ollama.New(
		ollama.WithModel(cfg.VisionModel),
		ollama.WithServerURL(cfg.OllamaHost),
	)
	if err != nil {
		return nil, fmt.Errorf("create vision model: %w", err)
	}

	return &VisionModel{llm: model, modelName: cfg.VisionModel}, nil
}

// ExtractText sends the image with the extraction prompt and returns the
// model's transcription.
func (v *VisionModel) ExtractText(ctx context.Context, image []byte, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(http.DetectContentType(image), image),
				llms.TextPart(prompt),
			},
		},
	}

	response, err := v.llm.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("%w: vision extract with %s: %v", ErrBackend, v.modelName, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices from %s", ErrBackend, v.modelName)
	}

	return response.Choices[0].Content, nil
}
