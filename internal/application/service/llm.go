package service

import (
	"context"
)

// LLMService answers free-text prompts.
type LLMService interface {
	GenerateChatResponse(ctx context.Context, prompt string) (string, error)
}

// VisionService answers a prompt about one image.
type VisionService interface {
	AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
