package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/config"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

// openAIAdapter talks to the OpenAI API or any server that speaks its chat
// completions protocol.
type openAIAdapter struct {
	client      *openai.Client
	chatModel   string
	visionModel string
	maxTokens   int
	log         logger.Logger
}

func NewOpenAIAdapter(cfg config.Config, log logger.Logger) Model {
	config := openai.DefaultConfig(cfg.LLM.APIKey)
	if cfg.LLM.BaseURL != "" {
		config.BaseURL = cfg.LLM.BaseURL
	}
	config.HTTPClient = &http.Client{Timeout: cfg.LLM.Timeout}

	log.Info("OpenAI adapter initialized",
		zap.String("chat_model", cfg.LLM.ChatModel),
		zap.String("vision_model", cfg.LLM.VisionModel),
	)
	return &openAIAdapter{
		client:      openai.NewClientWithConfig(config),
		chatModel:   cfg.LLM.ChatModel,
		visionModel: cfg.LLM.VisionModel,
		maxTokens:   cfg.LLM.MaxTokens,
		log:         log,
	}
}

func (a *openAIAdapter) GenerateChatResponse(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     a.chatModel,
		MaxTokens: a.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}
	return a.complete(ctx, req)
}

// AnalyzeImage sends the image inline as a data URL next to the prompt.
func (a *openAIAdapter) AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	req := openai.ChatCompletionRequest{
		Model:     a.visionModel,
		MaxTokens: a.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}
	return a.complete(ctx, req)
}

func (a *openAIAdapter) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no chat choices")
	}
	a.log.Debug("Chat completion",
		zap.String("model", req.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
