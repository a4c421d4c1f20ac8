package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/khoahotran/cpd-tracker/internal/config"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type geminiAdapter struct {
	client      *genai.Client
	chatModel   string
	visionModel string
	maxTokens   int32
	log         logger.Logger
}

func NewGeminiAdapter(cfg config.Config, log logger.Logger) (Model, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.LLM.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.LLM.BaseURL}
	}
	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	chatModel, visionModel := cfg.LLM.ChatModel, cfg.LLM.VisionModel
	// The shared defaults name OpenAI models.
	if strings.HasPrefix(chatModel, "gpt-") {
		chatModel = "gemini-2.5-flash"
	}
	if strings.HasPrefix(visionModel, "gpt-") {
		visionModel = "gemini-2.5-flash"
	}

	log.Info("Gemini adapter initialized",
		zap.String("chat_model", chatModel),
		zap.String("vision_model", visionModel),
	)
	return &geminiAdapter{
		client:      client,
		chatModel:   chatModel,
		visionModel: visionModel,
		maxTokens:   int32(cfg.LLM.MaxTokens),
		log:         log,
	}, nil
}

func (a *geminiAdapter) GenerateChatResponse(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	return a.generate(ctx, a.chatModel, contents)
}

func (a *geminiAdapter) AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	return a.generate(ctx, a.visionModel, contents)
}

func (a *geminiAdapter) generate(ctx context.Context, model string, contents []*genai.Content) (string, error) {
	result, err := a.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: a.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("model returned no text")
	}
	return text, nil
}
