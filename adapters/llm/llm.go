// Package llm adapts hosted language models to the chat and vision ports.
package llm

import (
	"fmt"

	"github.com/khoahotran/cpd-tracker/internal/application/service"
	"github.com/khoahotran/cpd-tracker/internal/config"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

// Model answers both free-text and image prompts.
type Model interface {
	service.LLMService
	service.VisionService
}

// New returns the adapter for cfg.LLM.Provider. With no API key the
// assistant features are disabled and New returns nil, nil.
func New(cfg config.Config, log logger.Logger) (Model, error) {
	if cfg.LLM.APIKey == "" {
		log.Warn("LLM API key is not configured; document analysis and assistant are disabled")
		return nil, nil
	}
	switch cfg.LLM.Provider {
	case config.LLMProviderOpenAI, "":
		return NewOpenAIAdapter(cfg, log), nil
	case config.LLMProviderGemini:
		m, err := NewGeminiAdapter(cfg, log)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
}
