package factory

import (
	"fmt"

	"github.com/mikey/email-triage/internal/adapters/bedrock"
	"github.com/mikey/email-triage/internal/adapters/gemini"
	"github.com/mikey/email-triage/internal/adapters/openai"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory creates response generation backends
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateBackend creates a response backend based on the configuration. A nil
// backend (provider "none" or empty) disables the generative path; the
// response generator then always assembles template replies.
func (f *LLMFactory) CreateBackend() (core.ResponseBackend, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "", "none":
		f.logger.Info("Response generation backend disabled, using template responses")
		return nil, nil
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateBackend()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateBackend()
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateBackend()
	default:
		return nil, fmt.Errorf("unsupported response provider: %s", llmConfig.Provider)
	}
}
