package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/httpapi"
	"github.com/mikey/email-triage/internal/adapters/imap"
	"github.com/mikey/email-triage/internal/adapters/smtp"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/logging"
	"github.com/mikey/email-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register knowledge base
	if err := container.Provide(core.DefaultKnowledgeBase); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}

	// Register response backend
	if err := container.Provide(func(f *factory.LLMFactory) (core.ResponseBackend, error) {
		return f.CreateBackend()
	}); err != nil {
		return nil, err
	}

	// Register email repository
	if err := container.Provide(func(f *factory.StoreFactory) (core.EmailRepository, error) {
		return f.CreateRepository()
	}); err != nil {
		return nil, err
	}

	// Register mail fetcher (nil when mailbox polling is disabled)
	if err := container.Provide(func(cfg *config.Config, tp *utils.TextProcessor, logger *zap.Logger) core.MailFetcher {
		mailboxCfg := cfg.GetMailbox()
		if !mailboxCfg.Enabled {
			logger.Info("Mailbox polling disabled")
			return nil
		}
		return imap.NewFetcher(&mailboxCfg, tp, logger)
	}); err != nil {
		return nil, err
	}

	// Register mail sender (nil when outbound mail is disabled)
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.MailSender {
		smtpCfg := cfg.GetSMTP()
		if !smtpCfg.Enabled {
			logger.Info("Outbound mail disabled")
			return nil
		}
		return smtp.NewSender(&smtpCfg, logger)
	}); err != nil {
		return nil, err
	}

	// Register analyzer and response generator
	if err := container.Provide(core.NewEmailAnalyzer); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewResponseGenerator); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(core.NewTriageService); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(func(cfg *config.Config, service *core.TriageService, repo core.EmailRepository, logger *zap.Logger) *httpapi.Server {
		return httpapi.NewServer(cfg.GetString("server.listen_address"), service, repo, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
