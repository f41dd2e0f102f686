package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikey/email-triage/internal/adapters/httpapi"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/di"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	server *httpapi.Server,
	service *core.TriageService,
	fetcher core.MailFetcher,
	backend core.ResponseBackend,
	repo core.EmailRepository,
) error {
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the HTTP server
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Start the mailbox poll loop when configured
	if fetcher != nil {
		go pollMailbox(ctx, cfg.GetMailbox(), service, logger)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := backend.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close response backend", zap.Error(err))
		}
	}
	if closer, ok := repo.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close email store", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}

// pollMailbox fetches and ingests support emails on the configured interval
func pollMailbox(ctx context.Context, cfg config.MailboxConfig, service *core.TriageService, logger *zap.Logger) {
	interval := cfg.PollFrequency
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	logger.Info("Starting mailbox poll loop",
		zap.Duration("interval", interval),
		zap.Int("days_back", cfg.DaysBack))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := service.FetchAndIngest(ctx, cfg.DaysBack); err != nil {
			logger.Error("Mailbox fetch failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
