package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/logging"
	"go.uber.org/zap"
)

const importDateFormat = "2006-01-02 15:04:05"

var (
	inputFile = flag.String("file", "sample_emails.csv", "CSV file with sender,subject,body,sent_date columns")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog   = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	storeFactory := factory.NewStoreFactory(cfg, logger)
	repo, err := storeFactory.CreateRepository()
	if err != nil {
		logger.Fatal("Failed to open email store", zap.Error(err))
	}
	defer func() {
		if closer, ok := repo.(interface{ Close() error }); ok {
			closer.Close()
		}
	}()

	analyzer := core.NewEmailAnalyzer(core.DefaultKnowledgeBase(), logger)
	responder := core.NewResponseGenerator(nil, core.DefaultKnowledgeBase(), logger)
	service := core.NewTriageService(analyzer, responder, repo, nil, nil, logger)

	count, err := importCSV(context.Background(), *inputFile, service, logger)
	if err != nil {
		logger.Fatal("Import failed", zap.Error(err))
	}

	fmt.Printf("Imported %d emails from CSV.\n", count)
}

// importCSV reads the CSV file and ingests each row as a support email.
// Rows with unparseable dates fall back to the current time, matching the
// tolerant behavior of ad-hoc sample imports.
func importCSV(ctx context.Context, path string, service *core.TriageService, logger *zap.Logger) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, required := range []string{"sender", "subject", "body", "sent_date"} {
		if _, ok := columns[required]; !ok {
			return 0, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if len(row) < len(header) {
			logger.Warn("Skipping short CSV row", zap.Int("fields", len(row)))
			continue
		}

		receivedAt, err := time.Parse(importDateFormat, row[columns["sent_date"]])
		if err != nil {
			receivedAt = time.Now().UTC()
		}

		email := &core.Email{
			SenderEmail: row[columns["sender"]],
			Subject:     row[columns["subject"]],
			Body:        row[columns["body"]],
			ReceivedAt:  receivedAt,
		}

		_, created, err := service.Ingest(ctx, email)
		if err != nil {
			logger.Error("Failed to import row",
				zap.String("sender", email.SenderEmail),
				zap.Error(err))
			continue
		}
		if created {
			count++
		}
	}

	return count, nil
}
