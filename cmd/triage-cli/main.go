package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"time"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/logging"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

var (
	// Response generation flags
	provider    = flag.String("provider", "none", "Response provider (none, openai, gemini, bedrock)")
	maxTokens   = flag.Int("max-tokens", 300, "Maximum tokens for generated responses")
	temperature = flag.Float64("temperature", 0.7, "Temperature for response generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for response generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to the provider")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-3.5-turbo", "OpenAI model name")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Input flags
	inputFile     = flag.String("file", "", "Input email file (use stdin if not specified)")
	draftReply    = flag.Bool("draft", false, "Also draft a reply for the email")
	customContext = flag.String("context", "", "Additional context for the drafted reply")
	verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog       = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile    = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	email, err := readEmail(*inputFile, logger)
	if err != nil {
		logger.Fatal("Failed to read email", zap.Error(err))
	}

	kb := core.DefaultKnowledgeBase()
	analyzer := core.NewEmailAnalyzer(kb, logger)
	analysis := analyzer.Analyze(email)

	fmt.Printf("=== Email ===\n")
	fmt.Printf("From: %s\n", email.SenderEmail)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n\n", len(email.Body))

	fmt.Printf("=== Analysis ===\n")
	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode analysis", zap.Error(err))
	}
	fmt.Println(string(out))

	if !*draftReply {
		return
	}

	textProcessor := utils.NewTextProcessor(logger)
	llmFactory := factory.NewLLMFactory(cfg, logger, textProcessor)
	backend, err := llmFactory.CreateBackend()
	if err != nil {
		logger.Fatal("Failed to create response backend", zap.Error(err))
	}

	responder := core.NewResponseGenerator(backend, kb, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	draft := responder.Generate(ctx, email, analysis, *customContext)

	fmt.Printf("\n=== Draft Reply ===\n")
	fmt.Println(draft)

	if closer, ok := backend.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close response backend", zap.Error(err))
		}
	}
}

// readEmail parses an RFC 822 message from the given file or stdin
func readEmail(path string, logger *zap.Logger) (*core.Email, error) {
	var reader io.Reader
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading email from file", zap.String("file", path))
	} else {
		reader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	msg, err := mail.ReadMessage(bufio.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}

	sender := msg.Header.Get("From")
	if addr, err := mail.ParseAddress(sender); err == nil {
		sender = addr.Address
	}

	receivedAt := time.Now()
	if date, err := msg.Header.Date(); err == nil {
		receivedAt = date
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read email body: %w", err)
	}

	textProcessor := utils.NewTextProcessor(logger)

	return &core.Email{
		SenderEmail: sender,
		Subject:     msg.Header.Get("Subject"),
		Body:        textProcessor.CleanEmailBody(string(bodyBytes)),
		ReceivedAt:  receivedAt,
	}, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("llm.provider", *provider)

	switch *provider {
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_body_size", *maxBodySize)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_body_size", *maxBodySize)
	}

	return config.NewFromViper(v)
}
