package config

import "time"

// LLMConfig represents the configuration for the response generation provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// MailboxConfig represents the IMAP mailbox configuration
type MailboxConfig struct {
	Enabled         bool
	Server          string
	Port            int
	Address         string
	Password        string
	Folder          string
	SupportKeywords []string
	PollFrequency   time.Duration
	DaysBack        int
	FetchLimit      int
}

// SMTPConfig represents the outbound mail configuration
type SMTPConfig struct {
	Enabled  bool
	Server   string
	Port     int
	Address  string
	Password string
}

// GetLLM returns the response generation configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetMailbox returns the IMAP mailbox configuration
func (c *Config) GetMailbox() MailboxConfig {
	return MailboxConfig{
		Enabled:         c.GetBool("mailbox.enabled"),
		Server:          c.GetString("mailbox.server"),
		Port:            c.GetInt("mailbox.port"),
		Address:         c.GetString("mailbox.address"),
		Password:        c.GetString("mailbox.password"),
		Folder:          c.GetString("mailbox.folder"),
		SupportKeywords: c.GetStringSlice("mailbox.support_keywords"),
		PollFrequency:   c.GetDuration("mailbox.poll_frequency"),
		DaysBack:        c.GetInt("mailbox.days_back"),
		FetchLimit:      c.GetInt("mailbox.fetch_limit"),
	}
}

// GetSMTP returns the outbound mail configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:  c.GetBool("smtp.enabled"),
		Server:   c.GetString("smtp.server"),
		Port:     c.GetInt("smtp.port"),
		Address:  c.GetString("smtp.address"),
		Password: c.GetString("smtp.password"),
	}
}
