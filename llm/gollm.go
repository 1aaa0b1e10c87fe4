package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/teilomillet/gollm"
)

// Default generation settings. Temperature is pinned to 0 so a fixed run seed
// replays the same decisions; retries are disabled because the loop treats a
// failed call as a per-turn error observation, not something to mask.
const (
	defaultMaxTokens = 300
	defaultModel     = "gpt-4o-mini"
)

// providerKeyVars maps provider identifiers to their credential env vars.
var providerKeyVars = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"groq":      "GROQ_API_KEY",
}

// GollmClient implements Client over a gollm.LLM instance.
type GollmClient struct {
	provider string
	model    string
	llm      gollm.LLM
}

// Option configures a GollmClient.
type Option func(*gollmConfig)

type gollmConfig struct {
	apiKey    string
	model     string
	maxTokens int
	extraOpts []gollm.ConfigOption
}

// WithAPIKey sets the provider credential explicitly instead of reading it
// from the environment.
func WithAPIKey(key string) Option {
	return func(c *gollmConfig) { c.apiKey = key }
}

// WithModel overrides the default model for the provider.
func WithModel(model string) Option {
	return func(c *gollmConfig) { c.model = model }
}

// WithMaxTokens sets the default maximum output length.
func WithMaxTokens(n int) Option {
	return func(c *gollmConfig) { c.maxTokens = n }
}

// WithGollmOptions appends raw gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) Option {
	return func(c *gollmConfig) { c.extraOpts = append(c.extraOpts, opts...) }
}

// NewGollmClient builds a client for the given provider. An empty apiKey is
// resolved from the provider's environment variable; if no credential can be
// found the constructor fails with a ConfigError so callers can abort before
// any run begins.
func NewGollmClient(provider string, opts ...Option) (*GollmClient, error) {
	cfg := &gollmConfig{maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(cfg)
	}

	apiKey := cfg.apiKey
	if apiKey == "" {
		if envVar, ok := providerKeyVars[provider]; ok {
			apiKey = os.Getenv(envVar)
			if apiKey == "" {
				return nil, &ConfigError{Message: fmt.Sprintf(
					"%s not set; export it or add it to your .env file", envVar)}
			}
		}
	}

	model := cfg.model
	if model == "" {
		model = defaultModel
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(0.0),
		gollm.SetMaxRetries(0),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	inner, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gollm client for provider %s: %w", provider, err)
	}

	return &GollmClient{provider: provider, model: model, llm: inner}, nil
}

// NewClientFromEnv loads a .env file if present and builds a client from
// TEXTQUEST_LLM_PROVIDER (default "openai") and TEXTQUEST_LLM_MODEL.
// Missing credentials surface as a ConfigError.
func NewClientFromEnv() (*GollmClient, error) {
	_ = godotenv.Load()

	provider := strings.TrimSpace(os.Getenv("TEXTQUEST_LLM_PROVIDER"))
	if provider == "" {
		provider = "openai"
	}

	var opts []Option
	if model := strings.TrimSpace(os.Getenv("TEXTQUEST_LLM_MODEL")); model != "" {
		opts = append(opts, WithModel(model))
	}

	return NewGollmClient(provider, opts...)
}

// Provider returns the provider identifier.
func (c *GollmClient) Provider() string { return c.provider }

// Model returns the configured model identifier.
func (c *GollmClient) Model() string { return c.model }

// Complete sends one blocking completion request.
func (c *GollmClient) Complete(ctx context.Context, req Request) (string, error) {
	promptOpts := []gollm.PromptOption{}
	if req.System != "" {
		promptOpts = append(promptOpts,
			gollm.WithSystemPrompt(strings.TrimSpace(req.System), gollm.CacheTypeEphemeral))
	}
	if req.MaxTokens > 0 {
		promptOpts = append(promptOpts, gollm.WithMaxLength(req.MaxTokens))
	}

	// Seed is a request-level override; gollm forwards unknown options to
	// the provider request body.
	c.llm.SetOption("seed", req.Seed)
	if req.MaxTokens > 0 {
		c.llm.SetOption("max_tokens", req.MaxTokens)
	}

	prompt := gollm.NewPrompt(req.Prompt, promptOpts...)
	text, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llm generate (%s/%s): %w", c.provider, c.model, err)
	}
	return text, nil
}
