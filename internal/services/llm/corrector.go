package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"revoice/internal/config"
	"revoice/internal/logging"
	"revoice/internal/services"
	"revoice/internal/services/retry"
)

// Corrector rewrites transcripts through a chat completion model.
type Corrector struct {
	client   *openai.Client
	model    string
	provider string
	policy   retry.Policy
	logger   *slog.Logger
}

// Option customizes the corrector.
type Option func(*options)

type options struct {
	httpClient *http.Client
	sleeper    func(time.Duration)
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(o *options) {
		o.sleeper = sleeper
	}
}

// NewCorrector constructs a corrector from the [llm] and [retry] settings.
func NewCorrector(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Corrector, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "correct", "init", "config is required", nil)
	}
	apiKey := strings.TrimSpace(cfg.LLM.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "correct", "init", "llm.api_key is required", nil)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var clientCfg openai.ClientConfig
	switch cfg.LLM.Provider {
	case config.ProviderAzure:
		clientCfg = openai.DefaultAzureConfig(apiKey, strings.TrimSpace(cfg.LLM.BaseURL))
		clientCfg.APIVersion = cfg.LLM.APIVersion
		deployment := cfg.LLM.Model
		clientCfg.AzureModelMapperFunc = func(string) string { return deployment }
	case config.ProviderOpenAI:
		clientCfg = openai.DefaultConfig(apiKey)
		if base := strings.TrimSpace(cfg.LLM.BaseURL); base != "" {
			clientCfg.BaseURL = strings.TrimRight(base, "/")
		}
	default:
		return nil, services.Wrap(services.ErrConfiguration, "correct", "init", fmt.Sprintf("unsupported provider %q", cfg.LLM.Provider), nil)
	}
	if o.httpClient != nil {
		clientCfg.HTTPClient = o.httpClient
	}

	policy := cfg.RetryPolicy(cfg.LLMTimeout())
	policy.Sleeper = o.sleeper
	return &Corrector{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.LLM.Model,
		provider: cfg.LLM.Provider,
		policy:   policy,
		logger:   logging.NewComponentLogger(logger, "corrector"),
	}, nil
}

type emptyContentError struct {
	FinishReason string
	Choices      int
}

func (e *emptyContentError) Error() string {
	if e.Choices == 0 {
		return "empty choices"
	}
	return fmt.Sprintf("empty content (finish_reason=%q)", e.FinishReason)
}

// Correct returns the model's corrected version of text. Empty text is sent as-is.
func (c *Corrector) Correct(ctx context.Context, text string) (string, error) {
	if c == nil || c.client == nil {
		return "", services.Wrap(services.ErrCorrection, "correct", "init", "corrector not initialized", nil)
	}
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt(text)},
		},
	}

	start := time.Now()
	content, err := retry.Do(ctx, c.policy, classify, func(attemptCtx context.Context) (string, error) {
		resp, err := c.client.CreateChatCompletion(attemptCtx, req)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", &emptyContentError{}
		}
		choice := resp.Choices[0]
		content := strings.TrimSpace(choice.Message.Content)
		if content == "" {
			return "", &emptyContentError{FinishReason: string(choice.FinishReason), Choices: len(resp.Choices)}
		}
		return content, nil
	})
	if err != nil {
		return "", c.wrapError(err)
	}
	c.logger.Debug("transcript corrected",
		logging.String("provider", c.provider),
		logging.String("model", c.model),
		logging.Int("input_chars", len(text)),
		logging.Int("output_chars", len(content)),
		logging.Elapsed(time.Since(start)),
	)
	return content, nil
}

func (c *Corrector) wrapError(err error) error {
	if status := statusCode(err); status == http.StatusUnauthorized || status == http.StatusForbidden {
		return services.Wrap(services.ErrCorrection, "correct", "chat completion", fmt.Sprintf("authentication rejected (http %d)", status), err)
	}
	if retry.IsTimeout(err) {
		err = services.MarkTimeout(err)
	}
	return services.Wrap(services.ErrCorrection, "correct", "chat completion", "request failed", err)
}

func classify(err error) (time.Duration, bool) {
	var empty *emptyContentError
	if errors.As(err, &empty) {
		return 0, true
	}
	if status := statusCode(err); status != 0 {
		return 0, status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500
	}
	return 0, retry.IsTimeout(err)
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
