package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGoogle(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGoogle() error {
	if _, err := language.Parse(c.Google.LanguageCode); err != nil {
		return fmt.Errorf("google.language_code %q is not a valid BCP 47 tag: %w", c.Google.LanguageCode, err)
	}
	if !strings.HasPrefix(strings.ToLower(c.Google.VoiceName), strings.ToLower(c.Google.LanguageCode)) {
		return fmt.Errorf("google.voice_name %q does not belong to language %q", c.Google.VoiceName, c.Google.LanguageCode)
	}
	return ensurePositiveMap(map[string]int{
		"google.sample_rate_hertz":   c.Google.SampleRateHertz,
		"google.max_synthesis_bytes": c.Google.MaxSynthesisBytes,
		"google.timeout_seconds":     c.Google.TimeoutSeconds,
	})
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderAzure, ProviderOpenAI:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderAzure, ProviderOpenAI, c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/revoice/config.toml"
		}
		env := "AZURE_OPENAI_API_KEY"
		if c.LLM.Provider == ProviderOpenAI {
			env = "OPENAI_API_KEY"
		}
		return fmt.Errorf("llm.api_key is required. Set %s env var or edit %s (create with 'revoice config init')", env, defaultPath)
	}
	if c.LLM.Provider == ProviderAzure {
		if c.LLM.BaseURL == "" {
			return errors.New("llm.base_url is required for azure (or set AZURE_OPENAI_ENDPOINT)")
		}
		if c.LLM.APIVersion == "" {
			return errors.New("llm.api_version is required for azure")
		}
	}
	if c.LLM.BaseURL != "" {
		parsed, err := url.Parse(c.LLM.BaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("llm.base_url %q must be an absolute URL", c.LLM.BaseURL)
		}
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.TimeoutSeconds <= 0 {
		return errors.New("media.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry.max_attempts must be >= 1")
	}
	if c.Retry.BaseDelayMillis < 0 {
		return errors.New("retry.base_delay_ms must be >= 0")
	}
	if c.Retry.MaxDelayMillis < c.Retry.BaseDelayMillis {
		return errors.New("retry.max_delay_ms must be >= retry.base_delay_ms")
	}
	return nil
}

func (c *Config) validateServer() error {
	return ensurePositiveMap(map[string]int{
		"server.max_upload_mb":       c.Server.MaxUploadMB,
		"server.max_concurrent_runs": c.Server.MaxConcurrentRuns,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
