package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeGoogle(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeMedia()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if c.Paths.WorkspaceMaxAgeHours < 0 {
		c.Paths.WorkspaceMaxAgeHours = 0
	}
	return nil
}

func (c *Config) normalizeGoogle() error {
	c.Google.CredentialsFile = strings.TrimSpace(c.Google.CredentialsFile)
	if c.Google.CredentialsFile == "" {
		if value, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS"); ok {
			c.Google.CredentialsFile = strings.TrimSpace(value)
		}
	}
	if c.Google.CredentialsFile != "" {
		expanded, err := expandPath(c.Google.CredentialsFile)
		if err != nil {
			return fmt.Errorf("google.credentials_file: %w", err)
		}
		c.Google.CredentialsFile = expanded
	}
	c.Google.LanguageCode = strings.TrimSpace(c.Google.LanguageCode)
	if c.Google.LanguageCode == "" {
		c.Google.LanguageCode = defaultLanguageCode
	}
	c.Google.VoiceName = strings.TrimSpace(c.Google.VoiceName)
	if c.Google.VoiceName == "" {
		c.Google.VoiceName = defaultVoiceName
	}
	if c.Google.SampleRateHertz == 0 {
		c.Google.SampleRateHertz = defaultSampleRateHertz
	}
	if c.Google.MaxSynthesisBytes == 0 {
		c.Google.MaxSynthesisBytes = defaultMaxSynthesisBytes
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	switch c.LLM.Provider {
	case ProviderAzure:
		if c.LLM.APIKey == "" {
			if value, ok := os.LookupEnv("AZURE_OPENAI_API_KEY"); ok {
				c.LLM.APIKey = strings.TrimSpace(value)
			}
		}
		if c.LLM.BaseURL == "" {
			if value, ok := os.LookupEnv("AZURE_OPENAI_ENDPOINT"); ok {
				c.LLM.BaseURL = strings.TrimSpace(value)
			}
		}
		c.LLM.APIVersion = strings.TrimSpace(c.LLM.APIVersion)
		if c.LLM.APIVersion == "" {
			c.LLM.APIVersion = defaultAzureAPIVersion
		}
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
				c.LLM.APIKey = strings.TrimSpace(value)
			}
		}
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	c.Media.VideoCodec = strings.TrimSpace(c.Media.VideoCodec)
	if c.Media.VideoCodec == "" {
		c.Media.VideoCodec = defaultVideoCodec
	}
	c.Media.AudioCodec = strings.TrimSpace(c.Media.AudioCodec)
	if c.Media.AudioCodec == "" {
		c.Media.AudioCodec = defaultAudioCodec
	}

	exts := make([]string, 0, len(c.Media.AllowedExtensions))
	seen := make(map[string]struct{}, len(c.Media.AllowedExtensions))
	for _, ext := range c.Media.AllowedExtensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultAllowedExtensions...)
	}
	c.Media.AllowedExtensions = exts
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.Token = strings.TrimSpace(c.Server.Token)
	if c.Server.Token == "" {
		if value, ok := os.LookupEnv("REVOICE_API_TOKEN"); ok {
			c.Server.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
