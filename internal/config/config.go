package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"revoice/internal/services/retry"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	WorkDir              string `toml:"work_dir"`
	OutputDir            string `toml:"output_dir"`
	LogDir               string `toml:"log_dir"`
	HistoryDB            string `toml:"history_db"`
	WorkspaceMaxAgeHours int    `toml:"workspace_max_age_hours"`
}

// Google contains settings shared by the Speech-to-Text and Text-to-Speech clients.
type Google struct {
	CredentialsFile   string `toml:"credentials_file"`
	LanguageCode      string `toml:"language_code"`
	SampleRateHertz   int    `toml:"sample_rate_hertz"`
	VoiceName         string `toml:"voice_name"`
	MaxSynthesisBytes int    `toml:"max_synthesis_bytes"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

// LLM contains the chat completion settings for transcript correction.
type LLM struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	APIVersion     string `toml:"api_version"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Media contains ffmpeg/ffprobe settings and output codecs.
type Media struct {
	FFmpegBinary      string   `toml:"ffmpeg_binary"`
	FFprobeBinary     string   `toml:"ffprobe_binary"`
	VideoCodec        string   `toml:"video_codec"`
	AudioCodec        string   `toml:"audio_codec"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	TimeoutSeconds    int      `toml:"timeout_seconds"`
}

// Retry bounds the attempts made against each external service.
type Retry struct {
	MaxAttempts     int `toml:"max_attempts"`
	BaseDelayMillis int `toml:"base_delay_ms"`
	MaxDelayMillis  int `toml:"max_delay_ms"`
}

// Server contains HTTP API settings.
type Server struct {
	Bind              string `toml:"bind"`
	MaxUploadMB       int    `toml:"max_upload_mb"`
	MaxConcurrentRuns int    `toml:"max_concurrent_runs"`
	Token             string `toml:"token"`
}

// History controls the persisted run record.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for revoice.
//
// Configuration sections by subsystem:
//   - Paths: work, output, and log directories plus the history database
//   - Google: speech recognition and synthesis settings
//   - LLM: transcript correction provider
//   - Media: ffmpeg binaries, codecs, and accepted upload containers
//   - Retry: bounded retry policy for external calls
//   - Server: HTTP API bind address and limits
//   - History: persisted run records
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Google  Google  `toml:"google"`
	LLM     LLM     `toml:"llm"`
	Media   Media   `toml:"media"`
	Retry   Retry   `toml:"retry"`
	Server  Server  `toml:"server"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return expandPath(filepath.Join(base, "revoice", "config.toml"))
	}
	return expandPath("~/.config/revoice/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("revoice.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work, output, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.History.Enabled && c.Paths.HistoryDB != "" {
		if err := os.MkdirAll(filepath.Dir(c.Paths.HistoryDB), 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}
	return nil
}

// WorkspaceMaxAge returns how old a leftover run workspace must be before it is swept.
func (c *Config) WorkspaceMaxAge() time.Duration {
	return time.Duration(c.Paths.WorkspaceMaxAgeHours) * time.Hour
}

// GoogleTimeout returns the per-attempt timeout for Google API calls.
func (c *Config) GoogleTimeout() time.Duration {
	return time.Duration(c.Google.TimeoutSeconds) * time.Second
}

// LLMTimeout returns the per-attempt timeout for chat completion calls.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// MediaTimeout returns the timeout applied to each ffmpeg/ffprobe invocation.
func (c *Config) MediaTimeout() time.Duration {
	return time.Duration(c.Media.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the HTTP upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// RetryPolicy builds the retry policy for a collaborator with the given per-attempt timeout.
func (c *Config) RetryPolicy(attemptTimeout time.Duration) retry.Policy {
	return retry.Policy{
		MaxAttempts:    c.Retry.MaxAttempts,
		BaseDelay:      time.Duration(c.Retry.BaseDelayMillis) * time.Millisecond,
		MaxDelay:       time.Duration(c.Retry.MaxDelayMillis) * time.Millisecond,
		AttemptTimeout: attemptTimeout,
	}
}

// IsAllowedVideo reports whether name carries one of the accepted container extensions.
func (c *Config) IsAllowedVideo(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, allowed := range c.Media.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
