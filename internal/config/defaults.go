package config

const (
	defaultWorkDir              = "~/.local/share/revoice/work"
	defaultOutputDir            = "~/.local/share/revoice/output"
	defaultLogDir               = "~/.local/share/revoice/logs"
	defaultHistoryDB            = "~/.local/share/revoice/history.db"
	defaultWorkspaceMaxAgeHours = 24
	defaultLanguageCode         = "en-US"
	defaultSampleRateHertz      = 44100
	defaultVoiceName            = "en-US-Journey-F"
	defaultMaxSynthesisBytes    = 5000
	defaultGoogleTimeout        = 120
	defaultLLMProvider          = ProviderAzure
	defaultAzureAPIVersion      = "2024-08-01-preview"
	defaultLLMModel             = "gpt-4"
	defaultLLMTimeout           = 60
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultVideoCodec           = "libx264"
	defaultAudioCodec           = "aac"
	defaultMediaTimeout         = 600
	defaultRetryAttempts        = 3
	defaultRetryBaseDelayMillis = 1000
	defaultRetryMaxDelayMillis  = 10000
	defaultServerBind           = "127.0.0.1:8501"
	defaultMaxUploadMB          = 200
	defaultMaxConcurrentRuns    = 2
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Supported chat completion providers.
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
)

var defaultAllowedExtensions = []string{".mp4", ".mov", ".avi"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:              defaultWorkDir,
			OutputDir:            defaultOutputDir,
			LogDir:               defaultLogDir,
			HistoryDB:            defaultHistoryDB,
			WorkspaceMaxAgeHours: defaultWorkspaceMaxAgeHours,
		},
		Google: Google{
			LanguageCode:      defaultLanguageCode,
			SampleRateHertz:   defaultSampleRateHertz,
			VoiceName:         defaultVoiceName,
			MaxSynthesisBytes: defaultMaxSynthesisBytes,
			TimeoutSeconds:    defaultGoogleTimeout,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			APIVersion:     defaultAzureAPIVersion,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Media: Media{
			FFmpegBinary:      defaultFFmpegBinary,
			FFprobeBinary:     defaultFFprobeBinary,
			VideoCodec:        defaultVideoCodec,
			AudioCodec:        defaultAudioCodec,
			AllowedExtensions: append([]string(nil), defaultAllowedExtensions...),
			TimeoutSeconds:    defaultMediaTimeout,
		},
		Retry: Retry{
			MaxAttempts:     defaultRetryAttempts,
			BaseDelayMillis: defaultRetryBaseDelayMillis,
			MaxDelayMillis:  defaultRetryMaxDelayMillis,
		},
		Server: Server{
			Bind:              defaultServerBind,
			MaxUploadMB:       defaultMaxUploadMB,
			MaxConcurrentRuns: defaultMaxConcurrentRuns,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
