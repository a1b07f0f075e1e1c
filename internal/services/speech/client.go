package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"revoice/internal/config"
	"revoice/internal/logging"
	"revoice/internal/services"
	"revoice/internal/services/gcloud"
	"revoice/internal/services/retry"
)

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// Client turns audio files into transcript text.
type Client struct {
	recognize    recognizeFunc
	closer       func() error
	languageCode string
	sampleRate   int
	policy       retry.Policy
	logger       *slog.Logger
}

// New dials Google Speech-to-Text with the configured credentials.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "init", "config is required", nil)
	}
	sc, err := gspeech.NewClient(ctx, gcloud.ClientOptions(cfg)...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "init", "create speech client", err)
	}
	recognize := func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return sc.Recognize(ctx, req)
	}
	return newClient(cfg, recognize, sc.Close, logger), nil
}

func newClient(cfg *config.Config, recognize recognizeFunc, closer func() error, logger *slog.Logger) *Client {
	return &Client{
		recognize:    recognize,
		closer:       closer,
		languageCode: cfg.Google.LanguageCode,
		sampleRate:   cfg.Google.SampleRateHertz,
		policy:       cfg.RetryPolicy(cfg.GoogleTimeout()),
		logger:       logging.NewComponentLogger(logger, "transcriber"),
	}
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

// Transcribe reads the mono 16-bit PCM WAV at path and returns its transcript.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	if c == nil || c.recognize == nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "init", "transcriber not initialized", nil)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "read audio", path, err)
	}
	if len(content) == 0 {
		return "", services.Wrap(services.ErrTranscription, "transcribe", "read audio", "audio file is empty", nil)
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(c.sampleRate),
			LanguageCode:    c.languageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: content},
		},
	}

	start := time.Now()
	resp, err := retry.Do(ctx, c.policy, gcloud.Retryable, func(attemptCtx context.Context) (*speechpb.RecognizeResponse, error) {
		return c.recognize(attemptCtx, req)
	})
	if err != nil {
		return "", wrapError(err)
	}

	transcript, results := joinTranscript(resp)
	c.logger.Debug("audio transcribed",
		logging.String("language_code", c.languageCode),
		logging.Int("results", results),
		logging.Int("chars", len(transcript)),
		logging.Elapsed(time.Since(start)),
	)
	return transcript, nil
}

func joinTranscript(resp *speechpb.RecognizeResponse) (string, int) {
	if resp == nil {
		return "", 0
	}
	parts := make([]string, 0, len(resp.GetResults()))
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		parts = append(parts, alts[0].GetTranscript())
	}
	return strings.Join(parts, " "), len(parts)
}

func wrapError(err error) error {
	msg := fmt.Sprintf("recognize: %s", gcloud.Describe(err))
	if gcloud.IsAuth(err) {
		msg = "credentials rejected"
	}
	if gcloud.IsTimeout(err) {
		err = services.MarkTimeout(err)
	}
	return services.Wrap(services.ErrTranscription, "transcribe", "speech-to-text", msg, err)
}
