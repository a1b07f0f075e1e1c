package tts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"revoice/internal/config"
	"revoice/internal/logging"
	"revoice/internal/services"
	"revoice/internal/services/gcloud"
	"revoice/internal/services/retry"
)

type synthesizeFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)

// Client turns text into spoken audio.
type Client struct {
	synthesize   synthesizeFunc
	closer       func() error
	languageCode string
	voiceName    string
	maxBytes     int
	policy       retry.Policy
	logger       *slog.Logger
}

// New dials Google Text-to-Speech with the configured credentials.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "synthesize", "init", "config is required", nil)
	}
	tc, err := texttospeech.NewClient(ctx, gcloud.ClientOptions(cfg)...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "synthesize", "init", "create text-to-speech client", err)
	}
	synthesize := func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
		return tc.SynthesizeSpeech(ctx, req)
	}
	return newClient(cfg, synthesize, tc.Close, logger), nil
}

func newClient(cfg *config.Config, synthesize synthesizeFunc, closer func() error, logger *slog.Logger) *Client {
	return &Client{
		synthesize:   synthesize,
		closer:       closer,
		languageCode: cfg.Google.LanguageCode,
		voiceName:    cfg.Google.VoiceName,
		maxBytes:     cfg.Google.MaxSynthesisBytes,
		policy:       cfg.RetryPolicy(cfg.GoogleTimeout()),
		logger:       logging.NewComponentLogger(logger, "synthesizer"),
	}
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

// Synthesize returns WAV bytes speaking text with the configured voice. Text
// longer than the configured byte limit fails without a request.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c == nil || c.synthesize == nil {
		return nil, services.Wrap(services.ErrSynthesis, "synthesize", "init", "synthesizer not initialized", nil)
	}
	if strings.TrimSpace(text) == "" {
		return nil, services.Wrap(services.ErrSynthesis, "synthesize", "input", "no text to synthesize", nil)
	}
	if c.maxBytes > 0 && len(text) > c.maxBytes {
		return nil, services.Wrap(services.ErrSynthesis, "synthesize", "input",
			fmt.Sprintf("text is %d bytes, limit is %d", len(text), c.maxBytes), nil)
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: c.languageCode,
			Name:         c.voiceName,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_LINEAR16,
		},
	}

	start := time.Now()
	resp, err := retry.Do(ctx, c.policy, gcloud.Retryable, func(attemptCtx context.Context) (*texttospeechpb.SynthesizeSpeechResponse, error) {
		return c.synthesize(attemptCtx, req)
	})
	if err != nil {
		return nil, wrapError(err)
	}
	audio := resp.GetAudioContent()
	if len(audio) == 0 {
		return nil, services.Wrap(services.ErrSynthesis, "synthesize", "text-to-speech", "empty audio response", nil)
	}
	c.logger.Debug("speech synthesized",
		logging.String("voice", c.voiceName),
		logging.Int("chars", len(text)),
		logging.Int("audio_bytes", len(audio)),
		logging.Elapsed(time.Since(start)),
	)
	return audio, nil
}

func wrapError(err error) error {
	msg := fmt.Sprintf("synthesize: %s", gcloud.Describe(err))
	if gcloud.IsAuth(err) {
		msg = "credentials rejected"
	}
	if gcloud.IsTimeout(err) {
		err = services.MarkTimeout(err)
	}
	return services.Wrap(services.ErrSynthesis, "synthesize", "text-to-speech", msg, err)
}
