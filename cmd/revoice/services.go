package main

import (
	"context"
	"log/slog"

	"revoice/internal/config"
	"revoice/internal/pipeline"
	"revoice/internal/services/llm"
	"revoice/internal/services/speech"
	"revoice/internal/services/tts"
)

// newServices builds the speech, correction and synthesis clients. The
// returned func closes the Google connections. Tests replace it with fakes.
var newServices = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Dependencies, func(), error) {
	transcriber, err := speech.New(ctx, cfg, logger)
	if err != nil {
		return pipeline.Dependencies{}, nil, err
	}
	synthesizer, err := tts.New(ctx, cfg, logger)
	if err != nil {
		_ = transcriber.Close()
		return pipeline.Dependencies{}, nil, err
	}
	corrector, err := llm.NewCorrector(cfg, logger)
	if err != nil {
		_ = transcriber.Close()
		_ = synthesizer.Close()
		return pipeline.Dependencies{}, nil, err
	}
	closeAll := func() {
		_ = transcriber.Close()
		_ = synthesizer.Close()
	}
	return pipeline.Dependencies{
		Transcriber: transcriber,
		Corrector:   corrector,
		Synthesizer: synthesizer,
	}, closeAll, nil
}
