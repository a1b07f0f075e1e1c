package pipelinetest

import (
	"context"
	"sync"
	"testing"

	"revoice/internal/pipeline"
)

// Harness bundles a full set of fakes that succeed by default.
type Harness struct {
	Prober      *Prober
	Extractor   *Extractor
	Transcriber *Transcriber
	Corrector   *Corrector
	Synthesizer *Synthesizer
	Muxer       *Muxer
	Display     *Display
}

// New returns a Harness whose run produces a transcript, a correction and a
// muxed placeholder file.
func New(t testing.TB) *Harness {
	t.Helper()
	return &Harness{
		Prober:      &Prober{},
		Extractor:   &Extractor{T: t},
		Transcriber: &Transcriber{Text: "so um I went to the the store"},
		Corrector:   &Corrector{Text: "So I went to the store."},
		Synthesizer: &Synthesizer{T: t},
		Muxer:       &Muxer{},
		Display:     &Display{},
	}
}

// Dependencies wires the fakes into pipeline dependencies.
func (h *Harness) Dependencies() pipeline.Dependencies {
	return pipeline.Dependencies{
		Prober:      h.Prober,
		Extractor:   h.Extractor,
		Transcriber: h.Transcriber,
		Corrector:   h.Corrector,
		Synthesizer: h.Synthesizer,
		Muxer:       h.Muxer,
		Display:     h.Display,
	}
}

// Display records every artifact shown.
type Display struct {
	mu        sync.Mutex
	Artifacts []pipeline.Artifact
}

// Show records artifact.
func (d *Display) Show(_ context.Context, artifact pipeline.Artifact) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Artifacts = append(d.Artifacts, artifact)
}

// Kinds returns the kinds shown so far, in order.
func (d *Display) Kinds() []pipeline.ArtifactKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	kinds := make([]pipeline.ArtifactKind, 0, len(d.Artifacts))
	for _, a := range d.Artifacts {
		kinds = append(kinds, a.Kind)
	}
	return kinds
}
