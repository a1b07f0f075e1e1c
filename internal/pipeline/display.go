package pipeline

import "context"

// ArtifactKind names what a Display is being shown.
type ArtifactKind string

const (
	ArtifactOriginalVideo ArtifactKind = "original_video"
	ArtifactTranscript    ArtifactKind = "transcript"
	ArtifactCorrected     ArtifactKind = "corrected_text"
	ArtifactFinalVideo    ArtifactKind = "final_video"
)

// Artifact is one user-visible result of a run. Videos carry Path, text carries Text.
type Artifact struct {
	Kind  ArtifactKind
	RunID string
	Path  string
	Text  string
}

// Display presents artifacts to the user as the run produces them.
type Display interface {
	Show(ctx context.Context, artifact Artifact)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(ctx context.Context, artifact Artifact)

// Show calls f.
func (f DisplayFunc) Show(ctx context.Context, artifact Artifact) {
	if f != nil {
		f(ctx, artifact)
	}
}

// NopDisplay discards every artifact.
type NopDisplay struct{}

// Show does nothing.
func (NopDisplay) Show(context.Context, Artifact) {}
