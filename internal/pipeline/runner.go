package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"revoice/internal/config"
	"revoice/internal/fileutil"
	"revoice/internal/logging"
	"revoice/internal/media/audio"
	"revoice/internal/media/ffmpeg"
	"revoice/internal/media/ffprobe"
	"revoice/internal/media/pcm"
	"revoice/internal/runlog"
	"revoice/internal/services"
	"revoice/internal/workspace"
)

// Prober inspects a media file.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Extractor decodes one audio stream of a video to WAV.
type Extractor interface {
	Extract(ctx context.Context, req ffmpeg.ExtractRequest) error
}

// Transcriber turns a mono WAV file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Corrector cleans up a transcript.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

// Synthesizer renders text as WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Muxer replaces a video's audio with synthesized speech.
type Muxer interface {
	Mux(ctx context.Context, req ffmpeg.MuxRequest) (ffmpeg.MuxResult, error)
}

// Recorder persists run progress. *runlog.Store satisfies it.
type Recorder interface {
	Begin(ctx context.Context, run runlog.Run) error
	Advance(ctx context.Context, id, state string) error
	Finish(ctx context.Context, run runlog.Run) error
}

// Dependencies are the collaborators of a Runner. Transcriber, Corrector and
// Synthesizer are required; media collaborators default to the configured
// ffmpeg/ffprobe binaries.
type Dependencies struct {
	Prober      Prober
	Extractor   Extractor
	Transcriber Transcriber
	Corrector   Corrector
	Synthesizer Synthesizer
	Muxer       Muxer
	Display     Display
	Recorder    Recorder
}

// Request describes one run.
type Request struct {
	SourcePath string
	OutputPath string // Defaults to <output_dir>/<stem>_revoiced<ext>
	SourceName string // Display name; defaults to the base name of SourcePath
	RunID      string // Optional caller-chosen id; a UUID otherwise
}

// Result summarises a run. On failure State is StateFailed and OutputPath is empty.
type Result struct {
	RunID         string        `json:"run_id"`
	State         State         `json:"state"`
	SourceName    string        `json:"source_name"`
	Transcript    string        `json:"transcript"`
	Corrected     string        `json:"corrected"`
	OutputPath    string        `json:"output_path,omitempty"`
	AudioChannels int           `json:"audio_channels"`
	AudioTrack    string        `json:"audio_track,omitempty"`
	VideoDuration float64       `json:"video_duration_seconds"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Runner executes pipeline runs. It is safe for concurrent use; each run
// owns its own workspace.
type Runner struct {
	cfg    *config.Config
	deps   Dependencies
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner validates deps and fills in media defaults from cfg.
func NewRunner(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "config is required", nil)
	}
	switch {
	case deps.Transcriber == nil:
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "transcriber is required", nil)
	case deps.Corrector == nil:
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "corrector is required", nil)
	case deps.Synthesizer == nil:
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "synthesizer is required", nil)
	}
	if deps.Prober == nil {
		deps.Prober = ffprobe.Prober{Binary: cfg.Media.FFprobeBinary}
	}
	if deps.Extractor == nil {
		deps.Extractor = ffmpeg.NewExtractor(cfg.Media.FFmpegBinary, logger)
	}
	if deps.Muxer == nil {
		deps.Muxer = ffmpeg.NewMuxer(cfg, logger)
	}
	if deps.Display == nil {
		deps.Display = NopDisplay{}
	}
	return &Runner{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		now:    time.Now,
	}, nil
}

// DefaultOutputPath names the output for source inside outputDir.
func DefaultOutputPath(outputDir, source string) string {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	return filepath.Join(outputDir, strings.TrimSuffix(base, ext)+"_revoiced"+ext)
}

// run carries the mutable state of one execution.
type run struct {
	id        string
	req       Request
	ws        *workspace.Workspace
	state     State
	result    Result
	published string
	started   time.Time
}

// Run executes every stage for req. The returned Result is populated even on
// failure so callers can report the run id and the state reached.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	if r == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "init", "runner not initialized", nil)
	}
	req, err := r.normalizeRequest(req)
	if err != nil {
		return Result{State: StateFailed}, err
	}

	lock := flock.New(req.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return Result{State: StateFailed}, services.Wrap(services.ErrIO, "pipeline", "lock", "acquire output lock", err)
	}
	if !locked {
		return Result{State: StateFailed}, services.Wrap(services.ErrValidation, "pipeline", "lock",
			fmt.Sprintf("another run is writing %s", req.OutputPath), nil)
	}
	defer func() {
		// Unlink before unlocking; unlinking afterwards can delete a file another run has just locked.
		_ = os.Remove(lock.Path())
		_ = lock.Unlock()
	}()

	id := strings.TrimSpace(req.RunID)
	if id == "" {
		id = uuid.NewString()
	}
	ctx = services.WithRunID(ctx, id)
	rs := &run{
		id:      id,
		req:     req,
		state:   StatePending,
		started: r.now(),
		result:  Result{RunID: id, State: StatePending, SourceName: req.SourceName},
	}
	logger := logging.WithContext(ctx, r.logger)

	r.recordBegin(ctx, rs)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("source_file", req.SourcePath),
		logging.String("output_file", req.OutputPath),
	)

	runErr := r.execute(ctx, rs)
	if runErr == nil {
		runErr = r.cleanup(ctx, rs)
	} else {
		r.abort(ctx, rs)
	}
	if runErr != nil {
		rs.state = StateFailed
		rs.result.OutputPath = ""
	}
	rs.result.State = rs.state
	rs.result.Elapsed = r.now().Sub(rs.started)
	r.recordFinish(ctx, rs, runErr)

	if runErr != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failed",
			logging.Error(runErr),
			logging.String(logging.FieldErrorKind, services.Kind(runErr)),
			logging.String(logging.FieldErrorHint, errorHint(runErr)),
			logging.Elapsed(rs.result.Elapsed),
		)
		return rs.result, runErr
	}
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("output_file", rs.result.OutputPath),
		logging.Elapsed(rs.result.Elapsed),
	)
	return rs.result, nil
}

func (r *Runner) normalizeRequest(req Request) (Request, error) {
	req.SourcePath = strings.TrimSpace(req.SourcePath)
	if req.SourcePath == "" {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request", "source video is required", nil)
	}
	source, err := filepath.Abs(req.SourcePath)
	if err != nil {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request", "resolve source path", err)
	}
	req.SourcePath = source
	if strings.TrimSpace(req.SourceName) == "" {
		req.SourceName = filepath.Base(source)
	}
	if !r.cfg.IsAllowedVideo(req.SourceName) {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request",
			fmt.Sprintf("unsupported video type %q (accepted: %s)", filepath.Ext(req.SourceName), strings.Join(r.cfg.Media.AllowedExtensions, ", ")), nil)
	}
	info, err := os.Stat(source)
	if err != nil {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request", "source video not readable", err)
	}
	if info.IsDir() {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request", "source video is a directory", nil)
	}

	output := strings.TrimSpace(req.OutputPath)
	if output == "" {
		output = DefaultOutputPath(r.cfg.Paths.OutputDir, req.SourceName)
	}
	if output, err = filepath.Abs(output); err != nil {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request", "resolve output path", err)
	}
	if output == source {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request", "output would overwrite the source video", nil)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return req, services.Wrap(services.ErrIO, "pipeline", "request", "create output directory", err)
	}
	req.OutputPath = output
	return req, nil
}

func (r *Runner) execute(ctx context.Context, rs *run) error {
	ws, err := workspace.Create(r.cfg.Paths.WorkDir, rs.id)
	if err != nil {
		return services.Wrap(services.ErrIO, "pipeline", "workspace", "create run workspace", err)
	}
	rs.ws = ws
	ext := strings.ToLower(filepath.Ext(rs.req.SourceName))
	staged := ws.Path("source" + ext)

	if err := r.stage(ctx, rs, "upload", StateUploaded, func(context.Context) error {
		if err := fileutil.CopyFile(rs.req.SourcePath, staged); err != nil {
			return services.Wrap(services.ErrIO, "upload", "stage", "copy source into workspace", err)
		}
		r.deps.Display.Show(ctx, Artifact{Kind: ArtifactOriginalVideo, RunID: rs.id, Path: rs.req.SourcePath})
		return nil
	}); err != nil {
		return err
	}

	extracted := ws.Path("audio.wav")
	if err := r.stage(ctx, rs, "extract", StateAudioExtracted, func(stageCtx context.Context) error {
		return r.extract(stageCtx, rs, staged, extracted)
	}); err != nil {
		return err
	}

	speechPath := extracted
	if err := r.stage(ctx, rs, "downmix", StateDownmixed, func(context.Context) error {
		path, err := pcm.Downmix(extracted, ws.Path("mono.wav"))
		if err != nil {
			return services.Wrap(services.ErrExtraction, "downmix", "pcm", "downmix audio to mono", err)
		}
		speechPath = path
		return nil
	}); err != nil {
		return err
	}

	if err := r.stage(ctx, rs, "transcribe", StateTranscribed, func(stageCtx context.Context) error {
		transcript, err := r.deps.Transcriber.Transcribe(stageCtx, speechPath)
		if err != nil {
			return err
		}
		rs.result.Transcript = transcript
		r.deps.Display.Show(ctx, Artifact{Kind: ArtifactTranscript, RunID: rs.id, Text: transcript})
		return nil
	}); err != nil {
		return err
	}

	if err := r.stage(ctx, rs, "correct", StateCorrected, func(stageCtx context.Context) error {
		corrected, err := r.deps.Corrector.Correct(stageCtx, rs.result.Transcript)
		if err != nil {
			return err
		}
		rs.result.Corrected = corrected
		r.deps.Display.Show(ctx, Artifact{Kind: ArtifactCorrected, RunID: rs.id, Text: corrected})
		return nil
	}); err != nil {
		return err
	}

	var voice []byte
	if err := r.stage(ctx, rs, "synthesize", StateSynthesized, func(stageCtx context.Context) error {
		data, err := r.deps.Synthesizer.Synthesize(stageCtx, rs.result.Corrected)
		if err != nil {
			return err
		}
		voice = data
		return nil
	}); err != nil {
		return err
	}

	if err := r.stage(ctx, rs, "mux", StateMuxed, func(stageCtx context.Context) error {
		return r.mux(stageCtx, rs, staged, voice)
	}); err != nil {
		return err
	}

	return r.stage(ctx, rs, "display", StateDisplayed, func(context.Context) error {
		r.deps.Display.Show(ctx, Artifact{Kind: ArtifactFinalVideo, RunID: rs.id, Path: rs.published})
		return nil
	})
}

func (r *Runner) extract(ctx context.Context, rs *run, staged, dest string) error {
	mediaCtx, cancel := r.mediaContext(ctx)
	defer cancel()

	probe, err := r.deps.Prober.Inspect(mediaCtx, staged)
	if err != nil {
		return services.Wrap(services.ErrExtraction, "extract", "ffprobe", "inspect source video", markMediaTimeout(err))
	}
	if probe.VideoStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, "extract", "ffprobe", "source has no video stream", nil)
	}
	sel := audio.Select(probe.Streams, r.cfg.Google.LanguageCode)
	if !sel.Found() {
		return services.Wrap(services.ErrExtraction, "extract", "select", "video has no audio stream", nil)
	}
	rs.result.AudioChannels = sel.Stream.Channels
	rs.result.AudioTrack = sel.Label()
	if seconds := probe.DurationSeconds(); seconds > 0 {
		rs.result.VideoDuration = seconds
	}
	logging.WithContext(ctx, r.logger).Info("speech track selected",
		logging.String(logging.FieldEventType, "audio_track_selected"),
		logging.Int("stream_index", sel.Index),
		logging.String("track", sel.Label()),
		logging.String("reason", sel.Reason),
	)

	req := ffmpeg.ExtractRequest{
		VideoPath:  staged,
		Ordinal:    sel.Ordinal,
		SampleRate: r.cfg.Google.SampleRateHertz,
		Dest:       dest,
	}
	if sel.Stream.Channels > 2 {
		req.Channels = 2
	}
	if err := r.deps.Extractor.Extract(mediaCtx, req); err != nil {
		return markMediaTimeout(err)
	}
	return nil
}

func (r *Runner) mux(ctx context.Context, rs *run, staged string, voice []byte) error {
	mediaCtx, cancel := r.mediaContext(ctx)
	defer cancel()

	muxed := rs.ws.Path("final" + strings.ToLower(filepath.Ext(rs.req.OutputPath)))
	result, err := r.deps.Muxer.Mux(mediaCtx, ffmpeg.MuxRequest{
		VideoPath:  staged,
		Audio:      voice,
		WorkDir:    rs.ws.Dir,
		OutputPath: muxed,
	})
	if err != nil {
		return markMediaTimeout(err)
	}
	if result.VideoSeconds > 0 {
		rs.result.VideoDuration = result.VideoSeconds
	}
	if err := fileutil.MoveFile(muxed, rs.req.OutputPath); err != nil {
		return services.Wrap(services.ErrIO, "mux", "publish", "move output into place", err)
	}
	rs.published = rs.req.OutputPath
	rs.result.OutputPath = rs.req.OutputPath
	return nil
}

// cleanup releases the workspace after a successful run. A release failure
// fails the run and withdraws the published output.
func (r *Runner) cleanup(ctx context.Context, rs *run) error {
	return r.stage(ctx, rs, "cleanup", StateCleanedUp, func(context.Context) error {
		if err := rs.ws.Release(); err != nil {
			r.withdraw(ctx, rs)
			return services.Wrap(services.ErrIO, "cleanup", "workspace", "remove run workspace", err)
		}
		return nil
	})
}

// abort removes everything a failed run created.
func (r *Runner) abort(ctx context.Context, rs *run) {
	r.withdraw(ctx, rs)
	if rs.ws == nil {
		return
	}
	if err := rs.ws.Release(); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failed to remove run workspace", "workspace_cleanup_failed",
			logging.Error(err),
			logging.String("workspace", rs.ws.Dir),
			logging.String(logging.FieldErrorHint, "remove the directory manually or let the startup sweep handle it"),
			logging.String(logging.FieldImpact, "temporary files remain on disk"),
		)
	}
}

func (r *Runner) withdraw(ctx context.Context, rs *run) {
	if rs.published == "" {
		return
	}
	if err := os.Remove(rs.published); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failed to remove output of failed run", "output_cleanup_failed",
			logging.Error(err),
			logging.String("output_file", rs.published),
			logging.String(logging.FieldImpact, "an output file remains for a failed run"),
		)
	}
	rs.published = ""
	rs.result.OutputPath = ""
}

func (r *Runner) mediaContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout := r.cfg.MediaTimeout(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func markMediaTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.MarkTimeout(err)
	}
	return err
}
