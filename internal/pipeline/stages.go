package pipeline

import (
	"context"
	"errors"

	"revoice/internal/logging"
	"revoice/internal/runlog"
	"revoice/internal/services"
)

var errorHints = map[string]string{
	"validation":    "check the input video and output path",
	"configuration": "check credentials and the config file (revoice config validate)",
	"timeout":       "the collaborator did not answer in time; raise the timeout or retry later",
	"extraction":    "check that the video has a decodable audio track (ffprobe <video>)",
	"transcription": "check Google Speech-to-Text credentials, quota and language_code",
	"correction":    "check the LLM endpoint, key and model or deployment name",
	"synthesis":     "check Google Text-to-Speech credentials and voice_name; long text exceeds the request limit",
	"mux":           "check ffmpeg codec support (revoice deps)",
	"io":            "check free space and permissions of work_dir and output_dir",
}

func errorHint(err error) string {
	if hint, ok := errorHints[services.Kind(err)]; ok {
		return hint
	}
	return "check logs for details"
}

// stage runs fn as one lifecycle step and advances rs to done when it succeeds.
func (r *Runner) stage(ctx context.Context, rs *run, name string, done State, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrIO, name, "cancelled", "run cancelled before stage", err)
	}
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, r.logger)
	started := r.now()
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("from_state", rs.state.String()),
	)

	if err := fn(stageCtx); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil && services.Kind(err) == "unknown" {
			err = services.Wrap(services.ErrIO, name, "cancelled", "run cancelled", err)
		}
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, errorHint(err)),
			logging.Error(err),
			logging.Elapsed(r.now().Sub(started)),
		)
		return err
	}

	rs.state = done
	rs.result.State = done
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("state", done.String()),
		logging.Elapsed(r.now().Sub(started)),
	)
	if r.deps.Recorder != nil {
		if err := r.deps.Recorder.Advance(context.WithoutCancel(stageCtx), rs.id, done.String()); err != nil {
			r.historyWarning(stageCtx, "failed to record run state", err)
		}
	}
	return nil
}

func (r *Runner) recordBegin(ctx context.Context, rs *run) {
	if r.deps.Recorder == nil {
		return
	}
	err := r.deps.Recorder.Begin(context.WithoutCancel(ctx), runlog.Run{
		ID:         rs.id,
		SourceName: rs.req.SourceName,
		SourcePath: rs.req.SourcePath,
		OutputPath: rs.req.OutputPath,
		State:      rs.state.String(),
	})
	if err != nil {
		r.historyWarning(ctx, "failed to record run start", err)
	}
}

func (r *Runner) recordFinish(ctx context.Context, rs *run, runErr error) {
	if r.deps.Recorder == nil {
		return
	}
	finished := r.now().UTC()
	record := runlog.Run{
		ID:            rs.id,
		SourceName:    rs.req.SourceName,
		OutputPath:    rs.result.OutputPath,
		Status:        runlog.StatusSucceeded,
		State:         rs.state.String(),
		Transcript:    rs.result.Transcript,
		Corrected:     rs.result.Corrected,
		AudioChannels: rs.result.AudioChannels,
		VideoSeconds:  rs.result.VideoDuration,
		FinishedAt:    &finished,
	}
	if runErr != nil {
		record.Status = runlog.StatusFailed
		record.ErrorKind = services.Kind(runErr)
		record.ErrorMessage = runErr.Error()
	}
	if err := r.deps.Recorder.Finish(context.WithoutCancel(ctx), record); err != nil {
		r.historyWarning(ctx, "failed to record run outcome", err)
	}
}

func (r *Runner) historyWarning(ctx context.Context, msg string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, r.logger), msg, "history_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the history database path and disk space"),
		logging.String(logging.FieldImpact, "run history may be incomplete"),
	)
}
