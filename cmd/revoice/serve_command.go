package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"revoice/internal/httpapi"
	"revoice/internal/logging"
	"revoice/internal/pipeline"
	"revoice/internal/workspace"
)

const serveLockName = "revoice-serve.lock"

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bindFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP upload API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind := strings.TrimSpace(bindFlag); bind != "" {
				cfg.Server.Bind = bind
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, serveLockName))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire serve lock: %w", err)
			}
			if !ok {
				return errors.New("another revoice server is already running")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			sweep := workspace.CleanStale(signalCtx, cfg.Paths.WorkDir, cfg.WorkspaceMaxAge(), logger)
			if len(sweep.Removed) > 0 || len(sweep.Errors) > 0 {
				logger.Info("stale workspaces swept",
					logging.String(logging.FieldEventType, "workspace_sweep"),
					logging.Int("removed", len(sweep.Removed)),
					logging.Int("errors", len(sweep.Errors)),
				)
			}

			deps, closeServices, err := newServices(signalCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeServices()

			var history httpapi.History
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				interrupted, err := store.MarkInterrupted(signalCtx)
				if err != nil {
					logging.WarnWithContext(logger, "failed to mark interrupted runs", "history_write_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "runs from a previous server may still show as running"),
					)
				} else if interrupted > 0 {
					logger.Info("marked interrupted runs",
						logging.String(logging.FieldEventType, "runs_interrupted"),
						logging.Int64("count", interrupted),
					)
				}
				deps.Recorder = store
				history = store
			}

			runner, err := pipeline.NewRunner(cfg, deps, logger)
			if err != nil {
				return err
			}
			server, err := httpapi.New(cfg, runner, history, logger)
			if err != nil {
				return err
			}
			if cfg.Server.Token == "" {
				logging.WarnWithContext(logger, "api authentication disabled", "api_auth_disabled",
					logging.String(logging.FieldErrorHint, "set server.token or REVOICE_API_TOKEN"),
					logging.String(logging.FieldImpact, "anyone who can reach the bind address can submit runs"),
				)
			}
			return server.ListenAndServe(signalCtx)
		},
	}

	cmd.Flags().StringVar(&bindFlag, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}
