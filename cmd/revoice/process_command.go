package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"revoice/internal/config"
	"revoice/internal/pipeline"
	"revoice/internal/services"
)

type processOutput struct {
	pipeline.Result
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Re-voice a single video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			deps, closeServices, err := newServices(runCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeServices()

			if !ctx.jsonOutput() {
				deps.Display = newTerminalDisplay(cmd.OutOrStdout())
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				deps.Recorder = store
			}

			runner, err := pipeline.NewRunner(cfg, deps, logger)
			if err != nil {
				return err
			}

			source, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve video path: %w", err)
			}
			var output string
			if trimmed := strings.TrimSpace(outputFlag); trimmed != "" {
				if output, err = config.ExpandPath(trimmed); err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
			}

			result, runErr := runner.Run(runCtx, pipeline.Request{SourcePath: source, OutputPath: output})
			if ctx.jsonOutput() {
				payload := processOutput{Result: result}
				if runErr != nil {
					payload.Error = runErr.Error()
					payload.ErrorKind = services.Kind(runErr)
				}
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
				return runErr
			}
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed run %s in %s\n", result.RunID, result.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output video path (default <output_dir>/<name>_revoiced<ext>)")
	return cmd
}
