package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"revoice/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that ffmpeg, ffprobe and the configured encoders are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := deps.CheckBinaries(deps.MediaRequirements(cfg))
			ffmpegReady := len(results) > 0 && results[0].Available
			if ffmpegReady {
				results = append(results, deps.CheckEncoders(cmd.Context(), results[0].Command, cfg.Media.VideoCodec, cfg.Media.AudioCodec)...)
			}

			missing := 0
			for _, status := range results {
				if !status.Available && !status.Optional {
					missing++
				}
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(results))
				for _, status := range results {
					state := paint(colorize, ansiGreen, "ok")
					if !status.Available {
						state = paint(colorize, ansiRed, "missing")
					}
					rows = append(rows, []string{status.Name, status.Command, state, status.Detail})
				}
				fmt.Fprintln(out, renderTable([]string{"Dependency", "Command", "Status", "Detail"}, rows, nil))
			}
			if missing > 0 {
				return errors.New(pluralize(missing, "dependency", "dependencies") + " unavailable")
			}
			return nil
		},
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
