package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"revoice/internal/runlog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if runs == nil {
					runs = []runlog.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.SourceName,
					paint(colorize, colorForStatus(string(run.Status)), string(run.Status)),
					run.State,
					formatElapsed(run),
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Source", "Status", "State", "Elapsed", "Started"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
			if errors.Is(err, runlog.ErrNotFound) {
				return fmt.Errorf("run %s not found", args[0])
			}
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, run)
			}

			out := cmd.OutOrStdout()
			rows := [][2]string{
				{"ID", run.ID},
				{"Source", run.SourceName},
				{"Status", paint(shouldColorize(out), colorForStatus(string(run.Status)), string(run.Status))},
				{"State", run.State},
				{"Started", run.CreatedAt.Local().Format(time.RFC3339)},
				{"Elapsed", formatElapsed(*run)},
			}
			if run.AudioChannels > 0 {
				rows = append(rows, [2]string{"Channels", fmt.Sprintf("%d", run.AudioChannels)})
			}
			if run.VideoSeconds > 0 {
				rows = append(rows, [2]string{"Duration", (time.Duration(run.VideoSeconds * float64(time.Second))).Round(time.Millisecond).String()})
			}
			if run.OutputPath != "" {
				rows = append(rows, [2]string{"Output", run.OutputPath})
			}
			if run.ErrorMessage != "" {
				rows = append(rows, [2]string{"Error", fmt.Sprintf("%s (%s)", run.ErrorMessage, run.ErrorKind)})
			}
			if run.Transcript != "" {
				rows = append(rows, [2]string{"Transcript", run.Transcript})
			}
			if run.Corrected != "" {
				rows = append(rows, [2]string{"Corrected", run.Corrected})
			}
			fmt.Fprintln(out, renderDetails(rows))
			return nil
		},
	}
}

func requireHistory(ctx *commandContext) (*runlog.Store, error) {
	store, err := ctx.openHistory()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("run history is disabled (set history.enabled = true)")
	}
	return store, nil
}

func formatElapsed(run runlog.Run) string {
	if !run.Status.IsTerminal() {
		return "-"
	}
	return run.Elapsed().Round(time.Second).String()
}
