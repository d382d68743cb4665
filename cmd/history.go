/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sony-level/scenepack/internal/config"
	"github.com/sony-level/scenepack/internal/history"
)

var historyLimit int

// historyCmd lists recorded runs
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return executeHistory(cmd.Context())
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func executeHistory(ctx context.Context) error {
	settings, err := config.Load(config.Overrides{ConfigPath: configPath})
	if err != nil {
		return err
	}
	idx, err := history.Open(settings.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer idx.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	runs, err := idx.ListRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "STARTED", "MAP", "STATUS", "ELAPSED", "SNAPSHOT", "WARNINGS")
	for _, r := range runs {
		status := okStyle.Render(r.Status())
		if !r.Success {
			status = failStyle.Render(r.Status())
		}
		t.Row(
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.MapName,
			status,
			fmt.Sprintf("%.1fs", r.Elapsed.Seconds()),
			r.SnapshotName,
			strconv.Itoa(r.Warnings),
		)
	}
	fmt.Println(t)
	return nil
}
