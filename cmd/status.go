/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sony-level/scenepack/internal/pipeline"
)

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// printResult prints warnings and the final status line of a run
func printResult(res *pipeline.RunResult) {
	fmt.Println()
	for _, w := range res.Warnings {
		fmt.Println(warnStyle.Render("⚠ " + w))
	}

	if !res.Success {
		fmt.Println(failStyle.Render(fmt.Sprintf("✗ Failed at %s after %.2fs", res.FailureStage, res.ElapsedSeconds())) +
			" " + dimStyle.Render(res.FailureReason))
		return
	}

	line := okStyle.Render(fmt.Sprintf("✓ Done in %.2fs", res.ElapsedSeconds()))
	switch {
	case res.ArchiveErr != nil:
		line += " " + warnStyle.Render("archive incomplete")
	case res.SnapshotName != "":
		line += " " + dimStyle.Render("snapshot "+res.SnapshotName)
	}
	fmt.Println(line)
}

// printFailure prints the status line of a run aborted by a fatal error
func printFailure(res *pipeline.RunResult, err error) {
	fmt.Println()
	if res != nil && res.FailureStage != "" {
		fmt.Println(failStyle.Render(fmt.Sprintf("✗ Aborted at %s", res.FailureStage)) + " " + dimStyle.Render(err.Error()))
		return
	}
	fmt.Println(failStyle.Render("✗ Aborted") + " " + dimStyle.Render(err.Error()))
}
