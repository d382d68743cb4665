/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sony-level/scenepack/internal/config"
	apperrors "github.com/sony-level/scenepack/internal/errors"
	"github.com/sony-level/scenepack/internal/logging"
	"github.com/sony-level/scenepack/internal/sanitize"
	"github.com/sony-level/scenepack/internal/workspace"
)

// cleanCmd re-sanitizes the workspace descriptor and every saved snapshot
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Strip default camera, light and cube from exported descriptors",
	Long: `Sanitize every .dae file in the workspace meshes directory and in the
meshes directory of every saved snapshot. Files without scaffold regions
are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return executeClean()
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func executeClean() error {
	logger := logging.New(verbose)
	defer logger.Sync()

	settings, err := config.Load(config.Overrides{ConfigPath: configPath})
	if err != nil {
		return err
	}
	s := sanitize.New(logger)

	fmt.Println("[1/2] Workspace")
	ws := workspace.Open(settings.Paths.OutputDir, settings.MapName)
	descriptors, err := ws.Descriptors()
	if err != nil {
		return err
	}
	if len(descriptors) == 0 {
		fmt.Printf("  → No descriptors in %s\n", ws.MeshesPath())
	}
	for _, path := range descriptors {
		changed, err := s.Sanitize(path)
		switch {
		case err != nil:
			fmt.Println(failStyle.Render("  ✗ "+filepath.Base(path)) + " " + dimStyle.Render(err.Error()))
		case changed:
			fmt.Printf("  → Cleaned %s\n", path)
		default:
			fmt.Printf("  → %s already clean\n", filepath.Base(path))
		}
	}

	fmt.Println("\n[2/2] Saves")
	summary, err := s.SanitizeSaves(settings.Paths.SavesDir)
	if err != nil {
		return err
	}
	for _, path := range summary.Changed {
		fmt.Printf("  → Cleaned %s\n", path)
	}
	failed := make([]string, 0, len(summary.Failed))
	for path := range summary.Failed {
		failed = append(failed, path)
	}
	sort.Strings(failed)
	for _, path := range failed {
		fmt.Println(failStyle.Render("  ✗ "+path) + " " + dimStyle.Render(summary.Failed[path].Error()))
	}
	fmt.Printf("  → %d descriptors checked, %d cleaned\n", summary.Scanned, len(summary.Changed))

	if len(failed) > 0 {
		return apperrors.NewIO(fmt.Sprintf("%d descriptors could not be sanitized", len(failed)), nil)
	}
	return nil
}
