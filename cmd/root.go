/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/sony-level/scenepack/internal/errors"
)

var (
	// Global flags
	configPath string
	verbose    bool
	yesFlag    bool

	// Run flags
	mapFlag     string
	saveFlag    bool
	enhanceMode string
	workers     int
	bundleFlag  bool
)

// rootCmd represents the base command - runs the pipeline directly without subcommand
var rootCmd = &cobra.Command{
	Use:   "scenepack",
	Short: "Package a 3D scene into an engine-ready model",
	Long: `scenepack converts a directory of glTF scene files and PNG textures into
a packaged, engine-ready model.

It resets the output workspace, optionally upscales the textures with a
super-resolution model, runs Blender headless to import and export the
scene, strips the default camera, light and cube from the exported Collada
file and can keep a permanent, never-overwritten copy of the result.

Examples:
  scenepack
  scenepack --map harbor --save -y
  scenepack --enhance 4 --workers 2
  scenepack check
  scenepack clean`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// The exit code follows the error kind: 2 config, 3 dependency, 4 stage,
// 5 io, 6 archive, 1 anything else.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(apperrors.ExitCode(err))
	}
}

func init() {
	// Persistent flags - available to all subcommands
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: .scenepack.yaml, then ~/.config/scenepack/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Do not prompt; use flags and configured values")

	addRunFlags(rootCmd)
}

// addRunFlags registers the pipeline flags on the root and run commands
func addRunFlags(c *cobra.Command) {
	c.Flags().StringVarP(&mapFlag, "map", "m", "", "Map name (letters, digits, '-' and '_')")
	c.Flags().BoolVarP(&saveFlag, "save", "s", false, "Keep a permanent copy in the saves directory")
	c.Flags().StringVarP(&enhanceMode, "enhance", "e", "", "Texture enhancement mode: 0 (off), 2 (x2), 4 (x4)")
	c.Flags().IntVarP(&workers, "workers", "w", 0, "Textures enhanced in parallel (default: 1)")
	c.Flags().BoolVar(&bundleFlag, "bundle", false, "Also write <saves>/<name>.tar.zst for the snapshot")
}
