/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sony-level/scenepack/internal/config"
	apperrors "github.com/sony-level/scenepack/internal/errors"
	"github.com/sony-level/scenepack/internal/prereq"
	"github.com/sony-level/scenepack/internal/scanner"
)

// checkCmd reports prerequisites without touching the workspace
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check tools, templates and inputs",
	Long: `Report whether the authoring tool, export script, templates and input
directories exist, and whether the enhancer and its model are available
for the configured enhancement mode. Nothing is modified.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return executeCheck()
	},
}

func init() {
	checkCmd.Flags().StringVarP(&enhanceMode, "enhance", "e", "", "Texture enhancement mode to check for: 0, 2, 4")
	rootCmd.AddCommand(checkCmd)
}

func executeCheck() error {
	settings, err := config.Load(config.Overrides{ConfigPath: configPath, EnhanceMode: enhanceMode})
	if err != nil {
		return err
	}
	cfg, err := settings.RunConfig(false)
	if err != nil {
		return err
	}

	if settings.Source != "" {
		fmt.Printf("Config: %s\n", settings.Source)
	}
	fmt.Printf("Enhancement: %s\n\n", cfg.Enhancement.Description)

	reqs := prereq.Requirements(cfg)
	checker := prereq.NewChecker()
	summary := checker.CheckMultiple(reqs)

	for _, r := range summary.Results {
		switch {
		case r.Found:
			fmt.Println(okStyle.Render("✓") + " " + r.Name + " " + dimStyle.Render(r.Path))
		case r.Optional:
			fmt.Println(warnStyle.Render("⚠ "+r.Name) + " " + dimStyle.Render(errString(r.Error)))
		default:
			fmt.Println(failStyle.Render("✗ "+r.Name) + " " + dimStyle.Render(errString(r.Error)))
		}
	}

	if inv, err := scanner.Scan(&scanner.ScanConfig{
		GeometryDir: cfg.Paths.InputGeometryDir,
		TextureDir:  cfg.Paths.InputTextureDir,
	}); err == nil {
		fmt.Printf("\nInputs: %d geometry files, %d buffers, %d textures (%d bytes)\n",
			inv.Count(scanner.KindGeometry), inv.Count(scanner.KindBuffer), inv.Count(scanner.KindTexture), inv.TotalSize())
	}

	if report := checker.FormatMissing(summary, reqs); report != "" {
		fmt.Print("\n" + report)
	}
	if !summary.AllFound {
		return apperrors.NewDependency(fmt.Sprintf("%d required prerequisites missing", len(summary.MissingTools)), nil)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
