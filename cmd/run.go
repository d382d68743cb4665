/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sony-level/scenepack/internal/config"
	apperrors "github.com/sony-level/scenepack/internal/errors"
	"github.com/sony-level/scenepack/internal/exec"
	"github.com/sony-level/scenepack/internal/history"
	"github.com/sony-level/scenepack/internal/logging"
	"github.com/sony-level/scenepack/internal/pipeline"
	"github.com/sony-level/scenepack/internal/prereq"
	"github.com/sony-level/scenepack/internal/publish"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the packaging pipeline",
	Long: `Reset the workspace, enhance textures, export the scene with Blender,
sanitize the exported descriptor and optionally save a snapshot.

Prompts for the map name and for a permanent copy unless --yes is given.

Examples:
  scenepack run
  scenepack run --map harbor --save --bundle -y
  scenepack run --enhance 2 --verbose`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(cmd)
	},
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func executeRun(cmd *cobra.Command) error {
	cmd.SilenceUsage = true

	logger := logging.New(verbose)
	defer logger.Sync()

	settings, err := config.Load(config.Overrides{
		ConfigPath:  configPath,
		EnhanceMode: enhanceMode,
		Workers:     workers,
		Bundle:      bundleFlag,
	})
	if err != nil {
		return err
	}
	if settings.Source != "" {
		logger.Debug("config loaded", zap.String("file", settings.Source))
	}

	name := settings.MapName
	switch {
	case mapFlag != "":
		name = mapFlag
	case !yesFlag:
		if name, err = askMapName(settings.MapName); err != nil {
			return err
		}
	}
	if err := settings.SetMapName(name); err != nil {
		return err
	}

	save := saveFlag
	if !cmd.Flags().Changed("save") && !yesFlag {
		if save, err = askSave(); err != nil {
			return err
		}
	}

	cfg, err := settings.RunConfig(save)
	if err != nil {
		return err
	}

	fmt.Printf("Map: %s\n", cfg.MapName)
	fmt.Printf("Enhancement: %s\n", cfg.Enhancement.Description)
	if cfg.Snapshot.Save {
		fmt.Printf("Snapshot: %s\n", cfg.Paths.SavesDir)
	}

	deps := pipeline.DefaultDeps(cfg, exec.NewRunner(logger), logger)

	if settings.HistoryPath != "" {
		idx, err := history.Open(settings.HistoryPath)
		if err != nil {
			logger.Warn("history disabled", zap.Error(err))
		} else {
			defer idx.Close()
			deps.Recorder = idx
		}
	}
	if settings.Publish.Enabled() && cfg.Snapshot.Save && cfg.Snapshot.Bundle {
		pub, err := publish.NewS3Publisher(settings.Publish)
		if err != nil {
			logger.Warn("publishing disabled", zap.Error(err))
		} else {
			deps.Publisher = pub
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.New(deps, os.Stdout, logger).Run(ctx, cfg)
	if err != nil {
		printFailure(res, err)
		return err
	}
	printResult(res)

	switch {
	case res.Success:
		return nil
	case res.FailureStage == pipeline.StagePrerequisites && len(res.Missing) > 0:
		// missing dependencies are reported, not a crash
		checker := prereq.NewChecker()
		fmt.Print("\n" + checker.FormatMissing(checker.CheckPrerequisites(cfg), prereq.Requirements(cfg)))
		return nil
	default:
		return apperrors.NewStage(fmt.Sprintf("pipeline failed at %s", res.FailureStage), nil)
	}
}

func askMapName(def string) (string, error) {
	var name string
	prompt := &survey.Input{
		Message: "Map name:",
		Default: def,
		Help:    "Letters, digits, '-' and '_'. Used for the output files and the snapshot.",
	}
	err := survey.AskOne(prompt, &name, survey.WithValidator(func(ans interface{}) error {
		s, _ := ans.(string)
		if s == "" {
			return nil // default applies
		}
		return config.ValidateMapName(s)
	}))
	if err != nil {
		return "", promptErr(err)
	}
	if name == "" {
		name = def
	}
	return name, nil
}

func askSave() (bool, error) {
	save := false
	prompt := &survey.Confirm{
		Message: "Save a permanent copy of the result?",
		Default: false,
	}
	if err := survey.AskOne(prompt, &save); err != nil {
		return false, promptErr(err)
	}
	return save, nil
}

func promptErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return fmt.Errorf("aborted")
	}
	return err
}
