package controllers

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/orgmirror/internal/domain/commands"
	"github.com/rios0rios0/orgmirror/internal/domain/entities"
)

var _ entities.Controller = (*MirrorController)(nil)

// MirrorController handles the root command: one full mirror run.
type MirrorController struct {
	command   commands.Mirror
	lookupEnv entities.LookupEnv
}

// NewMirrorController creates a new MirrorController reading the process environment.
func NewMirrorController(command commands.Mirror) *MirrorController {
	return &MirrorController{command: command, lookupEnv: os.LookupEnv}
}

// GetBind returns the Cobra command metadata for the mirror controller.
func (it *MirrorController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "orgmirror",
		Short: "Mirror the public repositories of one organization into another",
		Long: `Fork every public repository of SRC_ORG into DST_ORG and keep the branches
and tags of existing forks in sync with their source.

Refs are force-updated, so the destination always follows the source.
A repository pushed to while it is being synced is synced again until
it stops moving.

Required environment:
  GITHUB_TOKEN  access token (or a path to a file holding it)
  SRC_ORG       organization to mirror from
  DST_ORG       organization to mirror into

Optional tuning is read from --config or from orgmirror.yaml found in
the current directory, .config, $HOME or $HOME/.config.`,
	}
}

// AddFlags adds the mirror-specific flags to the given Cobra command.
func (it *MirrorController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Path to a tuning file (default: auto-detect)")
	cmd.Flags().Bool("dry-run", false, "Show what would be done without forking or writing refs")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
	cmd.Flags().Int("max-passes", 0, "Give up on a repository still moving after this many passes (0: never)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file when the run ends")
}

// Execute loads the settings and runs the mirror. Any returned error is fatal.
func (it *MirrorController) Execute(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if configPath == "" {
		if found, err := entities.FindConfigFile(); err == nil {
			configPath = found
		}
	}
	if configPath != "" {
		logger.Infof("Using config file: %s", configPath)
	}

	settings, err := entities.NewSettings(configPath, it.lookupEnv)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("max-passes") {
		settings.MaxPasses, _ = cmd.Flags().GetInt("max-passes")
	}
	if cmd.Flags().Changed("metrics-file") {
		settings.MetricsFile, _ = cmd.Flags().GetString("metrics-file")
	}
	if validateErr := settings.Validate(); validateErr != nil {
		return validateErr
	}

	_, err = it.command.Execute(cmd.Context(), settings, commands.MirrorOptions{
		DryRun:  dryRun,
		Verbose: verbose,
	})
	return err
}
