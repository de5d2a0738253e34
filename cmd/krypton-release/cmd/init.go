package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gmw-project/vendor-krypton/internal/config"
)

var errSettingsExist = errors.New("settings file already exists, pass --force to overwrite")

var (
	// initConfigPath is where the starter settings file is written.
	initConfigPath string

	// initSettings carries the identity fields of the new settings file;
	// Save fills in every default the flags leave empty.
	initSettings config.Config

	// initForce allows overwriting an existing settings file.
	initForce bool

	// initCmd writes a starter settings file for the current tree.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a starter release settings file",
		Long: "Create the release settings file with the platform version, release branch, " +
			"and default device filled in and every other field at its default. " +
			"Edit the file afterwards to point at real mirrors and key directories.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !initForce {
				if _, err := os.Stat(initConfigPath); err == nil {
					return fmt.Errorf("%q: %w", initConfigPath, errSettingsExist)
				}
			}

			if err := config.Save(initConfigPath, &initSettings); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote release settings to %s\n", initConfigPath)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(initCmd)

	flags := initCmd.Flags()
	flags.StringVarP(&initConfigPath, "config", "C", config.DefaultConfigFilename,
		"path of the settings file to write")
	flags.StringVar(&initSettings.Version, "version", "",
		"Krypton platform version published in manifests")
	flags.StringVar(&initSettings.Branch, "branch", "",
		"release branch label used in download URLs")
	flags.StringVarP(&initSettings.Device, "device", "d", "",
		"default device codename")
	flags.BoolVar(&initForce, "force", false,
		"overwrite an existing settings file")

	//nolint:errcheck // Flags are registered right above.
	initCmd.MarkFlagRequired("version")
	//nolint:errcheck // Flags are registered right above.
	initCmd.MarkFlagRequired("branch")
}
