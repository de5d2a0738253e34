package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gmw-project/vendor-krypton/internal/config"
	"github.com/gmw-project/vendor-krypton/internal/logger"
	"github.com/gmw-project/vendor-krypton/internal/service/release"
	"github.com/gmw-project/vendor-krypton/internal/version"
)

var (
	// logLevel selects the minimum log level for every subcommand.
	logLevel string

	// options collects the root command flags handed to the release service.
	options release.Options

	// rootCmd represents the base command: one full release run, invoked
	// from the root of the ROM source tree.
	rootCmd = &cobra.Command{
		Use:   "krypton-release",
		Short: "Build, sign, and publish Krypton OTA packages",
		Long: "Plan and drive an Android platform build for the Krypton ROM: " +
			"decide between a full and an incremental OTA against the target-files history, " +
			"invoke the build system target by target, optionally re-sign the artifacts " +
			"with release keys, rotate the target-files archive into history, " +
			"and emit the JSON release manifests update clients consume.",
		Args: cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return release.Run(ctx, &options)
		},
	}
)

// Execute runs the krypton-release CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"minimum log level (debug, info, warn, error, fatal)")

	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "C", config.DefaultConfigFilename,
		"path to the release settings file")
	flags.StringVarP(&options.Device, "device", "d", "",
		"device codename (falls back to settings, then $KOSP_BUILD)")
	flags.StringVarP(&options.Variant, "variant", "v", "userdebug",
		"build variant: user, userdebug, or eng")
	flags.StringVarP(&options.OutputDir, "out", "o", "",
		"product output directory (default out/target/product/<device>)")
	flags.StringVarP(&options.HistoryDir, "target-files-dir", "t", "",
		"directory of prior target-files archives; supplying it enables incremental builds")
	flags.BoolVarP(&options.BuildBoth, "build-both", "n", false,
		"build the full package alongside the incremental one")
	flags.BoolVarP(&options.Sign, "sign", "s", false,
		"re-sign each built target with the release keys")
	flags.BoolVarP(&options.JSON, "json", "j", false,
		"generate release manifests after the build")
	flags.BoolVarP(&options.Fastboot, "fastboot", "f", false,
		"additionally build the fastboot package")
	flags.BoolVarP(&options.BootImage, "boot-image", "b", false,
		"additionally build the standalone boot image")
	flags.BoolVarP(&options.Clean, "clean", "c", false,
		"run installclean before the first target")
	flags.BoolVarP(&options.WipeHistory, "wipe-history", "w", false,
		"empty the target-files history before rotating into it")
	flags.BoolVarP(&options.GApps, "gapps", "g", false,
		"build the bundled-apps flavor")
}
