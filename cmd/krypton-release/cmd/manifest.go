package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gmw-project/vendor-krypton/internal/config"
	"github.com/gmw-project/vendor-krypton/internal/service/release"
)

var (
	// manifestOptions collects the manifest subcommand flags.
	manifestOptions release.ManifestOptions

	// manifestCmd regenerates release manifests for packages already built,
	// without touching the build system.
	manifestCmd = &cobra.Command{
		Use:   "manifest",
		Short: "Generate release manifests for already-built packages",
		Long: "Scan an output directory for the newest full and incremental OTA packages " +
			"and write the JSON release manifests describing them. " +
			"Use this to re-publish a release whose manifests were lost or wrong.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return release.RunManifest(ctx, &manifestOptions)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(manifestCmd)

	flags := manifestCmd.Flags()
	flags.StringVarP(&manifestOptions.ConfigPath, "config", "C", config.DefaultConfigFilename,
		"path to the release settings file")
	flags.StringVarP(&manifestOptions.Device, "device", "d", "",
		"device codename (falls back to settings, then $KOSP_BUILD)")
	flags.StringVarP(&manifestOptions.OutputDir, "out", "o", "",
		"directory scanned for release packages (default out/target/product/<device>)")
	flags.BoolVarP(&manifestOptions.Incremental, "incremental", "i", false,
		"describe the incremental package")
	flags.BoolVarP(&manifestOptions.Both, "both", "n", false,
		"describe the full package as well (requires --incremental)")
	flags.Int64Var(&manifestOptions.BuildDateUTC, "date", 0,
		"build date override, seconds since epoch")
}
