package release

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

// printSummary tells the operator what the run produced and where.
func (r *runner) printSummary(elapsed time.Duration) {
	fmt.Printf("\n%s Finished %s for %s in %s\n",
		green("✓"),
		yellow(strings.Join(r.plan.Targets, ", ")),
		yellow(r.device+"-"+r.variant),
		yellow(elapsed.Round(time.Second)))

	if r.plan.Incremental() {
		fmt.Printf("%s Incremental base: %s\n", cyan("•"), yellow(r.plan.PriorTargetFiles))
	}

	if r.signedPackage != "" {
		fmt.Printf("%s Signed package: %s%s\n", cyan("•"), yellow(r.signedPackage), sizeOf(r.signedPackage))
	}

	if r.rotated != "" {
		fmt.Printf("%s History entry: %s%s\n", cyan("•"), yellow(r.rotated), sizeOf(r.rotated))
	}

	if r.manifests != nil {
		if r.manifests.IncrementalPath != "" {
			fmt.Printf("%s Incremental manifest: %s\n", cyan("•"), yellow(r.manifests.IncrementalPath))
		}

		if r.manifests.FullPath != "" {
			fmt.Printf("%s Full manifest: %s\n", cyan("•"), yellow(r.manifests.FullPath))
		}
	}
}

// sizeOf renders a human-readable file size, or nothing when the file cannot
// be read.
func sizeOf(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return " (" + humanize.Bytes(uint64(info.Size())) + ")"
}
