package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkgbatch/pkg/batch"
)

var rootCmd = &cobra.Command{
	Use:   "pkgbatch",
	Short: "Batch extraction driver for game resource archives",
	Long: `pkgbatch walks a directory tree, identifies resource archives by
extension, and drives an external extractor over each one, mirroring the
results into an output tree.

Recognized archive kinds:
  - pkg (.pkg): resource packages
  - ppf (.ppf): texture/script/mesh containers
  - apf (.apf): animation containers (disabled by default)`,
	SilenceErrors: true,
}

// Execute runs the root command, mapping the result to exit codes:
// 0 for a clean batch, 2 when the batch finished but one or more jobs
// failed, 1 for anything fatal.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, batch.ErrJobsFailed) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
