package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkgbatch/pkg/kind"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List recognized archive kinds",
	Long: `List every archive kind the driver recognizes, the extension that
selects it, the extractor routine it dispatches to, and whether it is
part of the default set.

Examples:
  pkgbatch kinds`,
	Args: cobra.NoArgs,
	Run:  runKinds,
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}

func runKinds(cmd *cobra.Command, args []string) {
	fmt.Printf("%-6s %-6s %-14s %s\n", "KIND", "EXT", "ROUTINE", "DEFAULT")
	for _, k := range kind.All() {
		enabled := "enabled"
		if !k.DefaultEnabled() {
			enabled = "disabled"
		}
		fmt.Printf("%-6s %-6s %-14s %s\n", k.String(), k.Ext(), k.Routine(), enabled)
	}
}
