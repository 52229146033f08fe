package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdressler/bimscope/version"
)

var rootCmd = &cobra.Command{
	Use:   "bimscope",
	Short: "Inspect and filter large building models",
	Long: `bimscope narrows large hierarchical building models to a single
level or room without re-parsing the whole model. It resolves visibility
through explicit containment relations, falling back to bounding-box
intersection when a model ships without relational data.`,
	Version: version.GetFullVersion(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
