package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/mdressler/bimscope/pkg/visibility"
)

var levelsCmd = &cobra.Command{
	Use:   "levels [file]",
	Short: "List the model's levels and their rooms",
	Long:  "Show every storey sorted by elevation, with the rooms resolved for each.",
	Args:  cobra.ExactArgs(1),
	Run:   runLevels,
}

func init() {
	rootCmd.AddCommand(levelsCmd)
}

func runLevels(cmd *cobra.Command, args []string) {
	model := openModel(args[0])
	defer model.Close()

	resolver := visibility.NewResolver(model, visibility.DefaultPadding())
	storeys := resolver.Storeys()
	if len(storeys) == 0 {
		fmt.Println("No storeys in model")
		return
	}

	for _, storey := range storeys {
		elevation := storey.ElevationValue()
		if math.IsInf(elevation, -1) {
			fmt.Printf("%s (no elevation)\n", storey.DisplayName())
		} else {
			fmt.Printf("%s (elevation %.2f)\n", storey.DisplayName(), elevation)
		}

		result := resolver.ResolveForStorey(storey)
		fmt.Printf("  %d visible elements\n", result.Visible.Len())
		for _, space := range result.Spaces {
			fmt.Printf("  - %s\n", space.DisplayName())
		}
	}
}
