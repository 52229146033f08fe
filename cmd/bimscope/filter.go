package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mdressler/bimscope/pkg/geometry"
	"github.com/mdressler/bimscope/pkg/ifc"
	"github.com/mdressler/bimscope/pkg/visibility"
)

var (
	filterLevel string
	filterRoom  string
)

var filterCmd = &cobra.Command{
	Use:   "filter [file]",
	Short: "Resolve the visible set for a level or room",
	Long: `Compute which entities stay visible when the model is narrowed to a
level (--level) or a room (--room), and the hide-list handed to the viewer.`,
	Args: cobra.ExactArgs(1),
	Run:  runFilter,
}

func init() {
	filterCmd.Flags().StringVar(&filterLevel, "level", "", "level name to filter to")
	filterCmd.Flags().StringVar(&filterRoom, "room", "", "room name to filter to")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) {
	if (filterLevel == "") == (filterRoom == "") {
		fmt.Fprintln(os.Stderr, "Error: specify exactly one of --level or --room")
		os.Exit(1)
	}

	model := openModel(args[0])
	defer model.Close()

	resolver := visibility.NewResolver(model, visibility.DefaultPadding())

	var (
		visible   visibility.Set
		container ifc.Entity
	)
	if filterLevel != "" {
		storey, ok := resolver.FindStorey(filterLevel)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: level %q not found\n", filterLevel)
			os.Exit(1)
		}
		container = storey
		visible = resolver.ResolveForStorey(storey).Visible
	} else {
		space, ok := resolver.FindSpace(filterRoom)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: room %q not found\n", filterRoom)
			os.Exit(1)
		}
		container = space
		visible = resolver.ResolveForSpace(space)
	}

	all := model.AllProductLabels()
	hidden := visibility.ComputeHiddenSet(all, visible)

	fmt.Printf("Filter: %s\n", container.DisplayName())
	fmt.Printf("Visible: %d of %d products\n", len(all)-hidden.Len(), len(all))
	fmt.Printf("Hidden labels: %v\n", sortedLabels(hidden))

	if frame := resolver.FrameBounds(container); frame != nil {
		fmt.Printf("Framing box: min %s, max %s\n", formatVector(frame.Min()), formatVector(frame.Max()))
		fmt.Printf("  Center: %s\n", formatVector(frame.Center()))
		fmt.Printf("  Diagonal: %.2f units\n", frame.Diagonal())
	} else {
		fmt.Println("Framing box: none (container has no geometry)")
	}
}

func sortedLabels(s visibility.Set) []ifc.Label {
	labels := s.Labels()
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

func formatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}
