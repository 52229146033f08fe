package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdressler/bimscope/internal/session"
	"github.com/mdressler/bimscope/pkg/ifc"
	"github.com/mdressler/bimscope/pkg/ifc/memstore"
	"github.com/mdressler/bimscope/pkg/perf"
	"github.com/mdressler/bimscope/pkg/visibility"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a model",
	Long:  "Show entity counts, the generation budget the model would get, and its spatial structure.",
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func openModel(path string) ifc.Model {
	model, err := memstore.Store{}.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening model: %v\n", err)
		os.Exit(1)
	}
	return model
}

func runInfo(cmd *cobra.Command, args []string) {
	model := openModel(args[0])
	defer model.Close()

	if err := session.EnsureGeometry(context.Background(), model, session.GenerateConfig{
		MaxThreads: perf.ThreadBudget(model.InstanceCount()),
		Deflection: perf.DetailLevel(model.InstanceCount()),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating geometry: %v\n", err)
		os.Exit(1)
	}

	count := model.InstanceCount()
	deflection := perf.DetailLevel(count)
	resolver := visibility.NewResolver(model, visibility.DefaultPadding())

	fmt.Println("Model Information")
	fmt.Println("=================")
	fmt.Printf("File: %s\n\n", args[0])

	fmt.Println("Statistics:")
	fmt.Printf("  Instances: %d\n", count)
	fmt.Printf("  Products: %d\n", len(model.AllProductLabels()))
	fmt.Printf("  Storeys: %d\n", len(resolver.Storeys()))
	fmt.Printf("  Spaces: %d\n\n", len(model.EntitiesOfKind(ifc.KindSpace)))

	fmt.Println("Generation Budget:")
	fmt.Printf("  Threads: %d\n", perf.ThreadBudget(count))
	fmt.Printf("  Deflection: %.2f (%s detail)\n", deflection, perf.DescribeDetail(deflection))
}
