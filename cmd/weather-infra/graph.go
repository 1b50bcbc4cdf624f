package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mertsatargan/react-weather-cdk/internal/graph"
)

func newGraphCmd(a *app) *cobra.Command {
	var (
		outputFormat   string
		includeOutputs bool
		clusterByType  bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate a graph of resource dependencies",
		Long: `Generate a DOT or Mermaid format graph showing resource dependencies.

The output can be rendered with Graphviz:
    weather-infra graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    weather-infra graph -f mermaid

Examples:
    weather-infra graph -c                 # cluster by service
    weather-infra graph --outputs          # include stack outputs
    weather-infra graph --variant minimal`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var graphFormat graph.Format
			switch outputFormat {
			case "dot":
				graphFormat = graph.FormatDOT
			case "mermaid":
				graphFormat = graph.FormatMermaid
			default:
				return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", outputFormat)
			}

			_, tmpl, err := a.synthesize()
			if err != nil {
				return err
			}

			gen := &graph.Generator{
				Format:         graphFormat,
				IncludeOutputs: includeOutputs,
				ClusterByType:  clusterByType,
			}
			return gen.Generate(tmpl, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVar(&includeOutputs, "outputs", false, "Include stack output nodes")
	cmd.Flags().BoolVarP(&clusterByType, "cluster", "c", false, "Cluster resources by AWS service")

	return cmd
}
