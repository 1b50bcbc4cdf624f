package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/internal/template"
)

func newSynthCmd(a *app) *cobra.Command {
	var (
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate the CloudFormation template",
		Long: `Synth builds the weather app topology from the resolved configuration and
prints the CloudFormation template.

Examples:
    weather-infra synth
    weather-infra synth -o template.json
    weather-infra synth --variant minimal --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tmpl, err := a.synthesize()
			if err != nil {
				return err
			}
			return writeTemplate(cmd.OutOrStdout(), tmpl, outputFormat, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// writeTemplate renders tmpl to outputFile, or to w when no file is given.
func writeTemplate(w io.Writer, tmpl *reactweather.Template, format, outputFile string) error {
	data, err := template.Render(tmpl, format)
	if err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	if outputFile == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputFile, err)
	}
	return nil
}
