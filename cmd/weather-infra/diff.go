package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mertsatargan/react-weather-cdk/internal/differ"
)

func newDiffCmd(a *app) *cobra.Command {
	var (
		unified      bool
		ignoreOrder  bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "diff <template>",
		Short: "Compare a template file with a fresh synth",
		Long: `Diff compares a previously synthesized or deployed template (JSON or YAML)
with the template the current configuration produces.

Examples:
    weather-infra diff cdk.out/template.json
    weather-infra diff deployed.yaml --unified
    weather-infra diff deployed.json --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat != "text" && outputFormat != "json" {
				return fmt.Errorf("unknown format: %s (use 'text' or 'json')", outputFormat)
			}
			previous, err := differ.LoadTemplate(args[0])
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}
			_, desired, err := a.synthesize()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if unified {
				text, err := differ.Unified(previous, desired, args[0], "synthesized")
				if err != nil {
					return err
				}
				_, err = io.WriteString(out, text)
				return err
			}

			result, err := differ.Compare(previous, desired, differ.Options{IgnoreOrder: ignoreOrder})
			if err != nil {
				return err
			}
			if outputFormat == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Diff    any `json:"diff"`
					Summary any `json:"summary"`
				}{result.Diff, result.Summary})
			}
			printDiff(out, result)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&unified, "unified", "u", false, "Print a unified text diff of the rendered JSON")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore list element order")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func printDiff(w io.Writer, result *differ.Result) {
	if result.Empty() {
		fmt.Fprintln(w, "No differences")
		return
	}

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	modified := color.New(color.FgYellow)

	for _, e := range result.Diff.Added {
		added.Fprintf(w, "[+] %s %s\n", e.Type, e.Resource)
	}
	for _, e := range result.Diff.Removed {
		removed.Fprintf(w, "[-] %s %s\n", e.Type, e.Resource)
	}
	for _, e := range result.Diff.Modified {
		modified.Fprintf(w, "[~] %s %s\n", e.Type, e.Resource)
		for _, c := range e.Changes {
			fmt.Fprintf(w, "    %s\n", c)
		}
	}
	if len(result.Diff.Outputs) > 0 {
		fmt.Fprintln(w, "Outputs:")
		for _, o := range result.Diff.Outputs {
			fmt.Fprintf(w, "    %s\n", o)
		}
	}

	s := result.Summary
	fmt.Fprintf(w, "\n%d added, %d removed, %d modified\n", s.Added, s.Removed, s.Modified)
}
