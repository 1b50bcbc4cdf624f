package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/internal/differ"
	"github.com/mertsatargan/react-weather-cdk/internal/lint"
	"github.com/mertsatargan/react-weather-cdk/internal/schema"
	"github.com/mertsatargan/react-weather-cdk/internal/validation"
)

var errValidationFailed = errors.New("validation failed")

type validateOptions struct {
	outputFormat  string
	templateFile  string
	strict        bool
	cfnLint       bool
	disabledRules []string
}

// newValidateCmd creates the "validate" subcommand.
func newValidateCmd(a *app) *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the synthesized template",
		Long: `Validate synthesizes the template (or loads --template) and checks it.

Checks performed:
  - Schema: required properties, allowed values and bounds per resource type
  - Audit rules RW001-RW006: wildcard IAM scope, silent alarms, log retention,
    public load balancers, low alarm thresholds, single-zone subnets
  - cfn-lint (with --cfn-lint)

Warnings and info findings do not fail validation.

Examples:
    weather-infra validate
    weather-infra validate --cfn-lint --strict
    weather-infra validate --template deployed.json --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tmpl *reactweather.Template
			var err error
			if opts.templateFile != "" {
				tmpl, err = differ.LoadTemplate(opts.templateFile)
			} else {
				_, tmpl, err = a.synthesize()
			}
			if err != nil {
				return err
			}

			result, err := runValidate(tmpl, opts)
			if err != nil {
				return err
			}
			if err := outputValidateResult(cmd.OutOrStdout(), result, opts.outputFormat); err != nil {
				return err
			}
			if !result.Success {
				return errValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&opts.templateFile, "template", "t", "", "Validate this template file instead of synthesizing")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Warn on properties unknown to the schema")
	cmd.Flags().BoolVar(&opts.cfnLint, "cfn-lint", false, "Also run cfn-lint")
	cmd.Flags().StringSliceVar(&opts.disabledRules, "disable", nil, "Audit rules to skip (e.g. RW004,RW005)")

	return cmd
}

func runValidate(tmpl *reactweather.Template, opts validateOptions) (reactweather.ValidateResult, error) {
	result := reactweather.ValidateResult{Resources: len(tmpl.Resources)}

	schemaResult := schema.ValidateTemplate(tmpl, schema.Options{Strict: opts.strict})
	for _, e := range schemaResult.Errors {
		result.Errors = append(result.Errors, e.Error())
	}
	for _, w := range schemaResult.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	lintResult := lint.Lint(tmpl, lint.Options{DisabledRules: opts.disabledRules})
	result.Issues = lintResult.Issues

	if opts.cfnLint {
		cfn, err := validation.LintTemplate(tmpl)
		if err != nil {
			return result, fmt.Errorf("cfn-lint: %w", err)
		}
		result.Errors = append(result.Errors, cfn.Errors...)
		result.Warnings = append(result.Warnings, cfn.Warnings...)
		result.Warnings = append(result.Warnings, cfn.Informational...)
	}

	result.Success = len(result.Errors) == 0 && lintResult.Success
	return result, nil
}

func outputValidateResult(w io.Writer, result reactweather.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		errLabel := color.New(color.FgRed, color.Bold).Sprint("ERROR")
		warnLabel := color.New(color.FgYellow).Sprint("WARNING")
		infoLabel := color.New(color.FgCyan).Sprint("INFO")

		for _, msg := range result.Errors {
			fmt.Fprintf(w, "  %s: %s\n", errLabel, msg)
		}
		for _, msg := range result.Warnings {
			fmt.Fprintf(w, "  %s: %s\n", warnLabel, msg)
		}
		for _, issue := range result.Issues {
			label := infoLabel
			switch issue.Severity {
			case string(lint.SeverityError):
				label = errLabel
			case string(lint.SeverityWarning):
				label = warnLabel
			}
			fmt.Fprintf(w, "  %s [%s] %s: %s\n", label, issue.Rule, issue.Resource, issue.Message)
		}

		if result.Success {
			color.New(color.FgGreen).Fprintf(w, "Validation passed: %d resources OK\n", result.Resources)
		} else {
			color.New(color.FgRed).Fprintf(w, "Validation FAILED: %d resources checked\n", result.Resources)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
