package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/internal/deploy"
	"github.com/mertsatargan/react-weather-cdk/internal/lint"
)

// deployer is the provisioning client used by deploy and destroy.
type deployer interface {
	Deploy(ctx context.Context, stackName string, t *reactweather.Template) (*deploy.Result, error)
	Destroy(ctx context.Context, stackName string) error
	Status(ctx context.Context, stackName string) (*deploy.StackStatus, error)
	CallerIdentity(ctx context.Context) (*deploy.Identity, error)
}

// newDeployer is replaced in tests.
var newDeployer = func(ctx context.Context, region string, timeout time.Duration, logger *zap.Logger) (deployer, error) {
	client, err := deploy.New(ctx, region, logger)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		client.Timeout = timeout
	}
	client.Tags = map[string]string{"app": "weather"}
	return client, nil
}

func newDeployCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create or update the stack in CloudFormation",
		Long: `Deploy synthesizes the template, checks it with the audit rules and
creates or updates the CloudFormation stack, waiting for completion.

Examples:
    weather-infra deploy --alert-email ops@example.com
    weather-infra deploy --variant minimal --stack-name WeatherDev`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, tmpl, err := a.synthesize()
			if err != nil {
				return err
			}
			if audit := lint.Lint(tmpl, lint.Options{}); !audit.Success {
				for _, issue := range audit.Issues {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s [%s]\n", issue.Resource, issue.Message, issue.Rule)
				}
				return fmt.Errorf("refusing to deploy: audit found errors")
			}

			ctx := cmd.Context()
			client, err := newDeployer(ctx, cfg.Region, timeout, a.log())
			if err != nil {
				return err
			}
			return runDeploy(ctx, client, cfg.StackName, tmpl, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Maximum time to wait for the stack to settle")

	return cmd
}

func runDeploy(ctx context.Context, client deployer, stackName string, tmpl *reactweather.Template, out io.Writer) error {
	identity, err := client.CallerIdentity(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deploying %s as %s (account %s)\n", stackName, identity.ARN, identity.Account)

	result, err := client.Deploy(ctx, stackName, tmpl)
	if err != nil {
		return err
	}

	switch {
	case result.NoChanges:
		fmt.Fprintf(out, "%s: no changes\n", stackName)
	case result.Created:
		color.New(color.FgGreen).Fprintf(out, "%s: created (%s)\n", stackName, result.Status)
	default:
		color.New(color.FgGreen).Fprintf(out, "%s: updated (%s)\n", stackName, result.Status)
	}
	printOutputs(out, result.Outputs)
	return nil
}

func printOutputs(out io.Writer, outputs map[string]string) {
	if len(outputs) == 0 {
		return
	}
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(out, "\nOutputs:")
	for _, k := range keys {
		fmt.Fprintf(out, "  %s = %s\n", k, outputs[k])
	}
}
