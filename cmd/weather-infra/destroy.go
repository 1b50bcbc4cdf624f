package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func newDestroyCmd(a *app) *cobra.Command {
	var (
		yes     bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the stack from CloudFormation",
		Long: `Destroy deletes the CloudFormation stack and waits for deletion.

The log group is deleted with the stack; retained resources are left behind.

Examples:
    weather-infra destroy --yes
    weather-infra destroy --stack-name WeatherDev --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadTarget()
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to destroy stack %s without --yes", cfg.StackName)
			}

			ctx := cmd.Context()
			client, err := newDeployer(ctx, cfg.Region, timeout, a.log())
			if err != nil {
				return err
			}
			return runDestroy(ctx, client, cfg.StackName, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Maximum time to wait for deletion")

	return cmd
}

func runDestroy(ctx context.Context, client deployer, stackName string, out io.Writer) error {
	status, err := client.Status(ctx, stackName)
	if err != nil {
		return err
	}
	if !status.Exists {
		fmt.Fprintf(out, "%s: does not exist\n", stackName)
		return nil
	}

	fmt.Fprintf(out, "Deleting %s (%s)\n", stackName, status.Status)
	if err := client.Destroy(ctx, stackName); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: deleted\n", stackName)
	return nil
}
