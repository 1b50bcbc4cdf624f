// Command weather-infra synthesizes and deploys the weather app's AWS stack.
//
// Usage:
//
//	weather-infra synth                  Print the CloudFormation template
//	weather-infra diff template.json     Compare a template with a fresh synth
//	weather-infra validate               Schema checks and topology audit
//	weather-infra deploy                 Create or update the stack
//	weather-infra destroy --yes          Delete the stack
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/internal/config"
	"github.com/mertsatargan/react-weather-cdk/internal/logging"
	"github.com/mertsatargan/react-weather-cdk/internal/stack"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		handleError(err)
		stop()
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand.
type app struct {
	configFile string
	logLevel   string
	flags      *pflag.FlagSet
	logger     *zap.Logger
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"variant":              "variant",
	"stackName":            "stack-name",
	"region":               "region",
	"registryUri":          "registry-uri",
	"imageTag":             "image-tag",
	"alertEmail":           "alert-email",
	"cpuThreshold":         "cpu-threshold",
	"memThreshold":         "mem-threshold",
	"desiredCount":         "desired-count",
	"minCapacity":          "min-capacity",
	"maxCapacity":          "max-capacity",
	"features.logging":     "logging",
	"features.alarms":      "alarms",
	"features.autoscaling": "autoscaling",
}

func newRootCmd() *cobra.Command {
	a := &app{logLevel: "warn"}

	cmd := &cobra.Command{
		Use:   "weather-infra",
		Short: "Synthesize and deploy the weather app infrastructure",
		Long: `weather-infra builds the weather app's AWS topology (VPC, ECS cluster,
load-balanced Fargate service, alarms and autoscaling) as a CloudFormation
template and hands it to CloudFormation.

Options come from presets (--variant full|minimal), a weather-infra.yaml
config file, WEATHER_* environment variables and flags, in increasing
precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(a.logLevel)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default: ./weather-infra.yaml or $XDG_CONFIG_HOME/weather-infra/)")
	pf.StringVar(&a.logLevel, "log-level", a.logLevel, "Log level (debug, info, warn, error)")
	pf.String("variant", "", "Preset: full or minimal")
	pf.String("stack-name", "", "CloudFormation stack name")
	pf.String("region", "", "AWS region")
	pf.String("registry-uri", "", "Container registry repository URI")
	pf.String("image-tag", "", "Container image tag")
	pf.String("alert-email", "", "Email address subscribed to alarm notifications")
	pf.Float64("cpu-threshold", 0, "CPU alarm threshold in percent")
	pf.Float64("mem-threshold", 0, "Memory alarm threshold in percent")
	pf.Int("desired-count", 0, "Desired task count")
	pf.Int("min-capacity", 0, "Autoscaling minimum task count")
	pf.Int("max-capacity", 0, "Autoscaling maximum task count")
	pf.Bool("logging", false, "Enable the log group")
	pf.Bool("alarms", false, "Enable the alert topic and alarms")
	pf.Bool("autoscaling", false, "Enable CPU target tracking")
	a.flags = pf

	cmd.AddCommand(
		newSynthCmd(a),
		newDiffCmd(a),
		newGraphCmd(a),
		newValidateCmd(a),
		newWatchCmd(a),
		newDeployCmd(a),
		newDestroyCmd(a),
		newVersionCmd(),
	)

	return cmd
}

// loadConfig resolves the configuration from presets, file, environment and
// explicitly set flags.
func (a *app) loadConfig() (config.Config, string, error) {
	v, err := a.reader()
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(v, a.configFile != "")
	if err != nil {
		return config.Config{}, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

// loadTarget resolves the stack name and region without checking the
// options that only synthesis uses.
func (a *app) loadTarget() (config.Config, error) {
	v, err := a.reader()
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Resolve(v, a.configFile != "")
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ValidateTarget(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config:\n%w", err)
	}
	return cfg, nil
}

// reader returns a config reader with the option flags bound.
func (a *app) reader() (*viper.Viper, error) {
	v := config.New(a.configFile)
	for key, name := range flagKeys {
		if f := a.flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}

// synthesize loads the configuration and builds the template.
func (a *app) synthesize() (config.Config, *reactweather.Template, error) {
	cfg, used, err := a.loadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	if used != "" {
		a.log().Debug("using config file", zap.String("path", used))
	}
	tmpl, err := stack.Template(cfg, a.log())
	if err != nil {
		return cfg, nil, err
	}
	return cfg, tmpl, nil
}

func (a *app) log() *zap.Logger {
	return logging.OrNop(a.logger)
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		message = "interrupted"
	case errors.Is(err, context.DeadlineExceeded):
		message = fmt.Sprintf("%s\nHint: increase --timeout; the stack may still be settling in CloudFormation.", err)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
