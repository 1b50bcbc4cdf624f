// Package config loads and validates the options of the weather app stack.
//
// Options come from, in increasing precedence: the preset selected by
// "variant", a config file, WEATHER_* environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mertsatargan/react-weather-cdk/resources/logs"
)

// Variants of the stack topology.
const (
	VariantFull    = "full"
	VariantMinimal = "minimal"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "WEATHER"

// Features toggles the optional parts of the topology.
type Features struct {
	Logging               bool `mapstructure:"logging" json:"logging"`
	Alarms                bool `mapstructure:"alarms" json:"alarms"`
	Autoscaling           bool `mapstructure:"autoscaling" json:"autoscaling"`
	ManagedRegistryPolicy bool `mapstructure:"managedRegistryPolicy" json:"managedRegistryPolicy"`
}

// Config holds every recognized option of the stack.
type Config struct {
	StackName   string `mapstructure:"stackName" json:"stackName"`
	Description string `mapstructure:"description" json:"description"`
	Region      string `mapstructure:"region" json:"region"`
	Variant     string `mapstructure:"variant" json:"variant"`

	RegistryURI string `mapstructure:"registryUri" json:"registryUri"`
	ImageTag    string `mapstructure:"imageTag" json:"imageTag"`

	MaxAZs      int    `mapstructure:"maxAzs" json:"maxAzs"`
	NatGateways int    `mapstructure:"natGateways" json:"natGateways"`
	VPCCidr     string `mapstructure:"vpcCidr" json:"vpcCidr"`

	CPU                int    `mapstructure:"cpu" json:"cpu"`
	MemoryMiB          int    `mapstructure:"memoryMiB" json:"memoryMiB"`
	DesiredCount       int    `mapstructure:"desiredCount" json:"desiredCount"`
	ContainerPort      int    `mapstructure:"containerPort" json:"containerPort"`
	ClusterName        string `mapstructure:"clusterName" json:"clusterName"`
	PublicLoadBalancer bool   `mapstructure:"publicLoadBalancer" json:"publicLoadBalancer"`

	LogGroupName     string `mapstructure:"logGroupName" json:"logGroupName"`
	LogRetentionDays int    `mapstructure:"logRetentionDays" json:"logRetentionDays"`
	LogStreamPrefix  string `mapstructure:"logStreamPrefix" json:"logStreamPrefix"`

	AlertEmail       string  `mapstructure:"alertEmail" json:"alertEmail"`
	TopicDisplayName string  `mapstructure:"topicDisplayName" json:"topicDisplayName"`
	CPUThreshold     float64 `mapstructure:"cpuThreshold" json:"cpuThreshold"`
	MemThreshold     float64 `mapstructure:"memThreshold" json:"memThreshold"`

	MinCapacity          int           `mapstructure:"minCapacity" json:"minCapacity"`
	MaxCapacity          int           `mapstructure:"maxCapacity" json:"maxCapacity"`
	TargetCPUUtilization float64       `mapstructure:"targetCpuUtilization" json:"targetCpuUtilization"`
	ScaleInCooldown      time.Duration `mapstructure:"scaleInCooldown" json:"scaleInCooldown"`
	ScaleOutCooldown     time.Duration `mapstructure:"scaleOutCooldown" json:"scaleOutCooldown"`

	Features Features `mapstructure:"features" json:"features"`
}

// Full is the complete topology: log sink, managed registry policy,
// notifications with CPU and memory alarms, and CPU target tracking.
func Full() Config {
	return Config{
		StackName:            "InfraStack",
		Description:          "Weather app: VPC, ECS cluster and load-balanced Fargate service",
		Region:               "us-east-1",
		Variant:              VariantFull,
		RegistryURI:          "420053132520.dkr.ecr.us-east-1.amazonaws.com/react-weather-cdk",
		ImageTag:             "latest",
		MaxAZs:               2,
		NatGateways:          2,
		VPCCidr:              "10.0.0.0/16",
		CPU:                  256,
		MemoryMiB:            512,
		DesiredCount:         1,
		ContainerPort:        80,
		PublicLoadBalancer:   true,
		LogGroupName:         "ecs/weather-app",
		LogRetentionDays:     1,
		LogStreamPrefix:      "weather",
		TopicDisplayName:     "Weather App Alerts",
		CPUThreshold:         1,
		MemThreshold:         70,
		MinCapacity:          1,
		MaxCapacity:          3,
		TargetCPUUtilization: 70,
		ScaleInCooldown:      2 * time.Minute,
		ScaleOutCooldown:     time.Minute,
		Features: Features{
			Logging:               true,
			Alarms:                true,
			Autoscaling:           true,
			ManagedRegistryPolicy: true,
		},
	}
}

// Minimal is the bare topology: network, cluster, service and an execution
// role relying on the inline registry grant only.
func Minimal() Config {
	cfg := Full()
	cfg.Variant = VariantMinimal
	cfg.Features = Features{}
	return cfg
}

// Preset returns the configuration for a named variant.
func Preset(variant string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(variant)) {
	case VariantFull, "":
		return Full(), nil
	case VariantMinimal:
		return Minimal(), nil
	default:
		return Config{}, fmt.Errorf("unknown variant %q (expected %s or %s)", variant, VariantFull, VariantMinimal)
	}
}

// Image returns the container image reference. A registry URI that already
// pins a tag or digest is used unchanged.
func (c Config) Image() string {
	last := c.RegistryURI
	if i := strings.LastIndex(last, "/"); i >= 0 {
		last = last[i+1:]
	}
	if strings.Contains(last, "@") || strings.Contains(last, ":") || c.ImageTag == "" {
		return c.RegistryURI
	}
	return c.RegistryURI + ":" + c.ImageTag
}

var (
	stackNamePattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]{0,127}$`)
	clusterNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)
)

// fargateMemory lists the memory sizes (MiB) Fargate accepts per CPU size.
var fargateMemory = map[int][]int{
	256:  {512, 1024, 2048},
	512:  steps(1024, 4096, 1024),
	1024: steps(2048, 8192, 1024),
	2048: steps(4096, 16384, 1024),
	4096: steps(8192, 30720, 1024),
	8192: steps(16384, 61440, 4096),
}

func steps(from, to, step int) []int {
	var out []int
	for v := from; v <= to; v += step {
		out = append(out, v)
	}
	return out
}

// ValidateTarget checks the options that locate the deployed stack. It is
// all that teardown needs.
func (c Config) ValidateTarget() error {
	var errs []error
	if !stackNamePattern.MatchString(c.StackName) {
		errs = append(errs, fmt.Errorf("stackName %q must start with a letter and contain only letters, digits and hyphens (max 128)", c.StackName))
	}
	if strings.TrimSpace(c.Region) == "" {
		errs = append(errs, errors.New("region is required"))
	}
	return errors.Join(errs...)
}

// Validate checks every invariant and reports all violations at once.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if err := c.ValidateTarget(); err != nil {
		errs = append(errs, err)
	}
	if c.ClusterName != "" && !clusterNamePattern.MatchString(c.ClusterName) {
		fail("clusterName %q may contain only letters, digits, hyphens and underscores (max 255)", c.ClusterName)
	}
	if c.Variant != VariantFull && c.Variant != VariantMinimal {
		fail("variant %q must be %s or %s", c.Variant, VariantFull, VariantMinimal)
	}
	if strings.TrimSpace(c.RegistryURI) == "" {
		fail("registryUri is required")
	}

	if c.MaxAZs < 2 {
		fail("maxAzs must be at least 2 for availability, got %d", c.MaxAZs)
	}
	if c.NatGateways < 1 || c.NatGateways > c.MaxAZs {
		fail("natGateways must be between 1 and maxAzs (%d), got %d", c.MaxAZs, c.NatGateways)
	}
	if strings.TrimSpace(c.VPCCidr) == "" {
		fail("vpcCidr is required")
	}

	if mem, ok := fargateMemory[c.CPU]; !ok {
		fail("cpu %d is not a Fargate CPU size", c.CPU)
	} else if !slices.Contains(mem, c.MemoryMiB) {
		fail("memoryMiB %d is not valid for cpu %d (allowed: %v)", c.MemoryMiB, c.CPU, mem)
	}
	if c.DesiredCount < 1 {
		fail("desiredCount must be at least 1, got %d", c.DesiredCount)
	}
	if c.ContainerPort < 1 || c.ContainerPort > 65535 {
		fail("containerPort %d out of range", c.ContainerPort)
	}

	if c.Features.Logging {
		if strings.TrimSpace(c.LogGroupName) == "" {
			fail("logGroupName is required when logging is enabled")
		}
		if strings.TrimSpace(c.LogStreamPrefix) == "" {
			fail("logStreamPrefix is required when logging is enabled")
		}
		if !slices.Contains(logs.RetentionDays, c.LogRetentionDays) {
			fail("logRetentionDays %d is not a CloudWatch Logs retention period", c.LogRetentionDays)
		}
	}

	if c.Features.Alarms {
		if strings.TrimSpace(c.AlertEmail) == "" {
			fail("alertEmail is required when alarms are enabled")
		} else if addr, err := mail.ParseAddress(c.AlertEmail); err != nil || addr.Address != c.AlertEmail {
			fail("alertEmail %q is not a valid email address", c.AlertEmail)
		}
		if c.CPUThreshold <= 0 || c.CPUThreshold > 100 {
			fail("cpuThreshold must be in (0, 100], got %g", c.CPUThreshold)
		}
		if c.MemThreshold <= 0 || c.MemThreshold > 100 {
			fail("memThreshold must be in (0, 100], got %g", c.MemThreshold)
		}
	}

	if c.Features.Autoscaling {
		if c.MinCapacity < 1 {
			fail("minCapacity must be at least 1, got %d", c.MinCapacity)
		}
		if c.MaxCapacity < c.MinCapacity {
			fail("maxCapacity (%d) must not be below minCapacity (%d)", c.MaxCapacity, c.MinCapacity)
		}
		if c.DesiredCount < c.MinCapacity || c.DesiredCount > c.MaxCapacity {
			fail("desiredCount (%d) must lie within [minCapacity, maxCapacity] = [%d, %d]", c.DesiredCount, c.MinCapacity, c.MaxCapacity)
		}
		if c.TargetCPUUtilization <= 0 || c.TargetCPUUtilization > 100 {
			fail("targetCpuUtilization must be in (0, 100], got %g", c.TargetCPUUtilization)
		}
		for name, d := range map[string]time.Duration{"scaleInCooldown": c.ScaleInCooldown, "scaleOutCooldown": c.ScaleOutCooldown} {
			if d < 0 || d%time.Second != 0 {
				fail("%s must be a non-negative whole number of seconds, got %s", name, d)
			}
		}
	}

	return errors.Join(errs...)
}

// New returns a viper instance wired for WEATHER_* environment overrides and
// the given config file. An empty path searches ./weather-infra.{yaml,json,toml}
// and $XDG_CONFIG_HOME/weather-infra/.
func New(configFile string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		return v
	}
	v.SetConfigName("weather-infra")
	v.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, "weather-infra"))
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "weather-infra"))
	}
	return v
}

// Load resolves the configuration and validates the result.
func Load(v *viper.Viper, strict bool) (Config, error) {
	cfg, err := Resolve(v, strict)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config:\n%w", err)
	}
	return cfg, nil
}

// Resolve reads the config file (mandatory only when strict) and layers it
// over the selected preset without validating feature options.
func Resolve(v *viper.Viper, strict bool) (Config, error) {
	if err := readConfigFile(v, strict); err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	base, err := Preset(v.GetString("variant"))
	if err != nil {
		return Config{}, err
	}
	SetDefaults(v, base)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Variant = strings.ToLower(strings.TrimSpace(cfg.Variant))
	if cfg.Variant == "" {
		cfg.Variant = base.Variant
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

// SetDefaults registers every option of base as a viper default so that
// environment variables and flags can override individual keys.
func SetDefaults(v *viper.Viper, base Config) {
	for key, value := range Settings(base) {
		v.SetDefault(key, value)
	}
}

// Settings flattens a config into viper keys.
func Settings(c Config) map[string]any {
	return map[string]any{
		"stackName":                      c.StackName,
		"description":                    c.Description,
		"region":                         c.Region,
		"variant":                        c.Variant,
		"registryUri":                    c.RegistryURI,
		"imageTag":                       c.ImageTag,
		"maxAzs":                         c.MaxAZs,
		"natGateways":                    c.NatGateways,
		"vpcCidr":                        c.VPCCidr,
		"cpu":                            c.CPU,
		"memoryMiB":                      c.MemoryMiB,
		"desiredCount":                   c.DesiredCount,
		"containerPort":                  c.ContainerPort,
		"clusterName":                    c.ClusterName,
		"publicLoadBalancer":             c.PublicLoadBalancer,
		"logGroupName":                   c.LogGroupName,
		"logRetentionDays":               c.LogRetentionDays,
		"logStreamPrefix":                c.LogStreamPrefix,
		"alertEmail":                     c.AlertEmail,
		"topicDisplayName":               c.TopicDisplayName,
		"cpuThreshold":                   c.CPUThreshold,
		"memThreshold":                   c.MemThreshold,
		"minCapacity":                    c.MinCapacity,
		"maxCapacity":                    c.MaxCapacity,
		"targetCpuUtilization":           c.TargetCPUUtilization,
		"scaleInCooldown":                c.ScaleInCooldown,
		"scaleOutCooldown":               c.ScaleOutCooldown,
		"features.logging":               c.Features.Logging,
		"features.alarms":                c.Features.Alarms,
		"features.autoscaling":           c.Features.Autoscaling,
		"features.managedRegistryPolicy": c.Features.ManagedRegistryPolicy,
	}
}
