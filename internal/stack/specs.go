package stack

import (
	"fmt"
	"time"

	"github.com/mertsatargan/react-weather-cdk/internal/config"
	"github.com/mertsatargan/react-weather-cdk/resources/cloudwatch"
)

// NetworkSpec describes the virtual network.
type NetworkSpec struct {
	MaxAZs      int
	CIDR        string
	NatGateways int
}

// ClusterSpec describes the container cluster bound to the network.
type ClusterSpec struct {
	Name string
}

// LogSinkSpec describes the log group the service writes to.
type LogSinkSpec struct {
	GroupName     string
	RetentionDays int
	StreamPrefix  string
	Destroy       bool
}

// ExecutionIdentitySpec describes the role the service's tasks use to pull
// their image.
type ExecutionIdentitySpec struct {
	Actions         []string
	Resources       []string
	ManagedPolicies []string
}

// ServiceSpec describes the load-balanced Fargate service.
type ServiceSpec struct {
	CPU           int
	MemoryMiB     int
	DesiredCount  int
	Public        bool
	Image         string
	ContainerName string
	ContainerPort int
	LogDriver     *LogSinkSpec
	Identity      ExecutionIdentitySpec
}

// NotificationSpec describes the alert topic and its email subscriber.
type NotificationSpec struct {
	DisplayName string
	Email       string
}

// AlarmSpec describes a threshold watcher on a service metric.
type AlarmSpec struct {
	Name              string
	MetricName        string
	Period            time.Duration
	Statistic         string
	Threshold         float64
	Comparison        string
	EvaluationPeriods int
	DatapointsToAlarm int
	Description       string
}

// AutoscalerSpec describes target tracking on the service's task count.
type AutoscalerSpec struct {
	MinCapacity       int
	MaxCapacity       int
	TargetUtilization float64
	ScaleInCooldown   time.Duration
	ScaleOutCooldown  time.Duration
}

// Specs is the full set of component specifications of one stack. Optional
// components are nil when their feature is disabled.
type Specs struct {
	Network      NetworkSpec
	Cluster      ClusterSpec
	LogSink      *LogSinkSpec
	Service      ServiceSpec
	Notification *NotificationSpec
	Alarms       []AlarmSpec
	Autoscaler   *AutoscalerSpec
}

// Registry pull actions granted to the execution role.
var registryPullActions = []string{
	"ecr:GetAuthorizationToken",
	"ecr:BatchGetImage",
	"ecr:GetDownloadUrlForLayer",
}

// RegistryReadOnlyPolicy is the managed policy attached in the full variant.
const RegistryReadOnlyPolicy = "AmazonEC2ContainerRegistryReadOnly"

// SpecsFromConfig derives the component specifications from configuration.
func SpecsFromConfig(cfg config.Config) Specs {
	specs := Specs{
		Network: NetworkSpec{
			MaxAZs:      cfg.MaxAZs,
			CIDR:        cfg.VPCCidr,
			NatGateways: cfg.NatGateways,
		},
		Cluster: ClusterSpec{Name: cfg.ClusterName},
		Service: ServiceSpec{
			CPU:           cfg.CPU,
			MemoryMiB:     cfg.MemoryMiB,
			DesiredCount:  cfg.DesiredCount,
			Public:        cfg.PublicLoadBalancer,
			Image:         cfg.Image(),
			ContainerName: "web",
			ContainerPort: cfg.ContainerPort,
			Identity: ExecutionIdentitySpec{
				Actions: append([]string(nil), registryPullActions...),
				// The pull actions are granted on every repository; see lint rule RW001.
				Resources: []string{"*"},
			},
		},
	}

	if cfg.Features.ManagedRegistryPolicy {
		specs.Service.Identity.ManagedPolicies = []string{RegistryReadOnlyPolicy}
	}

	if cfg.Features.Logging {
		specs.LogSink = &LogSinkSpec{
			GroupName:     cfg.LogGroupName,
			RetentionDays: cfg.LogRetentionDays,
			StreamPrefix:  cfg.LogStreamPrefix,
			Destroy:       true,
		}
		specs.Service.LogDriver = specs.LogSink
	}

	if cfg.Features.Alarms {
		specs.Notification = &NotificationSpec{
			DisplayName: cfg.TopicDisplayName,
			Email:       cfg.AlertEmail,
		}
		specs.Alarms = []AlarmSpec{
			utilizationAlarm("CpuHighAlarm", "CPUUtilization", "CPU", cfg.CPUThreshold),
			utilizationAlarm("MemoryHighAlarm", "MemoryUtilization", "Memory", cfg.MemThreshold),
		}
	}

	if cfg.Features.Autoscaling {
		specs.Autoscaler = &AutoscalerSpec{
			MinCapacity:       cfg.MinCapacity,
			MaxCapacity:       cfg.MaxCapacity,
			TargetUtilization: cfg.TargetCPUUtilization,
			ScaleInCooldown:   cfg.ScaleInCooldown,
			ScaleOutCooldown:  cfg.ScaleOutCooldown,
		}
	}

	return specs
}

// utilizationAlarm samples a one-minute average and fires on 2 of 2
// breaching datapoints.
func utilizationAlarm(name, metric, label string, threshold float64) AlarmSpec {
	const periods = 2
	period := time.Minute
	return AlarmSpec{
		Name:              name,
		MetricName:        metric,
		Period:            period,
		Statistic:         "Average",
		Threshold:         threshold,
		Comparison:        cloudwatch.GreaterThanOrEqualToThreshold,
		EvaluationPeriods: periods,
		DatapointsToAlarm: periods,
		Description:       fmt.Sprintf("%s >= %g%% for %d mins", label, threshold, int(period.Minutes())*periods),
	}
}
