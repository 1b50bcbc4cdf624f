package stack

import (
	"fmt"

	"go.uber.org/zap"

	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/internal/config"
)

// Logical IDs of the top-level components.
const (
	NetworkID    = "WeatherVPC"
	ClusterID    = "WeatherCluster"
	LogGroupID   = "WeatherAppLogGroup"
	ServiceID    = "WeatherService"
	TopicID      = "AlertTopic"
	AutoscalerID = ServiceID + "TaskCountTarget"
)

// Topology gives access to the handles of a built stack.
type Topology struct {
	Network    Network
	Cluster    Cluster
	LogSink    *Handle
	Service    Service
	Topic      *Handle
	Alarms     []Handle
	Autoscaler *Autoscaler
}

// Build validates cfg and declares the whole topology, leaves first:
// network, cluster, log sink, service with its execution identity,
// notification channel, alarms and autoscaler. Optional parts follow
// cfg.Features.
func Build(cfg config.Config, logger *zap.Logger) (*Stack, *Topology, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config:\n%w", err)
	}

	s := New(cfg.StackName, cfg.Description, logger)
	specs := SpecsFromConfig(cfg)
	s.logger.Info("building stack",
		zap.String("variant", cfg.Variant),
		zap.String("image", specs.Service.Image),
		zap.Bool("logging", specs.LogSink != nil),
		zap.Bool("alarms", len(specs.Alarms) > 0),
		zap.Bool("autoscaling", specs.Autoscaler != nil))

	topo := &Topology{}
	topo.Network = AddNetwork(s, NetworkID, specs.Network)
	topo.Cluster = AddCluster(s, ClusterID, specs.Cluster, topo.Network)

	if specs.LogSink != nil {
		h := AddLogSink(s, LogGroupID, *specs.LogSink)
		topo.LogSink = &h
	}

	topo.Service = AddService(s, ServiceID, specs.Service, topo.Cluster, topo.LogSink)

	if specs.Notification != nil {
		h := AddNotificationChannel(s, TopicID, *specs.Notification)
		topo.Topic = &h
	}
	for _, alarm := range specs.Alarms {
		topo.Alarms = append(topo.Alarms, AddAlarm(s, alarm, topo.Cluster, topo.Service.Service, topo.Topic))
	}

	if specs.Autoscaler != nil {
		a := AddAutoscaler(s, AutoscalerID, *specs.Autoscaler, topo.Cluster, topo.Service.Service)
		topo.Autoscaler = &a
	}

	if err := s.Err(); err != nil {
		return nil, nil, err
	}
	return s, topo, nil
}

// Template builds cfg and synthesizes its CloudFormation template.
func Template(cfg config.Config, logger *zap.Logger) (*reactweather.Template, error) {
	s, _, err := Build(cfg, logger)
	if err != nil {
		return nil, err
	}
	return s.Synth()
}
