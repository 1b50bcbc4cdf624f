package stack

import (
	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/intrinsics"
	"github.com/mertsatargan/react-weather-cdk/resources/ecs"
	"github.com/mertsatargan/react-weather-cdk/resources/logs"
)

// Cluster is the ECS cluster bound to a network.
type Cluster struct {
	Handle
	Network Network
}

// AddCluster declares the ECS cluster. The cluster has no VPC property of
// its own; services launched on it are placed in the network's subnets.
func AddCluster(s *Stack, id string, spec ClusterSpec, net Network) Cluster {
	h := s.Add(id, ecs.Cluster{
		ClusterName: optional(spec.Name),
		Tags:        intrinsics.Any(intrinsics.NameTag(id)),
	})
	return Cluster{Handle: h, Network: net}
}

// AddLogSink declares the log group. Destroy removes the group (and its
// events) when the stack is deleted.
func AddLogSink(s *Stack, id string, spec LogSinkSpec) Handle {
	policy := reactweather.DeletionPolicyRetain
	if spec.Destroy {
		policy = reactweather.DeletionPolicyDelete
	}
	return s.Add(id, logs.LogGroup{
		LogGroupName:    optional(spec.GroupName),
		RetentionInDays: spec.RetentionDays,
	}, WithDeletionPolicy(policy))
}

// optional drops empty strings so the property is omitted.
func optional(v string) any {
	if v == "" {
		return nil
	}
	return v
}
