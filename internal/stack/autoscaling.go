package stack

import (
	"github.com/mertsatargan/react-weather-cdk/intrinsics"
	"github.com/mertsatargan/react-weather-cdk/resources/applicationautoscaling"
	"github.com/mertsatargan/react-weather-cdk/resources/ecs"
)

// Autoscaler is the scalable target and its target-tracking policy.
type Autoscaler struct {
	Target Handle
	Policy Handle
}

// ecsAutoscalingRole is the service-linked role Application Auto Scaling
// uses for ECS services.
const ecsAutoscalingRole = "arn:${AWS::Partition}:iam::${AWS::AccountId}:role/aws-service-role/" +
	"ecs.application-autoscaling.amazonaws.com/AWSServiceRoleForApplicationAutoScaling_ECSService"

// AddAutoscaler lets the service's task count float within
// [MinCapacity, MaxCapacity] to keep average CPU near TargetUtilization.
func AddAutoscaler(s *Stack, id string, spec AutoscalerSpec, cluster Cluster, service Handle) Autoscaler {
	target := s.Add(id, applicationautoscaling.ScalableTarget{
		MinCapacity: spec.MinCapacity,
		MaxCapacity: spec.MaxCapacity,
		ResourceId: intrinsics.Join{
			Delimiter: "/",
			Values:    intrinsics.Any("service", cluster.Ref(), service.GetAtt(ecs.AttrName)),
		},
		RoleARN:           intrinsics.Sub{String: ecsAutoscalingRole},
		ScalableDimension: "ecs:service:DesiredCount",
		ServiceNamespace:  "ecs",
	})

	policy := s.Add(id+"CpuTargetTracking", applicationautoscaling.ScalingPolicy{
		PolicyName:      intrinsics.Sub{String: "${AWS::StackName}-" + id + "-CpuTargetTracking"},
		PolicyType:      "TargetTrackingScaling",
		ScalingTargetId: target.Ref(),
		TargetTrackingScalingPolicyConfiguration: applicationautoscaling.ScalingPolicy_TargetTrackingScalingPolicyConfiguration{
			TargetValue:      spec.TargetUtilization,
			ScaleInCooldown:  int(spec.ScaleInCooldown.Seconds()),
			ScaleOutCooldown: int(spec.ScaleOutCooldown.Seconds()),
			PredefinedMetricSpecification: applicationautoscaling.ScalingPolicy_PredefinedMetricSpecification{
				PredefinedMetricType: "ECSServiceAverageCPUUtilization",
			},
		},
	})

	return Autoscaler{Target: target, Policy: policy}
}
