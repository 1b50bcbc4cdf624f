// Package applicationautoscaling contains CloudFormation resource types for
// AWS::ApplicationAutoScaling.
package applicationautoscaling

// ScalableTarget represents AWS::ApplicationAutoScaling::ScalableTarget.
type ScalableTarget struct {
	MinCapacity       any `json:"MinCapacity,omitempty"`
	MaxCapacity       any `json:"MaxCapacity,omitempty"`
	ResourceId        any `json:"ResourceId,omitempty"`
	RoleARN           any `json:"RoleARN,omitempty"`
	ScalableDimension any `json:"ScalableDimension,omitempty"`
	ServiceNamespace  any `json:"ServiceNamespace,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (ScalableTarget) ResourceType() string {
	return "AWS::ApplicationAutoScaling::ScalableTarget"
}

// ScalingPolicy represents AWS::ApplicationAutoScaling::ScalingPolicy.
type ScalingPolicy struct {
	PolicyName                               any `json:"PolicyName,omitempty"`
	PolicyType                               any `json:"PolicyType,omitempty"`
	ScalingTargetId                          any `json:"ScalingTargetId,omitempty"`
	TargetTrackingScalingPolicyConfiguration any `json:"TargetTrackingScalingPolicyConfiguration,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (ScalingPolicy) ResourceType() string {
	return "AWS::ApplicationAutoScaling::ScalingPolicy"
}

// ScalingPolicy_TargetTrackingScalingPolicyConfiguration keeps a metric near a target.
type ScalingPolicy_TargetTrackingScalingPolicyConfiguration struct {
	TargetValue                   any  `json:"TargetValue,omitempty"`
	ScaleInCooldown               any  `json:"ScaleInCooldown,omitempty"`
	ScaleOutCooldown              any  `json:"ScaleOutCooldown,omitempty"`
	DisableScaleIn                bool `json:"DisableScaleIn,omitempty"`
	PredefinedMetricSpecification any  `json:"PredefinedMetricSpecification,omitempty"`
}

// ScalingPolicy_PredefinedMetricSpecification selects a predefined metric.
type ScalingPolicy_PredefinedMetricSpecification struct {
	PredefinedMetricType any `json:"PredefinedMetricType,omitempty"`
	ResourceLabel        any `json:"ResourceLabel,omitempty"`
}
