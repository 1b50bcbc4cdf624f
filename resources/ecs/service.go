package ecs

// Service represents AWS::ECS::Service.
type Service struct {
	ServiceName                   any   `json:"ServiceName,omitempty"`
	Cluster                       any   `json:"Cluster,omitempty"`
	TaskDefinition                any   `json:"TaskDefinition,omitempty"`
	DesiredCount                  any   `json:"DesiredCount,omitempty"`
	LaunchType                    any   `json:"LaunchType,omitempty"`
	NetworkConfiguration          any   `json:"NetworkConfiguration,omitempty"`
	LoadBalancers                 []any `json:"LoadBalancers,omitempty"`
	HealthCheckGracePeriodSeconds any   `json:"HealthCheckGracePeriodSeconds,omitempty"`
	DeploymentConfiguration       any   `json:"DeploymentConfiguration,omitempty"`
	EnableECSManagedTags          bool  `json:"EnableECSManagedTags,omitempty"`
	PropagateTags                 any   `json:"PropagateTags,omitempty"`
	Tags                          []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Service) ResourceType() string { return "AWS::ECS::Service" }

// Service_LoadBalancer registers the service's containers with a target group.
type Service_LoadBalancer struct {
	ContainerName  any `json:"ContainerName,omitempty"`
	ContainerPort  any `json:"ContainerPort,omitempty"`
	TargetGroupArn any `json:"TargetGroupArn,omitempty"`
}

// Service_NetworkConfiguration wraps the awsvpc configuration.
type Service_NetworkConfiguration struct {
	AwsvpcConfiguration any `json:"AwsvpcConfiguration,omitempty"`
}

// Service_AwsVpcConfiguration places tasks in subnets and security groups.
type Service_AwsVpcConfiguration struct {
	AssignPublicIp any   `json:"AssignPublicIp,omitempty"`
	Subnets        []any `json:"Subnets,omitempty"`
	SecurityGroups []any `json:"SecurityGroups,omitempty"`
}

// Service_DeploymentConfiguration controls rolling deployments.
type Service_DeploymentConfiguration struct {
	MaximumPercent           any `json:"MaximumPercent,omitempty"`
	MinimumHealthyPercent    any `json:"MinimumHealthyPercent,omitempty"`
	DeploymentCircuitBreaker any `json:"DeploymentCircuitBreaker,omitempty"`
}

// Service_DeploymentCircuitBreaker rolls back failed deployments.
type Service_DeploymentCircuitBreaker struct {
	Enable   bool `json:"Enable"`
	Rollback bool `json:"Rollback"`
}
