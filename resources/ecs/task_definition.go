package ecs

// TaskDefinition represents AWS::ECS::TaskDefinition.
type TaskDefinition struct {
	Family                  any   `json:"Family,omitempty"`
	Cpu                     any   `json:"Cpu,omitempty"`
	Memory                  any   `json:"Memory,omitempty"`
	NetworkMode             any   `json:"NetworkMode,omitempty"`
	RequiresCompatibilities []any `json:"RequiresCompatibilities,omitempty"`
	ExecutionRoleArn        any   `json:"ExecutionRoleArn,omitempty"`
	TaskRoleArn             any   `json:"TaskRoleArn,omitempty"`
	ContainerDefinitions    []any `json:"ContainerDefinitions,omitempty"`
	Tags                    []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (TaskDefinition) ResourceType() string { return "AWS::ECS::TaskDefinition" }

// TaskDefinition_ContainerDefinition describes one container of a task.
type TaskDefinition_ContainerDefinition struct {
	Name             any   `json:"Name,omitempty"`
	Image            any   `json:"Image,omitempty"`
	Essential        bool  `json:"Essential,omitempty"`
	PortMappings     []any `json:"PortMappings,omitempty"`
	LogConfiguration any   `json:"LogConfiguration,omitempty"`
	Environment      []any `json:"Environment,omitempty"`
}

// TaskDefinition_PortMapping exposes a container port.
type TaskDefinition_PortMapping struct {
	ContainerPort any `json:"ContainerPort,omitempty"`
	Protocol      any `json:"Protocol,omitempty"`
}

// TaskDefinition_LogConfiguration selects a log driver for a container.
type TaskDefinition_LogConfiguration struct {
	LogDriver any            `json:"LogDriver,omitempty"`
	Options   map[string]any `json:"Options,omitempty"`
}

// TaskDefinition_KeyValuePair is an environment variable.
type TaskDefinition_KeyValuePair struct {
	Name  any `json:"Name,omitempty"`
	Value any `json:"Value,omitempty"`
}
