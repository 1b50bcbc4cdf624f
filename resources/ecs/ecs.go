// Package ecs contains CloudFormation resource types for AWS::ECS.
package ecs

// Attribute names usable with GetAtt.
const (
	AttrArn  = "Arn"
	AttrName = "Name"
)

// Cluster represents AWS::ECS::Cluster.
type Cluster struct {
	ClusterName     any   `json:"ClusterName,omitempty"`
	ClusterSettings []any `json:"ClusterSettings,omitempty"`
	Tags            []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Cluster) ResourceType() string { return "AWS::ECS::Cluster" }

// Cluster_ClusterSettings is a cluster setting such as containerInsights.
type Cluster_ClusterSettings struct {
	Name  any `json:"Name,omitempty"`
	Value any `json:"Value,omitempty"`
}
