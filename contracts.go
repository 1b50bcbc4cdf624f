// Package reactweather provides the shared types of the weather app infrastructure synthesizer.
//
// The stack builder declares typed CloudFormation resources:
//
//	cluster := s.Add("WeatherCluster", ecs.Cluster{})
//	s.Add("WeatherService", ecs.Service{
//	    Cluster: cluster.Ref(),
//	})
//
// and the template builder turns them into a CloudFormation template that the
// weather-infra CLI prints, diffs, validates or hands to CloudFormation.
package reactweather

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Resource represents a CloudFormation resource.
// All resource types (ecs.Service, iam.Role, etc.) implement this interface.
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::ECS::Service")
	ResourceType() string
}

// AttrRef represents a GetAtt reference to a resource attribute.
//
// When serialized to CloudFormation JSON, AttrRef becomes:
//
//	{"Fn::GetAtt": ["WeatherLoadBalancer", "DNSName"]}
type AttrRef struct {
	// Resource is the logical name of the referenced resource
	Resource string
	// Attribute is the attribute name (e.g., "Arn", "DNSName")
	Attribute string
}

// MarshalJSON serializes AttrRef to CloudFormation GetAtt syntax.
func (a AttrRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{
		"Fn::GetAtt": {a.Resource, a.Attribute},
	})
}

// IsZero returns true if the AttrRef has not been populated.
func (a AttrRef) IsZero() bool {
	return a.Resource == "" && a.Attribute == ""
}

// Deletion policies understood by CloudFormation.
const (
	DeletionPolicyDelete = "Delete"
	DeletionPolicyRetain = "Retain"
)

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type                string         `json:"Type" yaml:"Type"`
	Properties          map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn           []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
}

// UnmarshalJSON accepts DependsOn as a single logical name or a list.
func (r *ResourceDef) UnmarshalJSON(data []byte) error {
	type plain ResourceDef
	var raw struct {
		plain
		DependsOn any `json:"DependsOn"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ResourceDef(raw.plain)
	switch v := raw.DependsOn.(type) {
	case nil:
	case string:
		r.DependsOn = []string{v}
	case []any:
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return fmt.Errorf("DependsOn: expected logical name, got %T", item)
			}
			r.DependsOn = append(r.DependsOn, name)
		}
	default:
		return fmt.Errorf("DependsOn: expected string or list, got %T", v)
	}
	return nil
}

// ResourcesOfType returns the logical names of every resource with the given
// CloudFormation type, sorted.
func (t *Template) ResourcesOfType(cfType string) []string {
	var names []string
	for name, def := range t.Resources {
		if def.Type == cfType {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Output is a CloudFormation template output.
type Output struct {
	Description string  `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any     `json:"Value" yaml:"Value"`
	Export      *Export `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// Export names an output for cross-stack imports.
type Export struct {
	Name any `json:"Name" yaml:"Name"`
}

// BuildResult is the JSON output from `weather-infra synth` on failure paths
// and from the watch loop.
type BuildResult struct {
	Success   bool     `json:"success"`
	Template  Template `json:"template,omitempty"`
	Resources []string `json:"resources,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// ValidateResult is the JSON output from `weather-infra validate`.
type ValidateResult struct {
	Success   bool        `json:"success"`
	Resources int         `json:"resources"`
	Errors    []string    `json:"errors,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
	Issues    []LintIssue `json:"issues,omitempty"`
}

// LintResult is the outcome of running the topology audit rules.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single audit finding against a synthesized template.
type LintIssue struct {
	Resource string `json:"resource"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Rule     string `json:"rule"`
}

// SchemaError is a schema violation found by offline validation.
type SchemaError struct {
	Resource string `json:"resource"`
	Property string `json:"property"`
	Message  string `json:"message"`
}

// Error implements the error interface.
func (e SchemaError) Error() string {
	if e.Property == "" {
		return e.Resource + ": " + e.Message
	}
	return e.Resource + "." + e.Property + ": " + e.Message
}

// DiffEntry describes one resource that differs between two templates.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// TemplateDiff groups resource differences by kind.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
	Outputs  []string    `json:"outputs,omitempty"`
}

// DiffSummary counts the differences in a TemplateDiff.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}
