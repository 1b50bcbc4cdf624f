// Package cloudwatch contains CloudFormation resource types for AWS::CloudWatch.
package cloudwatch

// Comparison operators accepted by AWS::CloudWatch::Alarm.
const (
	GreaterThanOrEqualToThreshold = "GreaterThanOrEqualToThreshold"
	GreaterThanThreshold          = "GreaterThanThreshold"
	LessThanThreshold             = "LessThanThreshold"
	LessThanOrEqualToThreshold    = "LessThanOrEqualToThreshold"
)

// Alarm represents AWS::CloudWatch::Alarm.
type Alarm struct {
	AlarmName          any   `json:"AlarmName,omitempty"`
	AlarmDescription   any   `json:"AlarmDescription,omitempty"`
	Namespace          any   `json:"Namespace,omitempty"`
	MetricName         any   `json:"MetricName,omitempty"`
	Dimensions         []any `json:"Dimensions,omitempty"`
	Statistic          any   `json:"Statistic,omitempty"`
	Period             any   `json:"Period,omitempty"`
	EvaluationPeriods  any   `json:"EvaluationPeriods,omitempty"`
	DatapointsToAlarm  any   `json:"DatapointsToAlarm,omitempty"`
	Threshold          any   `json:"Threshold,omitempty"`
	ComparisonOperator any   `json:"ComparisonOperator,omitempty"`
	TreatMissingData   any   `json:"TreatMissingData,omitempty"`
	AlarmActions       []any `json:"AlarmActions,omitempty"`
	OKActions          []any `json:"OKActions,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Alarm) ResourceType() string { return "AWS::CloudWatch::Alarm" }

// Alarm_Dimension narrows an alarm's metric.
type Alarm_Dimension struct {
	Name  any `json:"Name,omitempty"`
	Value any `json:"Value,omitempty"`
}
