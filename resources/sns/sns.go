// Package sns contains CloudFormation resource types for AWS::SNS.
package sns

// AttrTopicArn is the topic ARN attribute.
const AttrTopicArn = "TopicArn"

// Topic represents AWS::SNS::Topic.
type Topic struct {
	TopicName   any   `json:"TopicName,omitempty"`
	DisplayName any   `json:"DisplayName,omitempty"`
	Tags        []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Topic) ResourceType() string { return "AWS::SNS::Topic" }

// Subscription represents AWS::SNS::Subscription.
type Subscription struct {
	Protocol any `json:"Protocol,omitempty"`
	Endpoint any `json:"Endpoint,omitempty"`
	TopicArn any `json:"TopicArn,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Subscription) ResourceType() string { return "AWS::SNS::Subscription" }
