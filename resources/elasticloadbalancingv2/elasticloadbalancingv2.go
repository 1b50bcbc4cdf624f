// Package elasticloadbalancingv2 contains CloudFormation resource types for
// AWS::ElasticLoadBalancingV2 application load balancers.
package elasticloadbalancingv2

// Attribute names usable with GetAtt.
const (
	AttrDNSName              = "DNSName"
	AttrLoadBalancerFullName = "LoadBalancerFullName"
	AttrTargetGroupFullName  = "TargetGroupFullName"
)

// LoadBalancer represents AWS::ElasticLoadBalancingV2::LoadBalancer.
type LoadBalancer struct {
	Name                   any   `json:"Name,omitempty"`
	Scheme                 any   `json:"Scheme,omitempty"`
	Type                   any   `json:"Type,omitempty"`
	Subnets                []any `json:"Subnets,omitempty"`
	SecurityGroups         []any `json:"SecurityGroups,omitempty"`
	LoadBalancerAttributes []any `json:"LoadBalancerAttributes,omitempty"`
	Tags                   []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (LoadBalancer) ResourceType() string { return "AWS::ElasticLoadBalancingV2::LoadBalancer" }

// LoadBalancer_LoadBalancerAttribute is a load balancer attribute.
type LoadBalancer_LoadBalancerAttribute struct {
	Key   any `json:"Key,omitempty"`
	Value any `json:"Value,omitempty"`
}

// TargetGroup represents AWS::ElasticLoadBalancingV2::TargetGroup.
type TargetGroup struct {
	Port                  any   `json:"Port,omitempty"`
	Protocol              any   `json:"Protocol,omitempty"`
	TargetType            any   `json:"TargetType,omitempty"`
	VpcId                 any   `json:"VpcId,omitempty"`
	HealthCheckPath       any   `json:"HealthCheckPath,omitempty"`
	TargetGroupAttributes []any `json:"TargetGroupAttributes,omitempty"`
	Tags                  []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (TargetGroup) ResourceType() string { return "AWS::ElasticLoadBalancingV2::TargetGroup" }

// TargetGroup_TargetGroupAttribute is a target group attribute.
type TargetGroup_TargetGroupAttribute struct {
	Key   any `json:"Key,omitempty"`
	Value any `json:"Value,omitempty"`
}

// Listener represents AWS::ElasticLoadBalancingV2::Listener.
type Listener struct {
	LoadBalancerArn any   `json:"LoadBalancerArn,omitempty"`
	Port            any   `json:"Port,omitempty"`
	Protocol        any   `json:"Protocol,omitempty"`
	DefaultActions  []any `json:"DefaultActions,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Listener) ResourceType() string { return "AWS::ElasticLoadBalancingV2::Listener" }

// Listener_Action is a listener's default action.
type Listener_Action struct {
	Type           any `json:"Type,omitempty"`
	TargetGroupArn any `json:"TargetGroupArn,omitempty"`
}
