package schema

func bound(v float64) *float64 { return &v }

var (
	str     = PropertySchema{Type: "String"}
	integer = PropertySchema{Type: "Integer"}
	boolean = PropertySchema{Type: "Boolean"}
	list    = PropertySchema{Type: "List"}
	object  = PropertySchema{Type: "Map"}
	jsonDoc = PropertySchema{Type: "Json"}
	port    = PropertySchema{Type: "Integer", Min: bound(1), Max: bound(65535)}
	percent = PropertySchema{Type: "Double", Min: bound(0), Max: bound(100)}
)

func oneOf(values ...string) PropertySchema {
	return PropertySchema{Type: "String", AllowedValues: values}
}

// resourceSchemas covers the resource types of the weather app topology.
var resourceSchemas = map[string]ResourceSchema{
	"AWS::EC2::VPC": {
		Properties: map[string]PropertySchema{
			"CidrBlock":          str,
			"EnableDnsHostnames": boolean,
			"EnableDnsSupport":   boolean,
			"InstanceTenancy":    oneOf("default", "dedicated", "host"),
			"Tags":               list,
		},
	},
	"AWS::EC2::InternetGateway": {
		Properties: map[string]PropertySchema{"Tags": list},
	},
	"AWS::EC2::VPCGatewayAttachment": {
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"VpcId":             str,
			"InternetGatewayId": str,
		},
	},
	"AWS::EC2::Subnet": {
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"VpcId":               str,
			"CidrBlock":           str,
			"AvailabilityZone":    str,
			"MapPublicIpOnLaunch": boolean,
			"Tags":                list,
		},
	},
	"AWS::EC2::RouteTable": {
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"VpcId": str,
			"Tags":  list,
		},
	},
	"AWS::EC2::Route": {
		Required: []string{"RouteTableId"},
		Properties: map[string]PropertySchema{
			"RouteTableId":         str,
			"DestinationCidrBlock": str,
			"GatewayId":            str,
			"NatGatewayId":         str,
		},
	},
	"AWS::EC2::SubnetRouteTableAssociation": {
		Required: []string{"RouteTableId", "SubnetId"},
		Properties: map[string]PropertySchema{
			"RouteTableId": str,
			"SubnetId":     str,
		},
	},
	"AWS::EC2::EIP": {
		Properties: map[string]PropertySchema{
			"Domain": oneOf("vpc", "standard"),
			"Tags":   list,
		},
	},
	"AWS::EC2::NatGateway": {
		Required: []string{"SubnetId"},
		Properties: map[string]PropertySchema{
			"AllocationId": str,
			"SubnetId":     str,
			"Tags":         list,
		},
	},
	"AWS::EC2::SecurityGroup": {
		Required: []string{"GroupDescription"},
		Properties: map[string]PropertySchema{
			"GroupDescription":     str,
			"VpcId":                str,
			"SecurityGroupIngress": list,
			"SecurityGroupEgress":  list,
			"Tags":                 list,
		},
	},
	"AWS::EC2::SecurityGroupIngress": {
		Required: []string{"IpProtocol"},
		Properties: map[string]PropertySchema{
			"GroupId":               str,
			"IpProtocol":            str,
			"FromPort":              port,
			"ToPort":                port,
			"SourceSecurityGroupId": str,
			"Description":           str,
		},
	},
	"AWS::ECS::Cluster": {
		Properties: map[string]PropertySchema{
			"ClusterName":     str,
			"ClusterSettings": list,
			"Tags":            list,
		},
	},
	"AWS::ECS::TaskDefinition": {
		Properties: map[string]PropertySchema{
			"Family":                  str,
			"Cpu":                     oneOf("256", "512", "1024", "2048", "4096", "8192", "16384"),
			"Memory":                  str,
			"NetworkMode":             oneOf("awsvpc", "bridge", "host", "none"),
			"RequiresCompatibilities": list,
			"ExecutionRoleArn":        str,
			"TaskRoleArn":             str,
			"ContainerDefinitions":    list,
			"Tags":                    list,
		},
	},
	"AWS::ECS::Service": {
		Properties: map[string]PropertySchema{
			"ServiceName":                   str,
			"Cluster":                       str,
			"TaskDefinition":                str,
			"DesiredCount":                  PropertySchema{Type: "Integer", Min: bound(0)},
			"LaunchType":                    oneOf("EC2", "FARGATE", "EXTERNAL"),
			"NetworkConfiguration":          object,
			"LoadBalancers":                 list,
			"HealthCheckGracePeriodSeconds": integer,
			"DeploymentConfiguration":       object,
			"EnableECSManagedTags":          boolean,
			"PropagateTags":                 oneOf("SERVICE", "TASK_DEFINITION"),
			"Tags":                          list,
		},
	},
	"AWS::ElasticLoadBalancingV2::LoadBalancer": {
		Properties: map[string]PropertySchema{
			"Name":                   str,
			"Scheme":                 oneOf("internet-facing", "internal"),
			"Type":                   oneOf("application", "network", "gateway"),
			"Subnets":                list,
			"SecurityGroups":         list,
			"LoadBalancerAttributes": list,
			"Tags":                   list,
		},
	},
	"AWS::ElasticLoadBalancingV2::TargetGroup": {
		Properties: map[string]PropertySchema{
			"Port":                  port,
			"Protocol":              oneOf("HTTP", "HTTPS", "TCP", "TLS", "UDP", "TCP_UDP", "GENEVE"),
			"TargetType":            oneOf("instance", "ip", "lambda", "alb"),
			"VpcId":                 str,
			"HealthCheckPath":       str,
			"TargetGroupAttributes": list,
			"Tags":                  list,
		},
	},
	"AWS::ElasticLoadBalancingV2::Listener": {
		Required: []string{"DefaultActions", "LoadBalancerArn"},
		Properties: map[string]PropertySchema{
			"LoadBalancerArn": str,
			"Port":            port,
			"Protocol":        oneOf("HTTP", "HTTPS", "TCP", "TLS", "UDP", "TCP_UDP", "GENEVE"),
			"DefaultActions":  list,
		},
	},
	"AWS::IAM::Role": {
		Required: []string{"AssumeRolePolicyDocument"},
		Properties: map[string]PropertySchema{
			"RoleName":                 str,
			"Path":                     str,
			"AssumeRolePolicyDocument": jsonDoc,
			"ManagedPolicyArns":        list,
			"Policies":                 list,
			"Tags":                     list,
		},
	},
	"AWS::IAM::Policy": {
		Required: []string{"PolicyDocument", "PolicyName"},
		Properties: map[string]PropertySchema{
			"PolicyName":     str,
			"PolicyDocument": jsonDoc,
			"Roles":          list,
		},
	},
	"AWS::Logs::LogGroup": {
		Properties: map[string]PropertySchema{
			"LogGroupName":    str,
			"RetentionInDays": PropertySchema{Type: "Integer", Min: bound(1), Max: bound(3653)},
			"Tags":            list,
		},
	},
	"AWS::SNS::Topic": {
		Properties: map[string]PropertySchema{
			"TopicName":   str,
			"DisplayName": str,
			"Tags":        list,
		},
	},
	"AWS::SNS::Subscription": {
		Required: []string{"Protocol", "TopicArn"},
		Properties: map[string]PropertySchema{
			"Protocol": oneOf("http", "https", "email", "email-json", "sms", "sqs", "application", "lambda", "firehose"),
			"Endpoint": str,
			"TopicArn": str,
		},
	},
	"AWS::CloudWatch::Alarm": {
		Required: []string{"ComparisonOperator", "EvaluationPeriods"},
		Properties: map[string]PropertySchema{
			"AlarmName":         str,
			"AlarmDescription":  str,
			"Namespace":         str,
			"MetricName":        str,
			"Dimensions":        list,
			"Statistic":         oneOf("SampleCount", "Average", "Sum", "Minimum", "Maximum"),
			"Period":            PropertySchema{Type: "Integer", Min: bound(10)},
			"EvaluationPeriods": PropertySchema{Type: "Integer", Min: bound(1)},
			"DatapointsToAlarm": PropertySchema{Type: "Integer", Min: bound(1)},
			"Threshold":         PropertySchema{Type: "Double"},
			"ComparisonOperator": oneOf(
				"GreaterThanOrEqualToThreshold",
				"GreaterThanThreshold",
				"LessThanThreshold",
				"LessThanOrEqualToThreshold",
				"LessThanLowerOrGreaterThanUpperThreshold",
				"LessThanLowerThreshold",
				"GreaterThanUpperThreshold",
			),
			"TreatMissingData": oneOf("breaching", "notBreaching", "ignore", "missing"),
			"AlarmActions":     list,
			"OKActions":        list,
		},
	},
	"AWS::ApplicationAutoScaling::ScalableTarget": {
		Required: []string{"MaxCapacity", "MinCapacity", "ResourceId", "ScalableDimension", "ServiceNamespace"},
		Properties: map[string]PropertySchema{
			"MinCapacity":       PropertySchema{Type: "Integer", Min: bound(0)},
			"MaxCapacity":       PropertySchema{Type: "Integer", Min: bound(0)},
			"ResourceId":        str,
			"RoleARN":           str,
			"ScalableDimension": str,
			"ServiceNamespace":  str,
		},
	},
	"AWS::ApplicationAutoScaling::ScalingPolicy": {
		Required: []string{"PolicyName", "PolicyType"},
		Properties: map[string]PropertySchema{
			"PolicyName":      str,
			"PolicyType":      oneOf("StepScaling", "TargetTrackingScaling", "PredictiveScaling"),
			"ScalingTargetId": str,
			"TargetTrackingScalingPolicyConfiguration": object,
		},
		Nested: map[string]map[string]PropertySchema{
			"TargetTrackingScalingPolicyConfiguration": targetTracking,
		},
	},
}

// targetTracking bounds the nested target tracking configuration.
var targetTracking = map[string]PropertySchema{
	"TargetValue":      percent,
	"ScaleInCooldown":  PropertySchema{Type: "Integer", Min: bound(0)},
	"ScaleOutCooldown": PropertySchema{Type: "Integer", Min: bound(0)},
}
