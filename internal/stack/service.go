package stack

import (
	"strconv"

	"github.com/mertsatargan/react-weather-cdk/intrinsics"
	"github.com/mertsatargan/react-weather-cdk/resources/ec2"
	"github.com/mertsatargan/react-weather-cdk/resources/ecs"
	elbv2 "github.com/mertsatargan/react-weather-cdk/resources/elasticloadbalancingv2"
	"github.com/mertsatargan/react-weather-cdk/resources/iam"
)

// Service is the load-balanced Fargate service and its supporting resources.
type Service struct {
	Service        Handle
	TaskDefinition Handle
	LoadBalancer   Handle
	TargetGroup    Handle
	Listener       Handle
	Identity       ExecutionIdentity
}

const listenerPort = 80

// AddService declares an application load balancer in front of a Fargate
// service running in the cluster's private subnets. The service owns its
// execution identity.
func AddService(s *Stack, id string, spec ServiceSpec, cluster Cluster, logSink *Handle) Service {
	net := cluster.Network
	scheme := "internal"
	lbSubnets := net.PrivateSubnets
	if spec.Public {
		scheme = "internet-facing"
		lbSubnets = net.PublicSubnets
	}

	lbGroup := s.Add(id+"LBSecurityGroup", ec2.SecurityGroup{
		GroupDescription: "Load balancer for " + id,
		VpcId:            net.VPC.Ref(),
		SecurityGroupIngress: intrinsics.Any(ec2.SecurityGroup_Ingress{
			IpProtocol:  "tcp",
			FromPort:    listenerPort,
			ToPort:      listenerPort,
			CidrIp:      ingressCIDR(spec.Public),
			Description: "HTTP to load balancer",
		}),
		SecurityGroupEgress: intrinsics.Any(ec2.SecurityGroup_Egress{
			IpProtocol: "-1",
			CidrIp:     "0.0.0.0/0",
		}),
	})

	lb := s.Add(id+"LB", elbv2.LoadBalancer{
		Scheme:         scheme,
		Type:           "application",
		Subnets:        Refs(lbSubnets),
		SecurityGroups: intrinsics.Any(lbGroup.GetAtt(ec2.AttrGroupId)),
		LoadBalancerAttributes: intrinsics.Any(elbv2.LoadBalancer_LoadBalancerAttribute{
			Key:   "deletion_protection.enabled",
			Value: "false",
		}),
	}, WithDependsOn(publicRoutes(net)...))

	targetGroup := s.Add(id+"LBPublicListenerECSGroup", elbv2.TargetGroup{
		Port:            listenerPort,
		Protocol:        "HTTP",
		TargetType:      "ip",
		VpcId:           net.VPC.Ref(),
		HealthCheckPath: "/",
		TargetGroupAttributes: intrinsics.Any(elbv2.TargetGroup_TargetGroupAttribute{
			Key:   "stickiness.enabled",
			Value: "false",
		}),
	})

	listener := s.Add(id+"LBPublicListener", elbv2.Listener{
		LoadBalancerArn: lb.Ref(),
		Port:            listenerPort,
		Protocol:        "HTTP",
		DefaultActions: intrinsics.Any(elbv2.Listener_Action{
			Type:           "forward",
			TargetGroupArn: targetGroup.Ref(),
		}),
	})

	taskRole := s.Add(id+"TaskDefTaskRole", iam.Role{
		AssumeRolePolicyDocument: intrinsics.AssumeRolePolicy("ecs-tasks.amazonaws.com"),
	})
	identity := AddExecutionIdentity(s, id+"TaskDefExecutionRole", spec.Identity, logSink)

	container := ecs.TaskDefinition_ContainerDefinition{
		Name:      spec.ContainerName,
		Image:     spec.Image,
		Essential: true,
		PortMappings: intrinsics.Any(ecs.TaskDefinition_PortMapping{
			ContainerPort: spec.ContainerPort,
			Protocol:      "tcp",
		}),
	}
	if spec.LogDriver != nil && logSink != nil {
		container.LogConfiguration = ecs.TaskDefinition_LogConfiguration{
			LogDriver: "awslogs",
			Options: map[string]any{
				"awslogs-group":         logSink.Ref(),
				"awslogs-stream-prefix": spec.LogDriver.StreamPrefix,
				"awslogs-region":        intrinsics.AWS_REGION,
			},
		}
	}

	taskDef := s.Add(id+"TaskDef", ecs.TaskDefinition{
		Family:                  intrinsics.Sub{String: "${AWS::StackName}-" + id},
		Cpu:                     strconv.Itoa(spec.CPU),
		Memory:                  strconv.Itoa(spec.MemoryMiB),
		NetworkMode:             "awsvpc",
		RequiresCompatibilities: intrinsics.Any("FARGATE"),
		ExecutionRoleArn:        identity.Role.GetAtt(iam.AttrArn),
		TaskRoleArn:             taskRole.GetAtt(iam.AttrArn),
		ContainerDefinitions:    intrinsics.Any(container),
	})

	serviceGroup := s.Add(id+"ServiceSecurityGroup", ec2.SecurityGroup{
		GroupDescription: "Tasks of " + id,
		VpcId:            net.VPC.Ref(),
		SecurityGroupEgress: intrinsics.Any(ec2.SecurityGroup_Egress{
			IpProtocol: "-1",
			CidrIp:     "0.0.0.0/0",
		}),
	})
	s.Add(id+"ServiceSecurityGroupFromLB", ec2.SecurityGroupIngress{
		GroupId:               serviceGroup.GetAtt(ec2.AttrGroupId),
		IpProtocol:            "tcp",
		FromPort:              spec.ContainerPort,
		ToPort:                spec.ContainerPort,
		SourceSecurityGroupId: lbGroup.GetAtt(ec2.AttrGroupId),
		Description:           "Load balancer to target",
	})

	service := s.Add(id+"Service", ecs.Service{
		Cluster:        cluster.Ref(),
		TaskDefinition: taskDef.Ref(),
		DesiredCount:   spec.DesiredCount,
		LaunchType:     "FARGATE",
		NetworkConfiguration: ecs.Service_NetworkConfiguration{
			AwsvpcConfiguration: ecs.Service_AwsVpcConfiguration{
				AssignPublicIp: "DISABLED",
				Subnets:        Refs(net.PrivateSubnets),
				SecurityGroups: intrinsics.Any(serviceGroup.GetAtt(ec2.AttrGroupId)),
			},
		},
		LoadBalancers: intrinsics.Any(ecs.Service_LoadBalancer{
			ContainerName:  spec.ContainerName,
			ContainerPort:  spec.ContainerPort,
			TargetGroupArn: targetGroup.Ref(),
		}),
		HealthCheckGracePeriodSeconds: 60,
		DeploymentConfiguration: ecs.Service_DeploymentConfiguration{
			MaximumPercent:        200,
			MinimumHealthyPercent: 50,
			DeploymentCircuitBreaker: ecs.Service_DeploymentCircuitBreaker{
				Enable:   true,
				Rollback: true,
			},
		},
		EnableECSManagedTags: true,
		PropagateTags:        "SERVICE",
	}, WithDependsOn(append([]Handle{listener}, identity.Policies...)...))

	s.AddOutput(id+"LoadBalancerDNS", "DNS name of the load balancer", lb.GetAtt(elbv2.AttrDNSName))
	s.AddOutput(id+"ServiceURL", "URL of the service", intrinsics.Join{
		Delimiter: "",
		Values:    intrinsics.Any("http://", lb.GetAtt(elbv2.AttrDNSName)),
	})

	return Service{
		Service:        service,
		TaskDefinition: taskDef,
		LoadBalancer:   lb,
		TargetGroup:    targetGroup,
		Listener:       listener,
		Identity:       identity,
	}
}

func ingressCIDR(public bool) string {
	if public {
		return "0.0.0.0/0"
	}
	return "10.0.0.0/8"
}

// publicRoutes are the internet routes an internet-facing load balancer
// needs before it can be created.
func publicRoutes(net Network) []Handle {
	routes := make([]Handle, len(net.PublicSubnets))
	for i, subnet := range net.PublicSubnets {
		routes[i] = Handle{LogicalID: subnet.LogicalID + "DefaultRoute"}
	}
	return routes
}
