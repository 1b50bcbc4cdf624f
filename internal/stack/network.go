package stack

import (
	"fmt"

	"github.com/mertsatargan/react-weather-cdk/intrinsics"
	"github.com/mertsatargan/react-weather-cdk/resources/ec2"
)

// Network holds the handles other components attach to.
type Network struct {
	VPC            Handle
	PublicSubnets  []Handle
	PrivateSubnets []Handle
}

// subnetBits is the host bits of every carved subnet (/24 inside a /16).
const subnetBits = 8

// AddNetwork declares a VPC with one public and one private subnet per zone.
// Public subnets route to an internet gateway; private subnets route through
// NAT gateways placed in the public subnets.
func AddNetwork(s *Stack, id string, spec NetworkSpec) Network {
	vpc := s.Add(id, ec2.VPC{
		CidrBlock:          spec.CIDR,
		EnableDnsHostnames: true,
		EnableDnsSupport:   true,
		InstanceTenancy:    "default",
		Tags:               intrinsics.Any(intrinsics.NameTag(id)),
	})

	igw := s.Add(id+"IGW", ec2.InternetGateway{
		Tags: intrinsics.Any(intrinsics.NameTag(id)),
	})
	attachment := s.Add(id+"VPCGW", ec2.VPCGatewayAttachment{
		VpcId:             vpc.Ref(),
		InternetGatewayId: igw.Ref(),
	})

	net := Network{VPC: vpc}
	subnetCount := 2 * spec.MaxAZs
	var nats []Handle

	for i := 0; i < spec.MaxAZs; i++ {
		name := fmt.Sprintf("%sPublicSubnet%d", id, i+1)
		subnet := s.Add(name, ec2.Subnet{
			VpcId:               vpc.Ref(),
			CidrBlock:           intrinsics.SubnetCidr(vpc.GetAtt(ec2.AttrCidrBlock), i, subnetCount, subnetBits),
			AvailabilityZone:    intrinsics.Zone(i),
			MapPublicIpOnLaunch: true,
			Tags: intrinsics.Any(
				intrinsics.NameTag(name),
				intrinsics.Tag{Key: "subnet-type", Value: "Public"},
			),
		})
		table := routeTable(s, name, vpc, subnet)
		s.Add(name+"DefaultRoute", ec2.Route{
			RouteTableId:         table.Ref(),
			DestinationCidrBlock: "0.0.0.0/0",
			GatewayId:            igw.Ref(),
		}, WithDependsOn(attachment))

		if i < spec.NatGateways {
			eip := s.Add(name+"EIP", ec2.EIP{
				Domain: "vpc",
				Tags:   intrinsics.Any(intrinsics.NameTag(name)),
			})
			nat := s.Add(name+"NATGateway", ec2.NatGateway{
				AllocationId: eip.GetAtt(ec2.AttrAllocationId),
				SubnetId:     subnet.Ref(),
				Tags:         intrinsics.Any(intrinsics.NameTag(name)),
			}, WithDependsOn(attachment))
			nats = append(nats, nat)
		}
		net.PublicSubnets = append(net.PublicSubnets, subnet)
	}

	for i := 0; i < spec.MaxAZs; i++ {
		name := fmt.Sprintf("%sPrivateSubnet%d", id, i+1)
		subnet := s.Add(name, ec2.Subnet{
			VpcId:            vpc.Ref(),
			CidrBlock:        intrinsics.SubnetCidr(vpc.GetAtt(ec2.AttrCidrBlock), spec.MaxAZs+i, subnetCount, subnetBits),
			AvailabilityZone: intrinsics.Zone(i),
			Tags: intrinsics.Any(
				intrinsics.NameTag(name),
				intrinsics.Tag{Key: "subnet-type", Value: "Private"},
			),
		})
		table := routeTable(s, name, vpc, subnet)
		if len(nats) > 0 {
			s.Add(name+"DefaultRoute", ec2.Route{
				RouteTableId:         table.Ref(),
				DestinationCidrBlock: "0.0.0.0/0",
				NatGatewayId:         nats[i%len(nats)].Ref(),
			})
		}
		net.PrivateSubnets = append(net.PrivateSubnets, subnet)
	}

	return net
}

func routeTable(s *Stack, subnetID string, vpc, subnet Handle) Handle {
	table := s.Add(subnetID+"RouteTable", ec2.RouteTable{
		VpcId: vpc.Ref(),
		Tags:  intrinsics.Any(intrinsics.NameTag(subnetID)),
	})
	s.Add(subnetID+"RouteTableAssociation", ec2.SubnetRouteTableAssociation{
		RouteTableId: table.Ref(),
		SubnetId:     subnet.Ref(),
	})
	return table
}

// Refs converts handles to a list of Ref intrinsics.
func Refs(handles []Handle) []any {
	out := make([]any, len(handles))
	for i, h := range handles {
		out[i] = h.Ref()
	}
	return out
}
