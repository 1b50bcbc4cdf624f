// Package intrinsics provides CloudFormation intrinsic functions.
//
// The core intrinsic types are re-exported from cloudformation-schema-go:
//
//	Ref{LogicalName: "WeatherVPC"} → {"Ref": "WeatherVPC"}
//	Sub{String: "${AWS::StackName}-alb"} → {"Fn::Sub": "${AWS::StackName}-alb"}
//	Join{Delimiter: "/", Values: []any{"service", cluster, name}} → {"Fn::Join": ["/", [...]]}
//
// Pseudo-parameters:
//
//	AWS_REGION, AWS_ACCOUNT_ID, AWS_STACK_NAME, etc.
package intrinsics

import (
	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// Select represents a CloudFormation Fn::Select intrinsic function.
	Select = intrinsics.Select

	// GetAZs represents a CloudFormation Fn::GetAZs intrinsic function.
	GetAZs = intrinsics.GetAZs

	// Cidr represents a CloudFormation Fn::Cidr intrinsic function.
	Cidr = intrinsics.Cidr

	// Tag represents a CloudFormation resource tag.
	Tag = intrinsics.Tag
)

// Zone selects the availability zone at index from the current region.
func Zone(index int) Select {
	return Select{Index: index, List: GetAZs{}}
}

// SubnetCidr selects the index-th block of count equally sized blocks carved
// out of ipBlock, each with cidrBits host bits.
func SubnetCidr(ipBlock any, index, count, cidrBits int) Select {
	return Select{Index: index, List: Cidr{IPBlock: ipBlock, Count: count, CidrBits: cidrBits}}
}

// NameTag returns the conventional Name tag scoped to the stack.
func NameTag(suffix string) Tag {
	return Tag{Key: "Name", Value: Sub{String: "${AWS::StackName}/" + suffix}}
}
