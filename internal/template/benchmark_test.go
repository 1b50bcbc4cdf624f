package template

import (
	"fmt"
	"testing"

	"github.com/mertsatargan/react-weather-cdk/intrinsics"
	"github.com/mertsatargan/react-weather-cdk/resources/ec2"
)

// BenchmarkBuild benchmarks building templates with chains of subnets.
func BenchmarkBuild(b *testing.B) {
	for _, size := range []int{10, 50, 100} {
		b.Run(fmt.Sprintf("resources_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				builder := chainBuilder(b, size)
				if _, err := builder.Build(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkToJSON benchmarks JSON serialization.
func BenchmarkToJSON(b *testing.B) {
	tmpl, err := chainBuilder(b, 50).Build()
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ToJSON(tmpl); err != nil {
			b.Fatal(err)
		}
	}
}

func chainBuilder(tb testing.TB, size int) *Builder {
	tb.Helper()
	builder := NewBuilder("bench")
	if err := builder.Add("VPC", Entry{Resource: ec2.VPC{CidrBlock: "10.0.0.0/16"}}); err != nil {
		tb.Fatal(err)
	}
	for i := 0; i < size; i++ {
		err := builder.Add(fmt.Sprintf("Subnet%d", i), Entry{Resource: ec2.Subnet{
			VpcId:     intrinsics.Ref{LogicalName: "VPC"},
			CidrBlock: intrinsics.SubnetCidr(intrinsics.GetAtt{LogicalName: "VPC", Attribute: "CidrBlock"}, i, size, 4),
		}})
		if err != nil {
			tb.Fatal(err)
		}
	}
	return builder
}
