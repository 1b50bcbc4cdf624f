package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/intrinsics"
	"github.com/mertsatargan/react-weather-cdk/resources/cloudwatch"
	"github.com/mertsatargan/react-weather-cdk/resources/ecs"
)

func TestProperties_SimpleStruct(t *testing.T) {
	props, err := Properties(ecs.Cluster{ClusterName: "weather"})
	require.NoError(t, err)

	assert.Equal(t, "weather", props["ClusterName"])
	assert.NotContains(t, props, "Tags")
	assert.NotContains(t, props, "ClusterSettings")
}

func TestProperties_NestedStructsAndIntrinsics(t *testing.T) {
	task := ecs.TaskDefinition{
		Cpu:              "256",
		ExecutionRoleArn: reactweather.AttrRef{Resource: "ExecutionRole", Attribute: "Arn"},
		ContainerDefinitions: []any{
			ecs.TaskDefinition_ContainerDefinition{
				Name:      "web",
				Essential: true,
				PortMappings: []any{
					ecs.TaskDefinition_PortMapping{ContainerPort: 80, Protocol: "tcp"},
				},
				LogConfiguration: ecs.TaskDefinition_LogConfiguration{
					LogDriver: "awslogs",
					Options: map[string]any{
						"awslogs-group":  intrinsics.Ref{LogicalName: "LogGroup"},
						"awslogs-region": intrinsics.AWS_REGION,
					},
				},
			},
		},
	}

	props, err := Properties(task)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"Fn::GetAtt": []any{"ExecutionRole", "Arn"}}, props["ExecutionRoleArn"])

	containers := props["ContainerDefinitions"].([]any)
	require.Len(t, containers, 1)
	container := containers[0].(map[string]any)
	assert.Equal(t, true, container["Essential"])

	ports := container["PortMappings"].([]any)
	assert.EqualValues(t, 80, ports[0].(map[string]any)["ContainerPort"])

	logCfg := container["LogConfiguration"].(map[string]any)
	opts := logCfg["Options"].(map[string]any)
	assert.Equal(t, map[string]any{"Ref": "LogGroup"}, opts["awslogs-group"])
	assert.Equal(t, map[string]any{"Ref": "AWS::Region"}, opts["awslogs-region"])
}

func TestProperties_OmitsZeroValues(t *testing.T) {
	props, err := Properties(ecs.TaskDefinition_ContainerDefinition{Name: "web"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"Name": "web"}, props)
}

func TestProperties_Pointer(t *testing.T) {
	props, err := Properties(&cloudwatch.Alarm{Threshold: 70})
	require.NoError(t, err)
	assert.EqualValues(t, 70, props["Threshold"])
}

func TestProperties_NonStruct(t *testing.T) {
	props, err := Properties("not a struct")
	require.NoError(t, err)
	assert.Nil(t, props)
}

func TestReferences(t *testing.T) {
	props := map[string]any{
		"Cluster":        map[string]any{"Ref": "WeatherCluster"},
		"TaskDefinition": map[string]any{"Ref": "TaskDef"},
		"Region":         map[string]any{"Ref": "AWS::Region"},
		"LoadBalancers": []any{
			map[string]any{
				"TargetGroupArn": map[string]any{"Ref": "TargetGroup"},
			},
		},
		"Role": map[string]any{"Fn::GetAtt": []any{"ExecutionRole", "Arn"}},
		"Name": map[string]any{"Fn::Sub": "${AWS::StackName}-${WeatherCluster}-${LB.DNSName}-${!Literal}"},
	}

	assert.Equal(t,
		[]string{"ExecutionRole", "LB", "TargetGroup", "TaskDef", "WeatherCluster"},
		References(props))
}

func TestReferences_SubWithVariables(t *testing.T) {
	sub := map[string]any{
		"Fn::Sub": []any{
			"service/${Cluster}/${Service}",
			map[string]any{
				"Service": map[string]any{"Fn::GetAtt": []any{"WeatherService", "Name"}},
			},
		},
	}

	assert.Equal(t, []string{"Cluster", "WeatherService"}, References(sub))
}

func TestReferences_None(t *testing.T) {
	assert.Empty(t, References(map[string]any{"CidrBlock": "10.0.0.0/16"}))
	assert.Empty(t, References(nil))
}

func TestAttributeReferences(t *testing.T) {
	props := map[string]any{
		"Cluster":          map[string]any{"Ref": "WeatherCluster"},
		"ExecutionRoleArn": map[string]any{"Fn::GetAtt": []any{"ExecutionRole", "Arn"}},
		"Dimensions": []any{
			map[string]any{"Value": map[string]any{"Fn::GetAtt": "WeatherService.Name"}},
		},
	}
	assert.Equal(t, []string{"ExecutionRole", "WeatherService"}, AttributeReferences(props))
}
