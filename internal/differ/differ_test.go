package differ

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reactweather "github.com/mertsatargan/react-weather-cdk"
)

func alarmTemplate(threshold any) *reactweather.Template {
	return &reactweather.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]reactweather.ResourceDef{
			"AlertTopic": {Type: "AWS::SNS::Topic"},
			"CpuHighAlarm": {
				Type: "AWS::CloudWatch::Alarm",
				Properties: map[string]any{
					"Threshold":         threshold,
					"EvaluationPeriods": int64(2),
					"AlarmActions":      []any{map[string]any{"Ref": "AlertTopic"}},
					"Dimensions": []any{
						map[string]any{"Name": "ClusterName", "Value": map[string]any{"Ref": "WeatherCluster"}},
						map[string]any{"Name": "ServiceName", "Value": "web"},
					},
				},
			},
		},
		Outputs: map[string]reactweather.Output{
			"TopicArn": {Value: map[string]any{"Ref": "AlertTopic"}},
		},
	}
}

func TestCompare(t *testing.T) {
	t1 := &reactweather.Template{
		Resources: map[string]reactweather.ResourceDef{
			"Cluster": {Type: "AWS::ECS::Cluster"},
			"Topic":   {Type: "AWS::SNS::Topic"},
		},
	}
	t2 := &reactweather.Template{
		Resources: map[string]reactweather.ResourceDef{
			"Cluster":  {Type: "AWS::ECS::Cluster", Properties: map[string]any{"ClusterName": "weather"}},
			"LogGroup": {Type: "AWS::Logs::LogGroup"},
		},
	}

	result, err := Compare(t1, t2, Options{})
	require.NoError(t, err)

	assert.Equal(t, reactweather.DiffSummary{Added: 1, Removed: 1, Modified: 1, Total: 3}, result.Summary)
	assert.Equal(t, "LogGroup", result.Diff.Added[0].Resource)
	assert.Equal(t, "Topic", result.Diff.Removed[0].Resource)
	assert.Equal(t, []string{"ClusterName added"}, result.Diff.Modified[0].Changes)
	assert.False(t, result.Empty())
}

func TestCompare_Identical(t *testing.T) {
	result, err := Compare(alarmTemplate(float64(1)), alarmTemplate(float64(1)), Options{})
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestCompare_NumericTypesNormalized(t *testing.T) {
	// int64 built in memory and float64 parsed from JSON are the same value.
	result, err := Compare(alarmTemplate(int64(70)), alarmTemplate(float64(70)), Options{})
	require.NoError(t, err)
	assert.True(t, result.Empty(), "%+v", result.Diff)
}

func TestCompare_Empty(t *testing.T) {
	result, err := Compare(&reactweather.Template{}, &reactweather.Template{}, Options{})
	require.NoError(t, err)
	assert.Zero(t, result.Summary.Total)
}

func TestCompare_TypeChange(t *testing.T) {
	t1 := &reactweather.Template{Resources: map[string]reactweather.ResourceDef{"Res": {Type: "AWS::SNS::Topic"}}}
	t2 := &reactweather.Template{Resources: map[string]reactweather.ResourceDef{"Res": {Type: "AWS::SNS::Subscription"}}}

	result, err := Compare(t1, t2, Options{})
	require.NoError(t, err)
	require.Len(t, result.Diff.Modified, 1)
	assert.Contains(t, result.Diff.Modified[0].Changes, "Type changed: AWS::SNS::Topic → AWS::SNS::Subscription")
}

func TestCompare_ResourceAttributes(t *testing.T) {
	t1 := &reactweather.Template{Resources: map[string]reactweather.ResourceDef{
		"LogGroup": {Type: "AWS::Logs::LogGroup", DeletionPolicy: "Retain", UpdateReplacePolicy: "Retain", DependsOn: []string{"A", "B"}},
	}}
	t2 := &reactweather.Template{Resources: map[string]reactweather.ResourceDef{
		"LogGroup": {Type: "AWS::Logs::LogGroup", DeletionPolicy: "Delete", UpdateReplacePolicy: "Retain", DependsOn: []string{"B", "A"}},
	}}

	result, err := Compare(t1, t2, Options{})
	require.NoError(t, err)
	require.Len(t, result.Diff.Modified, 1)
	assert.Equal(t, []string{`DeletionPolicy changed: "Retain" → "Delete"`}, result.Diff.Modified[0].Changes)
}

func TestCompare_NestedPaths(t *testing.T) {
	t1 := &reactweather.Template{Resources: map[string]reactweather.ResourceDef{
		"Policy": {Type: "AWS::ApplicationAutoScaling::ScalingPolicy", Properties: map[string]any{
			"TargetTrackingScalingPolicyConfiguration": map[string]any{"TargetValue": 70, "ScaleInCooldown": 120},
		}},
	}}
	t2 := &reactweather.Template{Resources: map[string]reactweather.ResourceDef{
		"Policy": {Type: "AWS::ApplicationAutoScaling::ScalingPolicy", Properties: map[string]any{
			"TargetTrackingScalingPolicyConfiguration": map[string]any{"TargetValue": 50, "ScaleOutCooldown": 60},
		}},
	}}

	result, err := Compare(t1, t2, Options{})
	require.NoError(t, err)
	require.Len(t, result.Diff.Modified, 1)
	assert.Equal(t, []string{
		"TargetTrackingScalingPolicyConfiguration.ScaleInCooldown removed",
		"TargetTrackingScalingPolicyConfiguration.ScaleOutCooldown added",
		"TargetTrackingScalingPolicyConfiguration.TargetValue modified",
	}, result.Diff.Modified[0].Changes)
}

func TestCompare_IntrinsicsCompareWhole(t *testing.T) {
	t1 := &reactweather.Template{Resources: map[string]reactweather.ResourceDef{
		"Sub": {Type: "AWS::SNS::Subscription", Properties: map[string]any{"TopicArn": map[string]any{"Ref": "TopicA"}}},
	}}
	t2 := &reactweather.Template{Resources: map[string]reactweather.ResourceDef{
		"Sub": {Type: "AWS::SNS::Subscription", Properties: map[string]any{"TopicArn": map[string]any{"Ref": "TopicB"}}},
	}}

	result, err := Compare(t1, t2, Options{})
	require.NoError(t, err)
	require.Len(t, result.Diff.Modified, 1)
	assert.Equal(t, []string{"TopicArn modified"}, result.Diff.Modified[0].Changes)
}

func TestCompare_IgnoreOrder(t *testing.T) {
	reordered := alarmTemplate(float64(1))
	props := reordered.Resources["CpuHighAlarm"].Properties
	dims := props["Dimensions"].([]any)
	props["Dimensions"] = []any{dims[1], dims[0]}

	result, err := Compare(alarmTemplate(float64(1)), reordered, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Modified)

	result, err = Compare(alarmTemplate(float64(1)), reordered, Options{IgnoreOrder: true})
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestCompare_Outputs(t *testing.T) {
	next := alarmTemplate(float64(1))
	next.Outputs = map[string]reactweather.Output{
		"TopicArn":   {Value: map[string]any{"Ref": "AlertTopic"}, Export: &reactweather.Export{Name: "weather-topic"}},
		"ServiceURL": {Value: "http://example"},
	}

	result, err := Compare(alarmTemplate(float64(1)), next, Options{})
	require.NoError(t, err)
	assert.Zero(t, result.Summary.Total)
	assert.Equal(t, []string{"ServiceURL added", "TopicArn modified"}, result.Diff.Outputs)
	assert.False(t, result.Empty())
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "a.json")
	yamlPath := filepath.Join(dir, "b.yaml")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {"WeatherCluster": {"Type": "AWS::ECS::Cluster"}}
}`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(`AWSTemplateFormatVersion: "2010-09-09"
Resources:
  WeatherCluster:
    Type: AWS::ECS::Cluster
  AlertTopic:
    Type: AWS::SNS::Topic
    Properties:
      DisplayName: Weather App Alerts
`), 0o644))

	result, err := CompareFiles(jsonPath, yamlPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Added)
	assert.Equal(t, "AlertTopic", result.Diff.Added[0].Resource)

	_, err = CompareFiles(filepath.Join(dir, "missing.json"), yamlPath, Options{})
	assert.Error(t, err)
}

func TestParseTemplate_Invalid(t *testing.T) {
	_, err := ParseTemplate([]byte("{not: [valid"))
	assert.Error(t, err)
}

func TestUnified(t *testing.T) {
	out, err := Unified(alarmTemplate(float64(1)), alarmTemplate(float64(5)), "deployed", "synthesized")
	require.NoError(t, err)
	assert.Contains(t, out, "--- deployed")
	assert.Contains(t, out, "+++ synthesized")
	assert.Contains(t, out, `-        "Threshold": 1`)
	assert.Contains(t, out, `+        "Threshold": 5`)

	out, err = Unified(alarmTemplate(float64(1)), alarmTemplate(float64(1)), "a", "b")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEqualStringSlices(t *testing.T) {
	tests := []struct {
		a, b []string
		want bool
	}{
		{nil, nil, true},
		{[]string{}, []string{}, true},
		{[]string{"a", "b"}, []string{"a", "b"}, true},
		{[]string{"a"}, []string{"b"}, false},
		{[]string{"a"}, []string{"a", "b"}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, equalStringSlices(tt.a, tt.b), "%v vs %v", tt.a, tt.b)
	}
}

func TestParseTemplate_YAMLShortForms(t *testing.T) {
	short := []byte(`AWSTemplateFormatVersion: "2010-09-09"
Resources:
  Subnet:
    Type: AWS::EC2::Subnet
    Properties:
      VpcId: !Ref WeatherVPC
      AvailabilityZone: !Select [0, !GetAZs ""]
      CidrBlock: !Select [0, !Cidr [!GetAtt WeatherVPC.CidrBlock, 4, 8]]
  Service:
    Type: AWS::ECS::Service
    DependsOn: Listener
    Properties:
      Cluster: !Ref WeatherCluster
      ServiceName: !Sub "${AWS::StackName}-web"
      Url: !Join ["", ["http://", !GetAtt [Alb, DNSName]]]
Outputs:
  Dns:
    Value: !GetAtt Alb.DNSName
`)
	long := []byte(`{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {
    "Subnet": {
      "Type": "AWS::EC2::Subnet",
      "Properties": {
        "VpcId": {"Ref": "WeatherVPC"},
        "AvailabilityZone": {"Fn::Select": [0, {"Fn::GetAZs": ""}]},
        "CidrBlock": {"Fn::Select": [0, {"Fn::Cidr": [{"Fn::GetAtt": ["WeatherVPC", "CidrBlock"]}, 4, 8]}]}
      }
    },
    "Service": {
      "Type": "AWS::ECS::Service",
      "DependsOn": ["Listener"],
      "Properties": {
        "Cluster": {"Ref": "WeatherCluster"},
        "ServiceName": {"Fn::Sub": "${AWS::StackName}-web"},
        "Url": {"Fn::Join": ["", ["http://", {"Fn::GetAtt": ["Alb", "DNSName"]}]]}
      }
    }
  },
  "Outputs": {"Dns": {"Value": {"Fn::GetAtt": ["Alb", "DNSName"]}}}
}`)

	fromYAML, err := ParseTemplate(short)
	require.NoError(t, err)
	fromJSON, err := ParseTemplate(long)
	require.NoError(t, err)

	subnet := fromYAML.Resources["Subnet"].Properties
	assert.Equal(t, map[string]any{"Ref": "WeatherVPC"}, subnet["VpcId"])
	assert.Equal(t, map[string]any{"Fn::Select": []any{float64(0), map[string]any{"Fn::GetAZs": ""}}}, subnet["AvailabilityZone"])
	assert.Equal(t, []string{"Listener"}, fromYAML.Resources["Service"].DependsOn)
	assert.Equal(t, map[string]any{"Fn::GetAtt": []any{"Alb", "DNSName"}}, fromYAML.Outputs["Dns"].Value)

	result, err := Compare(fromJSON, fromYAML, Options{})
	require.NoError(t, err)
	assert.True(t, result.Empty(), "short and long forms should be equivalent: %+v", result.Diff)
}

func TestParseTemplate_YAMLPlainValues(t *testing.T) {
	tmpl, err := ParseTemplate([]byte(`Resources:
  Alarm:
    Type: AWS::CloudWatch::Alarm
    Properties:
      Threshold: 70.5
      EvaluationPeriods: 2
      ActionsEnabled: true
      Note: "!Ref is plain text here"
`))
	require.NoError(t, err)

	props := tmpl.Resources["Alarm"].Properties
	assert.Equal(t, 70.5, props["Threshold"])
	assert.EqualValues(t, 2, props["EvaluationPeriods"])
	assert.Equal(t, true, props["ActionsEnabled"])
	assert.Equal(t, "!Ref is plain text here", props["Note"])

	empty, err := ParseTemplate([]byte(""))
	require.NoError(t, err)
	assert.NotNil(t, empty.Resources)
}
