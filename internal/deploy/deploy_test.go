package deploy

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reactweather "github.com/mertsatargan/react-weather-cdk"
)

const stackID = "arn:aws:cloudformation:us-east-1:123456789012:stack/InfraStack/abc"

// fakeCFN is an in-memory CloudFormation holding at most one stack. Each
// DescribeStacks call advances the stack through the queued statuses.
type fakeCFN struct {
	mu      sync.Mutex
	stack   *types.Stack
	pending []types.StackStatus

	afterCreate []types.StackStatus
	afterUpdate []types.StackStatus
	afterDelete []types.StackStatus

	updateErr   error
	describeErr error
	events      []types.StackEvent

	calls  []string
	create *cloudformation.CreateStackInput
	update *cloudformation.UpdateStackInput
}

func notFound(name string) error {
	return &smithy.GenericAPIError{Code: "ValidationError", Message: "Stack with id " + name + " does not exist"}
}

func (f *fakeCFN) DescribeStacks(_ context.Context, in *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "DescribeStacks")

	if f.describeErr != nil {
		return nil, f.describeErr
	}
	if f.stack == nil {
		return nil, notFound(aws.ToString(in.StackName))
	}
	if len(f.pending) > 0 {
		f.stack.StackStatus = f.pending[0]
		f.pending = f.pending[1:]
	}
	stack := *f.stack
	return &cloudformation.DescribeStacksOutput{Stacks: []types.Stack{stack}}, nil
}

func (f *fakeCFN) CreateStack(_ context.Context, in *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "CreateStack")
	f.create = in

	f.stack = &types.Stack{
		StackName:   in.StackName,
		StackId:     aws.String(stackID),
		StackStatus: types.StackStatusCreateInProgress,
		Outputs: []types.Output{
			{OutputKey: aws.String("WeatherServiceServiceURL"), OutputValue: aws.String("http://weather.example")},
		},
	}
	f.pending = append([]types.StackStatus(nil), f.afterCreate...)
	return &cloudformation.CreateStackOutput{StackId: aws.String(stackID)}, nil
}

func (f *fakeCFN) UpdateStack(_ context.Context, in *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "UpdateStack")
	f.update = in

	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.stack.StackStatus = types.StackStatusUpdateInProgress
	f.pending = append([]types.StackStatus(nil), f.afterUpdate...)
	return &cloudformation.UpdateStackOutput{StackId: f.stack.StackId}, nil
}

func (f *fakeCFN) DeleteStack(_ context.Context, _ *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "DeleteStack")

	f.stack.StackStatus = types.StackStatusDeleteInProgress
	f.pending = append([]types.StackStatus(nil), f.afterDelete...)
	return &cloudformation.DeleteStackOutput{}, nil
}

func (f *fakeCFN) DescribeStackEvents(_ context.Context, _ *cloudformation.DescribeStackEventsInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &cloudformation.DescribeStackEventsOutput{StackEvents: f.events}, nil
}

func (f *fakeCFN) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

type fakeSTS struct {
	err error
}

func (f fakeSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:user/deployer"),
		UserId:  aws.String("AIDAEXAMPLE"),
	}, nil
}

func newClient(cfn *fakeCFN) *Client {
	c := NewWithAPI(cfn, fakeSTS{}, nil)
	c.Timeout = 5 * time.Second
	c.PollInterval = time.Millisecond
	c.MaxPollInterval = 2 * time.Millisecond
	return c
}

func sampleTemplate() *reactweather.Template {
	return &reactweather.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]reactweather.ResourceDef{
			"AlertTopic": {Type: "AWS::SNS::Topic", Properties: map[string]any{"DisplayName": "Weather App Alerts"}},
		},
	}
}

func existing(status types.StackStatus) *types.Stack {
	return &types.Stack{
		StackName:   aws.String("InfraStack"),
		StackId:     aws.String(stackID),
		StackStatus: status,
	}
}

func TestDeploy_Create(t *testing.T) {
	cfn := &fakeCFN{afterCreate: []types.StackStatus{types.StackStatusCreateInProgress, types.StackStatusCreateComplete}}
	client := newClient(cfn)
	client.Tags = map[string]string{"project": "weather", "env": "dev"}

	result, err := client.Deploy(context.Background(), "InfraStack", sampleTemplate())
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.False(t, result.NoChanges)
	assert.Equal(t, stackID, result.StackID)
	assert.Equal(t, "CREATE_COMPLETE", result.Status)
	assert.Equal(t, "http://weather.example", result.Outputs["WeatherServiceServiceURL"])

	require.NotNil(t, cfn.create)
	assert.Equal(t, []types.Capability{types.CapabilityCapabilityIam}, cfn.create.Capabilities)
	assert.Contains(t, aws.ToString(cfn.create.TemplateBody), `"AlertTopic"`)
	require.Len(t, cfn.create.Tags, 2)
	assert.Equal(t, "env", aws.ToString(cfn.create.Tags[0].Key))
	assert.False(t, cfn.called("UpdateStack"))
}

func TestDeploy_Update(t *testing.T) {
	cfn := &fakeCFN{
		stack:       existing(types.StackStatusCreateComplete),
		afterUpdate: []types.StackStatus{types.StackStatusUpdateInProgress, types.StackStatusUpdateComplete},
	}

	result, err := newClient(cfn).Deploy(context.Background(), "InfraStack", sampleTemplate())
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Equal(t, "UPDATE_COMPLETE", result.Status)
	require.NotNil(t, cfn.update)
	assert.Equal(t, []types.Capability{types.CapabilityCapabilityIam}, cfn.update.Capabilities)
	assert.False(t, cfn.called("CreateStack"))
}

func TestDeploy_NoUpdates(t *testing.T) {
	cfn := &fakeCFN{
		stack:     existing(types.StackStatusUpdateComplete),
		updateErr: &smithy.GenericAPIError{Code: "ValidationError", Message: "No updates are to be performed."},
	}

	result, err := newClient(cfn).Deploy(context.Background(), "InfraStack", sampleTemplate())
	require.NoError(t, err)
	assert.True(t, result.NoChanges)
	assert.Equal(t, "UPDATE_COMPLETE", result.Status)
	assert.Equal(t, stackID, result.StackID)
}

func TestDeploy_UpdateErrorSurfaced(t *testing.T) {
	cfn := &fakeCFN{
		stack:     existing(types.StackStatusCreateComplete),
		updateErr: &smithy.GenericAPIError{Code: "InsufficientCapabilitiesException", Message: "Requires capabilities : [CAPABILITY_NAMED_IAM]"},
	}

	_, err := newClient(cfn).Deploy(context.Background(), "InfraStack", sampleTemplate())
	require.Error(t, err)

	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "InsufficientCapabilitiesException", apiErr.ErrorCode())
	assert.Contains(t, err.Error(), "update stack InfraStack")
}

func TestDeploy_CreateFailureReportsEvents(t *testing.T) {
	cfn := &fakeCFN{
		afterCreate: []types.StackStatus{types.StackStatusRollbackInProgress, types.StackStatusRollbackComplete},
		events: []types.StackEvent{
			{
				LogicalResourceId:    aws.String("WeatherServiceService"),
				ResourceStatus:       types.ResourceStatusCreateFailed,
				ResourceStatusReason: aws.String("Resource handler returned message: \"Invalid request\""),
			},
			{
				LogicalResourceId: aws.String("WeatherCluster"),
				ResourceStatus:    types.ResourceStatusCreateComplete,
			},
			{
				LogicalResourceId: aws.String("OldFailure"),
				ResourceStatus:    types.ResourceStatusUpdateFailed,
				Timestamp:         aws.Time(time.Now().Add(-24 * time.Hour)),
			},
		},
	}

	_, err := newClient(cfn).Deploy(context.Background(), "InfraStack", sampleTemplate())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create stack InfraStack")
	assert.Contains(t, err.Error(), "WeatherServiceService CREATE_FAILED")
	assert.NotContains(t, err.Error(), "WeatherCluster")
	assert.NotContains(t, err.Error(), "OldFailure")
}

func TestDeploy_ReplacesRolledBackStack(t *testing.T) {
	cfn := &fakeCFN{
		stack:       existing(types.StackStatusRollbackComplete),
		afterDelete: []types.StackStatus{types.StackStatusDeleteComplete},
		afterCreate: []types.StackStatus{types.StackStatusCreateComplete},
	}

	result, err := newClient(cfn).Deploy(context.Background(), "InfraStack", sampleTemplate())
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.True(t, cfn.called("DeleteStack"))
	assert.True(t, cfn.called("CreateStack"))
}

func TestDeploy_TemplateTooLarge(t *testing.T) {
	tmpl := sampleTemplate()
	tmpl.Description = strings.Repeat("x", MaxTemplateBody)

	cfn := &fakeCFN{}
	_, err := newClient(cfn).Deploy(context.Background(), "InfraStack", tmpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 51200")
	assert.Empty(t, cfn.calls)
}

func TestDestroy(t *testing.T) {
	cfn := &fakeCFN{
		stack:       existing(types.StackStatusCreateComplete),
		afterDelete: []types.StackStatus{types.StackStatusDeleteInProgress, types.StackStatusDeleteComplete},
	}

	require.NoError(t, newClient(cfn).Destroy(context.Background(), "InfraStack"))
	assert.True(t, cfn.called("DeleteStack"))
}

func TestDestroy_Missing(t *testing.T) {
	cfn := &fakeCFN{}
	require.NoError(t, newClient(cfn).Destroy(context.Background(), "InfraStack"))
	assert.False(t, cfn.called("DeleteStack"))
}

func TestDestroy_Failure(t *testing.T) {
	cfn := &fakeCFN{
		stack:       existing(types.StackStatusCreateComplete),
		afterDelete: []types.StackStatus{types.StackStatusDeleteFailed},
	}

	err := newClient(cfn).Destroy(context.Background(), "InfraStack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete stack")
}

func TestStatus(t *testing.T) {
	status, err := newClient(&fakeCFN{}).Status(context.Background(), "InfraStack")
	require.NoError(t, err)
	assert.False(t, status.Exists)
	assert.Equal(t, "InfraStack", status.Name)

	status, err = newClient(&fakeCFN{stack: existing(types.StackStatusUpdateComplete)}).Status(context.Background(), "InfraStack")
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.Equal(t, "UPDATE_COMPLETE", status.Status)
	assert.Equal(t, stackID, status.ID)

	denied := &smithy.GenericAPIError{Code: "AccessDenied", Message: "not authorized"}
	_, err = newClient(&fakeCFN{describeErr: denied}).Status(context.Background(), "InfraStack")
	require.Error(t, err)
	assert.ErrorIs(t, err, denied)
}

func TestCallerIdentity(t *testing.T) {
	client := NewWithAPI(&fakeCFN{}, fakeSTS{}, nil)

	id, err := client.CallerIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123456789012", id.Account)
	assert.Equal(t, "arn:aws:iam::123456789012:user/deployer", id.ARN)

	client = NewWithAPI(&fakeCFN{}, fakeSTS{err: errors.New("no credentials")}, nil)
	_, err = client.CallerIdentity(context.Background())
	assert.ErrorContains(t, err, "no credentials")
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, isNotFound(notFound("InfraStack")))
	assert.False(t, isNotFound(errors.New("Stack with id x does not exist")))
	assert.False(t, isNotFound(nil))
	assert.True(t, isNoUpdates(&smithy.GenericAPIError{Code: "ValidationError", Message: "No updates are to be performed."}))
	assert.False(t, isNoUpdates(&smithy.GenericAPIError{Code: "ValidationError", Message: "Template format error"}))
}
