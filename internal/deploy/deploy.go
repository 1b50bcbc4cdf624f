// Package deploy hands synthesized templates to AWS CloudFormation.
package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/internal/logging"
)

// MaxTemplateBody is the largest template CloudFormation accepts inline.
const MaxTemplateBody = 51200

// API is the subset of the CloudFormation client used here.
type API interface {
	cloudformation.DescribeStacksAPIClient
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
	DescribeStackEvents(ctx context.Context, params *cloudformation.DescribeStackEventsInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error)
}

// IdentityAPI is the subset of the STS client used here.
type IdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Client deploys and tears down stacks.
type Client struct {
	cfn    API
	sts    IdentityAPI
	logger *zap.Logger

	// Timeout bounds each wait for a stack operation to settle.
	Timeout time.Duration
	// PollInterval and MaxPollInterval bound the delay between status polls.
	PollInterval    time.Duration
	MaxPollInterval time.Duration
	// Tags are applied to the stack and propagated to its resources.
	Tags map[string]string
}

// New loads the default AWS configuration for region and returns a client.
func New(ctx context.Context, region string, logger *zap.Logger) (*Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithAPI(cloudformation.NewFromConfig(cfg), sts.NewFromConfig(cfg), logger), nil
}

// NewWithAPI returns a client over the given service clients.
func NewWithAPI(cfn API, identity IdentityAPI, logger *zap.Logger) *Client {
	return &Client{
		cfn:             cfn,
		sts:             identity,
		logger:          logging.OrNop(logger).With(zap.String("component", "deploy")),
		Timeout:         30 * time.Minute,
		PollInterval:    5 * time.Second,
		MaxPollInterval: 30 * time.Second,
	}
}

// Result describes a finished deployment.
type Result struct {
	StackID   string
	Status    string
	Created   bool
	NoChanges bool
	Outputs   map[string]string
}

// StackStatus is the current state of a stack.
type StackStatus struct {
	Name    string
	ID      string
	Exists  bool
	Status  string
	Reason  string
	Outputs map[string]string
}

// Identity is the AWS principal the client acts as.
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// Deploy creates the stack, or updates it when it already exists, and waits
// for the operation to finish. A stack left in ROLLBACK_COMPLETE by a failed
// first create is deleted and created again.
func (c *Client) Deploy(ctx context.Context, stackName string, t *reactweather.Template) (*Result, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	if len(body) > MaxTemplateBody {
		return nil, fmt.Errorf("template is %d bytes; CloudFormation accepts at most %d inline", len(body), MaxTemplateBody)
	}

	current, err := c.Status(ctx, stackName)
	if err != nil {
		return nil, err
	}

	if current.Exists && current.Status == string(types.StackStatusRollbackComplete) {
		c.logger.Warn("stack is in ROLLBACK_COMPLETE, replacing it", zap.String("stack", stackName))
		if err := c.Destroy(ctx, stackName); err != nil {
			return nil, err
		}
		current.Exists = false
	}

	result := &Result{}
	started := time.Now()

	if !current.Exists {
		c.logger.Info("creating stack", zap.String("stack", stackName), zap.Int("bytes", len(body)))
		out, err := c.cfn.CreateStack(ctx, &cloudformation.CreateStackInput{
			StackName:    aws.String(stackName),
			TemplateBody: aws.String(string(body)),
			Capabilities: []types.Capability{types.CapabilityCapabilityIam},
			Tags:         c.tags(),
		})
		if err != nil {
			return nil, fmt.Errorf("create stack %s: %w", stackName, err)
		}
		result.Created = true
		result.StackID = aws.ToString(out.StackId)

		waiter := cloudformation.NewStackCreateCompleteWaiter(c.cfn, func(o *cloudformation.StackCreateCompleteWaiterOptions) {
			o.MinDelay, o.MaxDelay = c.PollInterval, c.MaxPollInterval
		})
		if err := waiter.Wait(ctx, describe(stackName), c.Timeout); err != nil {
			return nil, c.failure(ctx, stackName, "create", started, err)
		}
	} else {
		c.logger.Info("updating stack", zap.String("stack", stackName), zap.String("status", current.Status))
		out, err := c.cfn.UpdateStack(ctx, &cloudformation.UpdateStackInput{
			StackName:    aws.String(stackName),
			TemplateBody: aws.String(string(body)),
			Capabilities: []types.Capability{types.CapabilityCapabilityIam},
			Tags:         c.tags(),
		})
		switch {
		case isNoUpdates(err):
			c.logger.Info("stack is up to date", zap.String("stack", stackName))
			return &Result{
				StackID:   current.ID,
				Status:    current.Status,
				NoChanges: true,
				Outputs:   current.Outputs,
			}, nil
		case err != nil:
			return nil, fmt.Errorf("update stack %s: %w", stackName, err)
		}
		result.StackID = aws.ToString(out.StackId)

		waiter := cloudformation.NewStackUpdateCompleteWaiter(c.cfn, func(o *cloudformation.StackUpdateCompleteWaiterOptions) {
			o.MinDelay, o.MaxDelay = c.PollInterval, c.MaxPollInterval
		})
		if err := waiter.Wait(ctx, describe(stackName), c.Timeout); err != nil {
			return nil, c.failure(ctx, stackName, "update", started, err)
		}
	}

	final, err := c.Status(ctx, stackName)
	if err != nil {
		return nil, err
	}
	result.Status = final.Status
	result.Outputs = final.Outputs
	if result.StackID == "" {
		result.StackID = final.ID
	}

	c.logger.Info("stack deployed",
		zap.String("stack", stackName),
		zap.String("status", result.Status),
		zap.Duration("elapsed", time.Since(started)))
	return result, nil
}

// Destroy deletes the stack and waits for deletion. Deleting a stack that
// does not exist is not an error.
func (c *Client) Destroy(ctx context.Context, stackName string) error {
	current, err := c.Status(ctx, stackName)
	if err != nil {
		return err
	}
	if !current.Exists {
		c.logger.Info("stack does not exist, nothing to delete", zap.String("stack", stackName))
		return nil
	}

	started := time.Now()
	c.logger.Info("deleting stack", zap.String("stack", stackName))
	if _, err := c.cfn.DeleteStack(ctx, &cloudformation.DeleteStackInput{StackName: aws.String(stackName)}); err != nil {
		return fmt.Errorf("delete stack %s: %w", stackName, err)
	}

	waiter := cloudformation.NewStackDeleteCompleteWaiter(c.cfn, func(o *cloudformation.StackDeleteCompleteWaiterOptions) {
		o.MinDelay, o.MaxDelay = c.PollInterval, c.MaxPollInterval
	})
	// Wait on the stack ID: deleted stacks remain describable by ID only.
	name := stackName
	if current.ID != "" {
		name = current.ID
	}
	if err := waiter.Wait(ctx, describe(name), c.Timeout); err != nil {
		return c.failure(ctx, name, "delete", started, err)
	}

	c.logger.Info("stack deleted", zap.String("stack", stackName), zap.Duration("elapsed", time.Since(started)))
	return nil
}

// Status describes the stack. A missing stack is reported with Exists false.
func (c *Client) Status(ctx context.Context, stackName string) (*StackStatus, error) {
	out, err := c.cfn.DescribeStacks(ctx, describe(stackName))
	if isNotFound(err) {
		return &StackStatus{Name: stackName}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("describe stack %s: %w", stackName, err)
	}
	if len(out.Stacks) == 0 {
		return &StackStatus{Name: stackName}, nil
	}

	stack := out.Stacks[0]
	status := &StackStatus{
		Name:    aws.ToString(stack.StackName),
		ID:      aws.ToString(stack.StackId),
		Exists:  stack.StackStatus != types.StackStatusDeleteComplete,
		Status:  string(stack.StackStatus),
		Reason:  aws.ToString(stack.StackStatusReason),
		Outputs: make(map[string]string, len(stack.Outputs)),
	}
	for _, o := range stack.Outputs {
		status.Outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}
	return status, nil
}

// CallerIdentity returns the principal the client's credentials resolve to.
func (c *Client) CallerIdentity(ctx context.Context) (*Identity, error) {
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("get caller identity: %w", err)
	}
	return &Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}

// failure wraps a waiter error with the stack's failed resource events.
func (c *Client) failure(ctx context.Context, stackName, op string, since time.Time, waitErr error) error {
	reasons := c.failedEvents(ctx, stackName, since)
	for _, r := range reasons {
		c.logger.Error("resource failed", zap.String("stack", stackName), zap.String("event", r))
	}
	if len(reasons) == 0 {
		return fmt.Errorf("%s stack %s: %w", op, stackName, waitErr)
	}
	return fmt.Errorf("%s stack %s: %w\n  %s", op, stackName, waitErr, strings.Join(reasons, "\n  "))
}

func (c *Client) failedEvents(ctx context.Context, stackName string, since time.Time) []string {
	out, err := c.cfn.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{StackName: aws.String(stackName)})
	if err != nil {
		c.logger.Debug("describe stack events", zap.Error(err))
		return nil
	}

	var reasons []string
	for _, e := range out.StackEvents {
		if e.Timestamp != nil && e.Timestamp.Before(since) {
			continue
		}
		if !strings.HasSuffix(string(e.ResourceStatus), "_FAILED") {
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s %s: %s",
			aws.ToString(e.LogicalResourceId), e.ResourceStatus, aws.ToString(e.ResourceStatusReason)))
	}
	return reasons
}

func (c *Client) tags() []types.Tag {
	if len(c.Tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Tags))
	for k := range c.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(c.Tags[k])})
	}
	return tags
}

func describe(stackName string) *cloudformation.DescribeStacksInput {
	return &cloudformation.DescribeStacksInput{StackName: aws.String(stackName)}
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) &&
		apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}

func isNoUpdates(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) &&
		apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "No updates are to be performed")
}
