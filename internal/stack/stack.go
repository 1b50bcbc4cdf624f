// Package stack declares the weather app deployment topology.
//
// A Stack collects typed CloudFormation resources under logical IDs:
//
//	s := stack.New("InfraStack", "weather app", logger)
//	vpc := s.Add("WeatherVPC", ec2.VPC{CidrBlock: "10.0.0.0/16"})
//	s.Add("WeatherVPCIGW", ec2.InternetGateway{})
//	tmpl, err := s.Synth()
//
// Build assembles the whole topology from a config.Config.
package stack

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/internal/logging"
	"github.com/mertsatargan/react-weather-cdk/internal/template"
	"github.com/mertsatargan/react-weather-cdk/intrinsics"
)

// Handle refers to a resource declared in a Stack.
type Handle struct {
	LogicalID string
}

// Ref returns {"Ref": LogicalID}.
func (h Handle) Ref() intrinsics.Ref {
	return intrinsics.Ref{LogicalName: h.LogicalID}
}

// GetAtt returns {"Fn::GetAtt": [LogicalID, attr]}.
func (h Handle) GetAtt(attr string) reactweather.AttrRef {
	return reactweather.AttrRef{Resource: h.LogicalID, Attribute: attr}
}

// Option sets a resource attribute on a declared resource.
type Option func(*template.Entry)

// WithDeletionPolicy sets DeletionPolicy and UpdateReplacePolicy.
func WithDeletionPolicy(policy string) Option {
	return func(e *template.Entry) {
		e.DeletionPolicy = policy
		e.UpdateReplacePolicy = policy
	}
}

// WithDependsOn adds explicit DependsOn entries.
func WithDependsOn(handles ...Handle) Option {
	return func(e *template.Entry) {
		for _, h := range handles {
			e.DependsOn = append(e.DependsOn, h.LogicalID)
		}
	}
}

// Stack is a named deployable unit of resource declarations.
type Stack struct {
	Name string

	builder *template.Builder
	ids     []string
	errs    []error
	logger  *zap.Logger
}

// New creates an empty stack.
func New(name, description string, logger *zap.Logger) *Stack {
	return &Stack{
		Name:    name,
		builder: template.NewBuilder(description),
		logger:  logging.OrNop(logger).With(zap.String("stack", name)),
	}
}

// Add declares a resource. Declaration errors are collected and reported
// by Synth so that components can be composed without error plumbing.
func (s *Stack) Add(logicalID string, r reactweather.Resource, opts ...Option) Handle {
	entry := template.Entry{Resource: r}
	for _, opt := range opts {
		opt(&entry)
	}
	if err := s.builder.Add(logicalID, entry); err != nil {
		s.errs = append(s.errs, err)
		return Handle{LogicalID: logicalID}
	}
	s.ids = append(s.ids, logicalID)
	s.logger.Debug("declared resource",
		zap.String("logicalId", logicalID),
		zap.String("type", r.ResourceType()))
	return Handle{LogicalID: logicalID}
}

// AddOutput declares a stack output exported as <stack>-<name>.
func (s *Stack) AddOutput(name, description string, value any) {
	s.builder.AddOutput(name, reactweather.Output{
		Description: description,
		Value:       value,
		Export:      &reactweather.Export{Name: intrinsics.Sub{String: "${AWS::StackName}-" + name}},
	})
}

// LogicalIDs returns the declared logical IDs in declaration order.
func (s *Stack) LogicalIDs() []string {
	return append([]string(nil), s.ids...)
}

// Err reports the declaration errors collected so far.
func (s *Stack) Err() error {
	return errors.Join(s.errs...)
}

// Synth produces the CloudFormation template.
func (s *Stack) Synth() (*reactweather.Template, error) {
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("stack %s: %w", s.Name, err)
	}
	tmpl, err := s.builder.Build()
	if err != nil {
		return nil, fmt.Errorf("stack %s: %w", s.Name, err)
	}
	s.logger.Debug("synthesized template",
		zap.Int("resources", len(tmpl.Resources)),
		zap.Int("outputs", len(tmpl.Outputs)))
	return tmpl, nil
}
