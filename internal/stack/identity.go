package stack

import (
	"github.com/mertsatargan/react-weather-cdk/intrinsics"
	"github.com/mertsatargan/react-weather-cdk/resources/iam"
	"github.com/mertsatargan/react-weather-cdk/resources/logs"
)

// ExecutionIdentity is the task execution role and the policies attached to it.
type ExecutionIdentity struct {
	Role     Handle
	Policies []Handle
}

// AddExecutionIdentity declares the role ECS assumes to pull the image and
// ship container logs. The registry grant lives in <id>DefaultPolicy; a log
// sink adds a separate <id>LogsPolicy scoped to that log group.
func AddExecutionIdentity(s *Stack, id string, spec ExecutionIdentitySpec, logSink *Handle) ExecutionIdentity {
	var managed []any
	for _, name := range spec.ManagedPolicies {
		managed = append(managed, intrinsics.ManagedPolicyARN(name))
	}

	role := s.Add(id, iam.Role{
		AssumeRolePolicyDocument: intrinsics.AssumeRolePolicy("ecs-tasks.amazonaws.com"),
		ManagedPolicyArns:        managed,
	})
	identity := ExecutionIdentity{Role: role}

	identity.Policies = append(identity.Policies, s.Add(id+"DefaultPolicy", iam.Policy{
		PolicyName: intrinsics.Sub{String: "${AWS::StackName}-" + id + "-registry"},
		PolicyDocument: intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
			Effect:   "Allow",
			Action:   intrinsics.Strings(spec.Actions),
			Resource: resourceScope(spec.Resources),
		}),
		Roles: intrinsics.Any(role.Ref()),
	}))

	if logSink != nil {
		identity.Policies = append(identity.Policies, s.Add(id+"LogsPolicy", iam.Policy{
			PolicyName: intrinsics.Sub{String: "${AWS::StackName}-" + id + "-logs"},
			PolicyDocument: intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
				Effect:   "Allow",
				Action:   intrinsics.Any("logs:CreateLogStream", "logs:PutLogEvents"),
				Resource: logSink.GetAtt(logs.AttrArn),
			}),
			Roles: intrinsics.Any(role.Ref()),
		}))
	}

	return identity
}

// resourceScope renders a single resource as a scalar, as IAM documents
// conventionally do for "*".
func resourceScope(resources []string) any {
	if len(resources) == 1 {
		return resources[0]
	}
	return intrinsics.Strings(resources)
}
