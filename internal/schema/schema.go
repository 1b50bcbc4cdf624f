// Package schema provides offline CloudFormation schema validation.
// It checks synthesized resources against the schemas of the resource types
// the weather app topology uses.
package schema

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	reactweather "github.com/mertsatargan/react-weather-cdk"
)

// Options configures schema validation.
type Options struct {
	// Strict reports properties the schema does not know as warnings.
	Strict bool
}

// Result contains schema validation results.
type Result struct {
	Valid    bool
	Errors   []reactweather.SchemaError
	Warnings []reactweather.SchemaError
}

// ValidateTemplate validates a CloudFormation template against known schemas.
// Findings are sorted by resource and property.
func ValidateTemplate(template *reactweather.Template, opts Options) *Result {
	result := &Result{Valid: true}

	for name, resource := range template.Resources {
		errs, warnings := validateResource(name, resource, opts)
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warnings...)
	}

	sortErrors(result.Errors)
	sortErrors(result.Warnings)
	result.Valid = len(result.Errors) == 0
	return result
}

func sortErrors(errs []reactweather.SchemaError) {
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Resource != errs[j].Resource {
			return errs[i].Resource < errs[j].Resource
		}
		return errs[i].Property < errs[j].Property
	})
}

// validateResource validates a single resource.
func validateResource(name string, resource reactweather.ResourceDef, opts Options) ([]reactweather.SchemaError, []reactweather.SchemaError) {
	var errs, warnings []reactweather.SchemaError

	if !isValidResourceType(resource.Type) {
		errs = append(errs, reactweather.SchemaError{
			Resource: name,
			Property: "Type",
			Message:  fmt.Sprintf("invalid resource type format: %s", resource.Type),
		})
	}

	for _, policy := range []struct{ attr, value string }{
		{"DeletionPolicy", resource.DeletionPolicy},
		{"UpdateReplacePolicy", resource.UpdateReplacePolicy},
	} {
		if policy.value != "" && !slices.Contains(deletionPolicies, policy.value) {
			errs = append(errs, reactweather.SchemaError{
				Resource: name,
				Property: policy.attr,
				Message:  fmt.Sprintf("value %q not in allowed values: %v", policy.value, deletionPolicies),
			})
		}
	}

	schema, ok := resourceSchemas[resource.Type]
	if !ok {
		// CloudFormation has far more types than this table covers.
		warnings = append(warnings, reactweather.SchemaError{
			Resource: name,
			Property: "Type",
			Message:  fmt.Sprintf("unknown resource type: %s (schema not available for validation)", resource.Type),
		})
		return errs, warnings
	}

	for _, required := range schema.Required {
		if _, exists := resource.Properties[required]; !exists {
			errs = append(errs, reactweather.SchemaError{
				Resource: name,
				Property: required,
				Message:  fmt.Sprintf("missing required property: %s", required),
			})
		}
	}

	for propName, propValue := range resource.Properties {
		propSchema, ok := schema.Properties[propName]
		if !ok {
			if opts.Strict {
				warnings = append(warnings, reactweather.SchemaError{
					Resource: name,
					Property: propName,
					Message:  fmt.Sprintf("unknown property: %s", propName),
				})
			}
			continue
		}

		errs = append(errs, validateProperty(name, propName, propValue, propSchema)...)

		nested, ok := propValue.(map[string]any)
		for key, sub := range schema.Nested[propName] {
			if v, present := nested[key]; ok && present {
				errs = append(errs, validateProperty(name, propName+"."+key, v, sub)...)
			}
		}
	}

	return errs, warnings
}

var deletionPolicies = []string{"Delete", "Retain", "RetainExceptOnCreate", "Snapshot"}

// isValidResourceType checks if a resource type has valid format.
func isValidResourceType(resourceType string) bool {
	// AWS::Service::Resource or Custom::*
	if strings.HasPrefix(resourceType, "Custom::") {
		return true
	}
	parts := strings.Split(resourceType, "::")
	if len(parts) != 3 {
		return false
	}
	return parts[0] == "AWS"
}

// validateProperty validates a property value against its schema.
func validateProperty(resource, property string, value any, schema PropertySchema) []reactweather.SchemaError {
	var errs []reactweather.SchemaError
	fail := func(format string, args ...any) {
		errs = append(errs, reactweather.SchemaError{
			Resource: resource,
			Property: property,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if isIntrinsic(value) {
		return nil
	}

	if !isValidType(value, schema.Type) {
		fail("expected type %s", schema.Type)
		return errs
	}

	if len(schema.AllowedValues) > 0 {
		if strVal, ok := value.(string); ok && !slices.Contains(schema.AllowedValues, strVal) {
			fail("value %q not in allowed values: %v", strVal, schema.AllowedValues)
		}
	}

	if n, ok := number(value); ok {
		if schema.Min != nil && n < *schema.Min {
			fail("value %g below minimum %g", n, *schema.Min)
		}
		if schema.Max != nil && n > *schema.Max {
			fail("value %g above maximum %g", n, *schema.Max)
		}
	}

	return errs
}

// isIntrinsic reports whether value is a Ref or Fn:: call, whose result is
// only known at deploy time.
func isIntrinsic(value any) bool {
	m, ok := value.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	for key := range m {
		if strings.HasPrefix(key, "Fn::") || key == "Ref" {
			return true
		}
	}
	return false
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// isValidType checks if a value matches the expected type.
func isValidType(value any, expectedType string) bool {
	switch expectedType {
	case "String":
		_, ok := value.(string)
		return ok
	case "Integer", "Double":
		_, ok := number(value)
		return ok
	case "Boolean":
		_, ok := value.(bool)
		return ok
	case "List":
		_, ok := value.([]any)
		return ok
	case "Map":
		_, ok := value.(map[string]any)
		return ok
	case "Json":
		return true
	default:
		return true
	}
}

// ResourceSchema defines the schema for a resource type.
type ResourceSchema struct {
	Required   []string
	Properties map[string]PropertySchema
	// Nested bounds fields of object-valued properties.
	Nested map[string]map[string]PropertySchema
}

// PropertySchema defines the schema for a property.
type PropertySchema struct {
	Type          string
	AllowedValues []string
	Min, Max      *float64
}

// Known reports whether a schema is available for the resource type.
func Known(resourceType string) bool {
	_, ok := resourceSchemas[resourceType]
	return ok
}
