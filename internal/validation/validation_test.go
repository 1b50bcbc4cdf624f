package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lex00/cfn-lint-go/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reactweather "github.com/mertsatargan/react-weather-cdk"
)

func TestCfnLintResult_TotalIssues(t *testing.T) {
	tests := []struct {
		name     string
		result   CfnLintResult
		expected int
	}{
		{name: "empty result", result: CfnLintResult{}, expected: 0},
		{name: "errors only", result: CfnLintResult{Errors: []string{"e1", "e2"}}, expected: 2},
		{
			name: "mixed issues",
			result: CfnLintResult{
				Errors:        []string{"e1"},
				Warnings:      []string{"w1", "w2"},
				Informational: []string{"i1"},
			},
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.TotalIssues())
		})
	}
}

func TestFormatMatch(t *testing.T) {
	tests := []struct {
		name     string
		match    lint.Match
		expected string
	}{
		{
			name: "simple match",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "E3012"},
				Message: "Property has the wrong type",
			},
			expected: "E3012: Property has the wrong type",
		},
		{
			name: "match with path",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "W3005"},
				Message: "Obsolete DependsOn",
				Location: lint.MatchLocation{
					Path: []any{"Resources", "WeatherServiceService", "DependsOn", 0},
				},
			},
			expected: "W3005: Obsolete DependsOn (at Resources/WeatherServiceService/DependsOn/0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatMatch(tt.match))
		})
	}
}

func TestCategorize(t *testing.T) {
	result := categorize([]lint.Match{
		{Rule: lint.MatchRule{ID: "E1"}, Level: "Error", Message: "bad"},
		{Rule: lint.MatchRule{ID: "W1"}, Level: "Warning", Message: "meh"},
		{Rule: lint.MatchRule{ID: "I1"}, Level: "Informational", Message: "fyi"},
	})

	assert.False(t, result.Passed)
	assert.Equal(t, []string{"E1: bad"}, result.Errors)
	assert.Equal(t, []string{"W1: meh"}, result.Warnings)
	assert.Equal(t, []string{"I1: fyi"}, result.Informational)

	result = categorize([]lint.Match{{Rule: lint.MatchRule{ID: "W1"}, Level: "Warning"}})
	assert.True(t, result.Passed)

	result = categorize(nil)
	assert.True(t, result.Passed)
	assert.Zero(t, result.TotalIssues())
}

func TestRunCfnLint_FileNotFound(t *testing.T) {
	result, err := RunCfnLint("/nonexistent/template.yaml")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Template file not found")
}

func TestRunCfnLint_ValidTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`AWSTemplateFormatVersion: '2010-09-09'
Description: Weather app alerts
Resources:
  AlertTopic:
    Type: AWS::SNS::Topic
    Properties:
      DisplayName: Weather App Alerts
`), 0o644))

	result, err := RunCfnLint(path)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestLintTemplate(t *testing.T) {
	result, err := LintTemplate(&reactweather.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]reactweather.ResourceDef{
			"AlertTopic": {Type: "AWS::SNS::Topic", Properties: map[string]any{"DisplayName": "Weather App Alerts"}},
		},
	})
	require.NoError(t, err)
	assert.NotNil(t, result)
}
