// Package lint audits synthesized templates for risky or surprising topology.
//
// Rules:
//
//	RW001: IAM policy statement grants on resource "*"
//	RW002: Alarm has no actions
//	RW003: Log group has no retention
//	RW004: Load balancer is internet-facing
//	RW005: Utilization alarm threshold is suspiciously low
//	RW006: Subnets span fewer than two availability zones
package lint

import (
	"sort"

	reactweather "github.com/mertsatargan/react-weather-cdk"
)

// Severity of a finding.
type Severity string

// Severities, most severe first.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule is a single template audit.
type Rule interface {
	ID() string
	Description() string
	Severity() Severity
	Check(t *reactweather.Template) []reactweather.LintIssue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
	// DisabledRules are skipped even when enabled.
	DisabledRules []string
	// MinThreshold for the LowAlarmThreshold rule, in percent.
	MinThreshold float64
}

// Lint runs the configured rules over t. The result succeeds when no
// error-severity issue is found; warnings and info are advisory.
func Lint(t *reactweather.Template, opts Options) reactweather.LintResult {
	var issues []reactweather.LintIssue
	for _, rule := range getRules(opts) {
		issues = append(issues, rule.Check(t)...)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Rule != issues[j].Rule {
			return issues[i].Rule < issues[j].Rule
		}
		return issues[i].Resource < issues[j].Resource
	})

	success := true
	for _, issue := range issues {
		if issue.Severity == string(SeverityError) {
			success = false
		}
	}

	return reactweather.LintResult{Success: success, Issues: issues}
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	if opts.MinThreshold > 0 {
		for i, r := range all {
			if low, ok := r.(LowAlarmThreshold); ok {
				low.Min = opts.MinThreshold
				all[i] = low
			}
		}
	}

	enabled := toSet(opts.EnabledRules)
	disabled := toSet(opts.DisabledRules)

	var filtered []Rule
	for _, r := range all {
		if len(enabled) > 0 && !enabled[r.ID()] {
			continue
		}
		if disabled[r.ID()] {
			continue
		}
		filtered = append(filtered, r)
	}

	return filtered
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func issue(r Rule, resource, message string) reactweather.LintIssue {
	return reactweather.LintIssue{
		Resource: resource,
		Severity: string(r.Severity()),
		Message:  message,
		Rule:     r.ID(),
	}
}
