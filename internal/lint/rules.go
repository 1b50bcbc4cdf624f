package lint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	reactweather "github.com/mertsatargan/react-weather-cdk"
)

// AllRules returns every audit rule with default settings.
func AllRules() []Rule {
	return []Rule{
		WildcardResource{},
		AlarmWithoutActions{},
		LogGroupWithoutRetention{},
		InternetFacingLoadBalancer{},
		LowAlarmThreshold{Min: 5},
		SingleZoneSubnets{},
	}
}

// WildcardResource flags IAM statements scoped to every resource.
type WildcardResource struct{}

func (WildcardResource) ID() string         { return "RW001" }
func (WildcardResource) Severity() Severity { return SeverityWarning }
func (WildcardResource) Description() string {
	return "IAM policy statement grants on resource \"*\""
}

func (r WildcardResource) Check(t *reactweather.Template) []reactweather.LintIssue {
	var issues []reactweather.LintIssue
	for _, name := range sortedNames(t) {
		def := t.Resources[name]

		var docs []any
		switch def.Type {
		case "AWS::IAM::Policy", "AWS::IAM::ManagedPolicy":
			docs = append(docs, def.Properties["PolicyDocument"])
		case "AWS::IAM::Role":
			for _, p := range asList(def.Properties["Policies"]) {
				if m, ok := p.(map[string]any); ok {
					docs = append(docs, m["PolicyDocument"])
				}
			}
		default:
			continue
		}

		for _, doc := range docs {
			m, ok := doc.(map[string]any)
			if !ok {
				continue
			}
			for _, s := range asList(m["Statement"]) {
				stmt, ok := s.(map[string]any)
				if !ok || stmt["Effect"] == "Deny" {
					continue
				}
				if containsWildcard(stmt["Resource"]) {
					actions := strings.Join(asStrings(stmt["Action"]), ", ")
					issues = append(issues, issue(r, name,
						fmt.Sprintf("statement allows %s on all resources; scope it to specific ARNs or record why it must stay broad", actions)))
				}
			}
		}
	}
	return issues
}

// AlarmWithoutActions flags alarms that notify nobody.
type AlarmWithoutActions struct{}

func (AlarmWithoutActions) ID() string          { return "RW002" }
func (AlarmWithoutActions) Severity() Severity  { return SeverityWarning }
func (AlarmWithoutActions) Description() string { return "Alarm has no actions" }

func (r AlarmWithoutActions) Check(t *reactweather.Template) []reactweather.LintIssue {
	var issues []reactweather.LintIssue
	for _, name := range t.ResourcesOfType("AWS::CloudWatch::Alarm") {
		if len(asList(t.Resources[name].Properties["AlarmActions"])) == 0 {
			issues = append(issues, issue(r, name, "alarm has no AlarmActions; it will change state silently"))
		}
	}
	return issues
}

// LogGroupWithoutRetention flags log groups that keep events forever.
type LogGroupWithoutRetention struct{}

func (LogGroupWithoutRetention) ID() string          { return "RW003" }
func (LogGroupWithoutRetention) Severity() Severity  { return SeverityWarning }
func (LogGroupWithoutRetention) Description() string { return "Log group has no retention" }

func (r LogGroupWithoutRetention) Check(t *reactweather.Template) []reactweather.LintIssue {
	var issues []reactweather.LintIssue
	for _, name := range t.ResourcesOfType("AWS::Logs::LogGroup") {
		if _, ok := t.Resources[name].Properties["RetentionInDays"]; !ok {
			issues = append(issues, issue(r, name, "log group has no RetentionInDays; events are kept indefinitely"))
		}
	}
	return issues
}

// InternetFacingLoadBalancer reports public load balancers.
type InternetFacingLoadBalancer struct{}

func (InternetFacingLoadBalancer) ID() string          { return "RW004" }
func (InternetFacingLoadBalancer) Severity() Severity  { return SeverityInfo }
func (InternetFacingLoadBalancer) Description() string { return "Load balancer is internet-facing" }

func (r InternetFacingLoadBalancer) Check(t *reactweather.Template) []reactweather.LintIssue {
	var issues []reactweather.LintIssue
	for _, name := range t.ResourcesOfType("AWS::ElasticLoadBalancingV2::LoadBalancer") {
		scheme, ok := t.Resources[name].Properties["Scheme"]
		// CloudFormation defaults the scheme to internet-facing.
		if !ok || scheme == "internet-facing" {
			issues = append(issues, issue(r, name, "load balancer is reachable from the internet"))
		}
	}
	return issues
}

// LowAlarmThreshold reports utilization alarms that fire at near-idle load.
type LowAlarmThreshold struct {
	Min float64
}

func (LowAlarmThreshold) ID() string         { return "RW005" }
func (LowAlarmThreshold) Severity() Severity { return SeverityInfo }
func (LowAlarmThreshold) Description() string {
	return "Utilization alarm threshold is suspiciously low"
}

func (r LowAlarmThreshold) Check(t *reactweather.Template) []reactweather.LintIssue {
	var issues []reactweather.LintIssue
	for _, name := range t.ResourcesOfType("AWS::CloudWatch::Alarm") {
		props := t.Resources[name].Properties
		metric, _ := props["MetricName"].(string)
		if !strings.HasSuffix(metric, "Utilization") {
			continue
		}
		threshold, ok := number(props["Threshold"])
		if !ok || threshold >= r.Min {
			continue
		}
		issues = append(issues, issue(r, name,
			fmt.Sprintf("%s threshold %g%% is below %g%%; expect the alarm to fire under normal load", metric, threshold, r.Min)))
	}
	return issues
}

// SingleZoneSubnets flags networks that cannot survive a zone outage.
type SingleZoneSubnets struct{}

func (SingleZoneSubnets) ID() string         { return "RW006" }
func (SingleZoneSubnets) Severity() Severity { return SeverityError }
func (SingleZoneSubnets) Description() string {
	return "Subnets span fewer than two availability zones"
}

func (r SingleZoneSubnets) Check(t *reactweather.Template) []reactweather.LintIssue {
	subnets := t.ResourcesOfType("AWS::EC2::Subnet")
	if len(subnets) == 0 {
		return nil
	}

	zones := make(map[string]bool)
	for _, name := range subnets {
		zone, ok := t.Resources[name].Properties["AvailabilityZone"]
		if !ok {
			continue
		}
		key, err := json.Marshal(normalizeNumbers(zone))
		if err != nil {
			continue
		}
		zones[string(key)] = true
	}

	if len(zones) >= 2 {
		return nil
	}
	return []reactweather.LintIssue{issue(r, subnets[0],
		fmt.Sprintf("%d subnets span %d availability zone(s); at least 2 are required", len(subnets), len(zones)))}
}

func sortedNames(t *reactweather.Template) []string {
	names := make([]string, 0, len(t.Resources))
	for name := range t.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// asList treats a scalar as a one-element list, as IAM does.
func asList(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	default:
		return []any{val}
	}
}

func asStrings(v any) []string {
	var out []string
	for _, item := range asList(v) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func containsWildcard(v any) bool {
	for _, s := range asStrings(v) {
		if s == "*" {
			return true
		}
	}
	return false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// normalizeNumbers makes int and float zone indexes compare equal.
func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeNumbers(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeNumbers(item)
		}
		return out
	default:
		if f, ok := number(val); ok {
			return f
		}
		return val
	}
}
