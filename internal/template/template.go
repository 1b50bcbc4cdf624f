// Package template provides CloudFormation template building from declared resources.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/internal/serialize"
)

// FormatVersion is the only CloudFormation template format version.
const FormatVersion = "2010-09-09"

// ErrDuplicateResource is returned when a logical name is declared twice.
var ErrDuplicateResource = errors.New("duplicate logical name")

// Entry is a declared resource together with its resource attributes.
type Entry struct {
	Resource            reactweather.Resource
	DependsOn           []string
	DeletionPolicy      string
	UpdateReplacePolicy string
}

// Builder constructs CloudFormation templates from declared resources.
type Builder struct {
	description string
	entries     map[string]Entry
	outputs     map[string]reactweather.Output
	deps        map[string][]string
	order       []string
}

// NewBuilder creates an empty template builder.
func NewBuilder(description string) *Builder {
	return &Builder{
		description: description,
		entries:     make(map[string]Entry),
		outputs:     make(map[string]reactweather.Output),
	}
}

// Add declares a resource under a logical name.
func (b *Builder) Add(name string, entry Entry) error {
	if name == "" {
		return errors.New("logical name must not be empty")
	}
	if entry.Resource == nil {
		return fmt.Errorf("%s: resource must not be nil", name)
	}
	if _, exists := b.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateResource, name)
	}
	b.entries[name] = entry
	return nil
}

// AddOutput declares a stack output.
func (b *Builder) AddOutput(name string, out reactweather.Output) {
	b.outputs[name] = out
}

// Order returns the resources in dependency order (leaves first) as computed
// by the last successful Build.
func (b *Builder) Order() []string {
	return append([]string(nil), b.order...)
}

// Build constructs the CloudFormation template.
func (b *Builder) Build() (*reactweather.Template, error) {
	template := &reactweather.Template{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              b.description,
		Resources:                make(map[string]reactweather.ResourceDef, len(b.entries)),
	}

	b.deps = make(map[string][]string, len(b.entries))
	for name, entry := range b.entries {
		props, err := serialize.Properties(entry.Resource)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}

		refs := serialize.References(props)
		for _, ref := range refs {
			if _, ok := b.entries[ref]; !ok {
				return nil, fmt.Errorf("%s: unresolved reference to %q", name, ref)
			}
		}
		for _, dep := range entry.DependsOn {
			if _, ok := b.entries[dep]; !ok {
				return nil, fmt.Errorf("%s: DependsOn names unknown resource %q", name, dep)
			}
		}
		b.deps[name] = mergeSorted(refs, entry.DependsOn)

		def := reactweather.ResourceDef{
			Type:                entry.Resource.ResourceType(),
			Properties:          props,
			DeletionPolicy:      entry.DeletionPolicy,
			UpdateReplacePolicy: entry.UpdateReplacePolicy,
		}
		if len(entry.DependsOn) > 0 {
			def.DependsOn = mergeSorted(nil, entry.DependsOn)
		}
		template.Resources[name] = def
	}

	order, err := b.topologicalSort()
	if err != nil {
		return nil, err
	}
	b.order = order

	if len(b.outputs) > 0 {
		template.Outputs = make(map[string]reactweather.Output, len(b.outputs))
		for name, out := range b.outputs {
			serialized, err := serializeOutput(out)
			if err != nil {
				return nil, fmt.Errorf("serializing output %s: %w", name, err)
			}
			for _, ref := range serialize.References(serialized.Value) {
				if _, ok := b.entries[ref]; !ok {
					return nil, fmt.Errorf("output %s: unresolved reference to %q", name, ref)
				}
			}
			template.Outputs[name] = serialized
		}
	}

	return template, nil
}

// serializeOutput normalizes an output value to plain JSON-compatible data.
func serializeOutput(out reactweather.Output) (reactweather.Output, error) {
	value, err := normalize(out.Value)
	if err != nil {
		return out, err
	}
	out.Value = value
	if out.Export != nil {
		name, err := normalize(out.Export.Name)
		if err != nil {
			return out, err
		}
		out.Export = &reactweather.Export{Name: name}
	}
	return out, nil
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func mergeSorted(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

// topologicalSort returns resources in dependency order.
func (b *Builder) topologicalSort() ([]string, error) {
	return sortByDependencies(b.deps)
}

// Dependencies derives, for every resource in a template, the resources it
// depends on through references or DependsOn.
func Dependencies(t *reactweather.Template) map[string][]string {
	deps := make(map[string][]string, len(t.Resources))
	for name, def := range t.Resources {
		var known []string
		for _, ref := range serialize.References(def.Properties) {
			if _, ok := t.Resources[ref]; ok {
				known = append(known, ref)
			}
		}
		deps[name] = mergeSorted(known, def.DependsOn)
	}
	return deps
}

// Order returns the resources of a template in dependency order.
func Order(t *reactweather.Template) ([]string, error) {
	return sortByDependencies(Dependencies(t))
}

func sortByDependencies(deps map[string][]string) ([]string, error) {
	dependents := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range deps {
		dependents[name] = nil
		inDegree[name] = 0
	}

	for name, list := range deps {
		for _, dep := range list {
			if _, exists := deps[dep]; exists {
				dependents[dep] = append(dependents[dep], name)
				inDegree[name]++
			}
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range dependents[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(deps) {
		return nil, detectCycle(deps)
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func detectCycle(deps map[string][]string) error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range deps[node] {
			if _, exists := deps[dep]; !exists {
				continue
			}
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !visited[name] && findCycle(name) {
			break
		}
	}

	if len(cycle) > 0 {
		return fmt.Errorf("circular dependency detected: %s", strings.Join(cycle, " → "))
	}
	return errors.New("circular dependency detected")
}

// ToJSON serializes the template to JSON.
func ToJSON(t *reactweather.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *reactweather.Template) ([]byte, error) {
	return yaml.Marshal(t)
}

// Render serializes the template in the named format ("json" or "yaml").
func Render(t *reactweather.Template, format string) ([]byte, error) {
	switch format {
	case "json", "":
		return ToJSON(t)
	case "yaml", "yml":
		return ToYAML(t)
	default:
		return nil, fmt.Errorf("unknown format: %s (use 'json' or 'yaml')", format)
	}
}
