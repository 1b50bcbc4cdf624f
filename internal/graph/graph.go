// Package graph generates DOT and Mermaid format dependency graphs from synthesized templates.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	reactweather "github.com/mertsatargan/react-weather-cdk"
	"github.com/mertsatargan/react-weather-cdk/internal/serialize"
	"github.com/mertsatargan/react-weather-cdk/internal/template"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from templates.
type Generator struct {
	// IncludeOutputs adds a node per stack output.
	IncludeOutputs bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByType groups resources by AWS service.
	ClusterByType bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(t *reactweather.Template, w io.Writer) error {
	graph := g.buildGraph(t)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(t *reactweather.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(t, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildGraph creates the dot.Graph structure. Edges point from a resource
// to the resources it depends on: GetAtt edges are blue, DependsOn-only
// edges are dashed.
func (g *Generator) buildGraph(t *reactweather.Template) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	names := sortedNames(t)
	nodes := make(map[string]dot.Node, len(names))
	if g.ClusterByType {
		g.addClusteredNodes(graph, t, names, nodes)
	} else {
		for _, name := range names {
			nodes[name] = label(graph.Node(name), name, t.Resources[name].Type)
		}
	}

	deps := template.Dependencies(t)
	for _, name := range names {
		def := t.Resources[name]
		getAtt := toSet(serialize.AttributeReferences(def.Properties))
		referenced := toSet(serialize.References(def.Properties))

		for _, dep := range deps[name] {
			e := graph.Edge(nodes[name], nodes[dep])
			switch {
			case getAtt[dep]:
				e.Attr("color", "blue")
			case !referenced[dep]:
				e.Attr("style", "dashed")
			}
		}
	}

	if g.IncludeOutputs {
		outputs := make([]string, 0, len(t.Outputs))
		for name := range t.Outputs {
			outputs = append(outputs, name)
		}
		sort.Strings(outputs)
		for _, name := range outputs {
			n := graph.Node("output:" + name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
			for _, ref := range serialize.References(t.Outputs[name].Value) {
				if _, ok := t.Resources[ref]; ok {
					graph.Edge(n, nodes[ref])
				}
			}
		}
	}

	return graph
}

// addClusteredNodes adds resource nodes grouped by AWS service.
func (g *Generator) addClusteredNodes(graph *dot.Graph, t *reactweather.Template, names []string, nodes map[string]dot.Node) {
	serviceResources := make(map[string][]string)
	var services []string
	for _, name := range names {
		service := ServiceOf(t.Resources[name].Type)
		if _, ok := serviceResources[service]; !ok {
			services = append(services, service)
		}
		serviceResources[service] = append(serviceResources[service], name)
	}
	sort.Strings(services)

	for _, service := range services {
		resNames := serviceResources[service]
		if len(resNames) == 1 {
			nodes[resNames[0]] = label(graph.Node(resNames[0]), resNames[0], t.Resources[resNames[0]].Type)
			continue
		}
		cluster := graph.Subgraph("cluster_"+service, dot.ClusterOption{})
		cluster.Attr("label", service)
		cluster.Attr("style", "rounded")
		cluster.Attr("bgcolor", "lightyellow")
		for _, name := range resNames {
			nodes[name] = label(cluster.Node(name), name, t.Resources[name].Type)
		}
	}
}

func label(n dot.Node, name, cfType string) dot.Node {
	return n.Label(name + "\\n[" + cfType + "]")
}

// ServiceOf extracts the AWS service from a CloudFormation type.
// e.g., "AWS::ECS::Service" -> "ECS"
func ServiceOf(cfType string) string {
	parts := strings.Split(cfType, "::")
	if len(parts) == 3 {
		return parts[1]
	}
	return "Other"
}

func sortedNames(t *reactweather.Template) []string {
	names := make([]string, 0, len(t.Resources))
	for name := range t.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
