package differ

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	reactweather "github.com/mertsatargan/react-weather-cdk"
)

// shortForms maps YAML short-form intrinsic tags to their long-form keys.
var shortForms = map[string]string{
	"!Ref":          "Ref",
	"!Condition":    "Condition",
	"!Base64":       "Fn::Base64",
	"!Cidr":         "Fn::Cidr",
	"!FindInMap":    "Fn::FindInMap",
	"!GetAtt":       "Fn::GetAtt",
	"!GetAZs":       "Fn::GetAZs",
	"!ImportValue":  "Fn::ImportValue",
	"!Join":         "Fn::Join",
	"!Select":       "Fn::Select",
	"!Split":        "Fn::Split",
	"!Sub":          "Fn::Sub",
	"!Transform":    "Fn::Transform",
	"!Length":       "Fn::Length",
	"!ToJsonString": "Fn::ToJsonString",
	"!And":          "Fn::And",
	"!Equals":       "Fn::Equals",
	"!If":           "Fn::If",
	"!Not":          "Fn::Not",
	"!Or":           "Fn::Or",
}

// parseYAML decodes a YAML template, expanding short-form intrinsics so the
// result matches the JSON form of the same template.
func parseYAML(data []byte, t *reactweather.Template) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	value, err := nodeValue(&doc)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, t)
}

func nodeValue(n *yaml.Node) (any, error) {
	var value any
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])

	case yaml.AliasNode:
		return nodeValue(n.Alias)

	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		value = m

	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := nodeValue(child)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		value = list

	case yaml.ScalarNode:
		if _, tagged := shortForms[n.Tag]; tagged {
			value = n.Value
		} else if err := n.Decode(&value); err != nil {
			return nil, err
		}
	}

	key, ok := shortForms[n.Tag]
	if !ok {
		return value, nil
	}
	// !GetAtt Resource.Attribute
	if s, isString := value.(string); isString && key == "Fn::GetAtt" {
		name, attr, _ := strings.Cut(s, ".")
		value = []any{name, attr}
	}
	return map[string]any{key: value}, nil
}
