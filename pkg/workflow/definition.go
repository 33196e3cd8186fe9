package workflow

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StateDef declares a single state in a Definition.
type StateDef struct {
	Name  string `yaml:"name" json:"name"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
}

// SourceList holds the source state names of a transition. In YAML it accepts
// either a single name or a sequence of names.
type SourceList []string

func (s *SourceList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*s = SourceList{single}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return err
	}
	*s = SourceList(many)
	return nil
}

// TransitionDef declares a single transition in a Definition.
type TransitionDef struct {
	Name string     `yaml:"name" json:"name"`
	From SourceList `yaml:"from" json:"from"`
	To   string     `yaml:"to" json:"to"`
}

// Definition is the declarative description a Workflow is built from.
// Ordering is significant: states and transitions iterate in the order they
// are declared here.
type Definition struct {
	States      []StateDef      `yaml:"states" json:"states"`
	Transitions []TransitionDef `yaml:"transitions" json:"transitions"`
	Initial     string          `yaml:"initial" json:"initial"`
}

// ParseDefinition decodes a YAML document into a Definition. JSON is a subset
// of YAML, so JSON documents decode as well.
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse workflow definition: %w", err)
	}
	return def, nil
}
