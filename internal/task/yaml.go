package task

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// predList accepts either a YAML sequence or a comma-separated scalar.
type predList []string

func (p *predList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*p = SplitPredecessors(value.Value)
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		var out []string
		for _, r := range raw {
			out = append(out, SplitPredecessors(r)...)
		}
		*p = out
		return nil
	default:
		return fmt.Errorf("predecessors: unsupported YAML node at line %d", value.Line)
	}
}

type yamlTask struct {
	ID           string   `yaml:"id"`
	Description  string   `yaml:"description"`
	Duration     int      `yaml:"duration"`
	Predecessors predList `yaml:"predecessors"`
}

// ReadYAML reads task records from a YAML sequence of task mappings, or from a
// mapping with a "tasks" sequence.
func ReadYAML(data []byte) ([]Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	if len(doc.Content) == 0 {
		return nil, nil
	}

	var raw []yamlTask
	var wrapped struct {
		Tasks []yamlTask `yaml:"tasks"`
	}
	if doc.Content[0].Kind == yaml.MappingNode {
		if err := doc.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
		}
		raw = wrapped.Tasks
	} else if err := doc.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	tasks := make([]Task, 0, len(raw))
	for i, r := range raw {
		t := Task{
			ID:           r.ID,
			Description:  r.Description,
			Duration:     r.Duration,
			Predecessors: []string(r.Predecessors),
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
