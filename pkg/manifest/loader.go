package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jvila/majordomo/pkg/errors"
)

// Parse decodes a manifest document. The yaml is walked node by node rather
// than unmarshalled into maps so that domain and workflow declaration order
// survives, and so duplicate keys are a schema error instead of a silent
// overwrite.
func Parse(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New(errors.CodeManifest, "manifest is not valid yaml", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New(errors.CodeManifest, "manifest document is empty", nil)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.CodeManifest, "manifest root must be a mapping", nil)
	}

	m := &Manifest{
		Domains:   make(map[string]*DomainConfig),
		Workflows: make(map[string]*WorkflowConfig),
	}

	for i := 0; i < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := root.Content[i+1]
		switch key {
		case "version":
			if err := value.Decode(&m.Version); err != nil {
				return nil, errors.New(errors.CodeManifest, "version must be an integer", err)
			}
		case "identity":
			if err := value.Decode(&m.Identity); err != nil {
				return nil, errors.New(errors.CodeManifest, "invalid identity block", err)
			}
		case "domains":
			if err := parseDomains(value, m); err != nil {
				return nil, err
			}
		case "workflows":
			if err := parseWorkflows(value, m); err != nil {
				return nil, err
			}
		}
	}

	if err := validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads and parses the manifest file at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeManifest, "cannot read manifest file", err).
			WithContext("path", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.AsMajordomoError(err).WithContext("path", path)
	}
	return m, nil
}

func parseDomains(node *yaml.Node, m *Manifest) error {
	if node.Kind != yaml.MappingNode {
		return errors.New(errors.CodeManifest, "domains must be a mapping", nil)
	}
	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if _, dup := m.Domains[name]; dup {
			return errors.New(errors.CodeManifest, fmt.Sprintf("duplicate domain %q", name), nil)
		}
		var cfg DomainConfig
		if err := node.Content[i+1].Decode(&cfg); err != nil {
			return errors.New(errors.CodeManifest, fmt.Sprintf("invalid domain %q", name), err)
		}
		m.Domains[name] = &cfg
		m.DomainOrder = append(m.DomainOrder, name)
	}
	return nil
}

func parseWorkflows(node *yaml.Node, m *Manifest) error {
	if node.Kind != yaml.MappingNode {
		return errors.New(errors.CodeManifest, "workflows must be a mapping", nil)
	}
	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if _, dup := m.Workflows[name]; dup {
			return errors.New(errors.CodeManifest, fmt.Sprintf("duplicate workflow %q", name), nil)
		}
		var cfg WorkflowConfig
		if err := node.Content[i+1].Decode(&cfg); err != nil {
			return errors.New(errors.CodeManifest, fmt.Sprintf("invalid workflow %q", name), err)
		}
		m.Workflows[name] = &cfg
		m.WorkflowOrder = append(m.WorkflowOrder, name)
	}
	return nil
}

func validate(m *Manifest) error {
	for _, name := range m.DomainOrder {
		d := m.Domains[name]
		if strings.TrimSpace(d.Description) == "" {
			return missingField("domain", name, "description")
		}
		if len(d.Triggers) == 0 {
			return missingField("domain", name, "triggers")
		}
		if strings.TrimSpace(d.Specialist) == "" {
			return missingField("domain", name, "specialist")
		}
	}
	for _, name := range m.WorkflowOrder {
		w := m.Workflows[name]
		if strings.TrimSpace(w.Description) == "" {
			return missingField("workflow", name, "description")
		}
		if len(w.Triggers) == 0 {
			return missingField("workflow", name, "triggers")
		}
		if strings.TrimSpace(w.Specialist) == "" {
			return missingField("workflow", name, "specialist")
		}
		for i, pt := range w.ParallelTasks {
			if strings.TrimSpace(pt.Domain) == "" || strings.TrimSpace(pt.Task) == "" {
				return errors.New(errors.CodeManifest,
					fmt.Sprintf("workflow %q parallel_tasks[%d] requires domain and task", name, i), nil)
			}
			if m.Domains[pt.Domain] == nil {
				return errors.New(errors.CodeManifest,
					fmt.Sprintf("workflow %q parallel_tasks[%d] references unknown domain %q", name, i, pt.Domain), nil)
			}
		}
	}
	return nil
}

func missingField(kind, name, field string) error {
	return errors.New(errors.CodeManifest,
		fmt.Sprintf("%s %q is missing required field %q", kind, name, field), nil)
}
