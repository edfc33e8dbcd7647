// Package schema defines the human-authored model schema: table and column
// descriptions, column tests, and the relationships those tests declare.
// These types are decoded from a dbt-style properties YAML file.
package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tags naming the column tests with special meaning for emission.
const (
	TagNotNull       = "not_null"
	TagUnique        = "unique"
	TagRelationships = "relationships"
)

// Schema is the top-level schema document.
type Schema struct {
	// Version is the document's declared version, if any.
	Version int `yaml:"version,omitempty"`
	// Tables lists the models in document order.
	Tables []Table `yaml:"models"`
}

// Table is a model entry in the schema.
type Table struct {
	// Name is the model name. Lookups against it are case-insensitive.
	Name string `yaml:"name"`
	// Description is nil when the model has no description field.
	Description *string `yaml:"description,omitempty"`
	// Columns lists the documented columns in document order.
	Columns []Column `yaml:"columns,omitempty"`
}

// Column is a documented column of a model.
type Column struct {
	// Name is the column name. Lookups against it are case-insensitive.
	Name string `yaml:"name"`
	// Description is nil when the column has no description field.
	Description *string `yaml:"description,omitempty"`
	// Tests holds entries from the "tests" key.
	Tests []Test `yaml:"tests,omitempty"`
	// DataTests holds entries from the "data_tests" key.
	DataTests []Test `yaml:"data_tests,omitempty"`
}

// Test is one column test entry. Bare entries ("unique") and mapping entries
// ("not_null: {config: ...}") both populate Name. For relationships tests
// Relationship is non-nil.
type Test struct {
	Name         string
	Relationship *RelationshipTest
}

// RelationshipTest holds the arguments of a relationships test. A nil field
// means the key was absent.
type RelationshipTest struct {
	To    *string `yaml:"to"`
	Field *string `yaml:"field"`
}

// AllTests returns the column's tests followed by its data tests.
func (c Column) AllTests() []Test {
	if len(c.DataTests) == 0 {
		return c.Tests
	}
	all := make([]Test, 0, len(c.Tests)+len(c.DataTests))
	all = append(all, c.Tests...)
	return append(all, c.DataTests...)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Test) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		t.Name = node.Value
		return nil
	case yaml.MappingNode:
		if len(node.Content) < 2 {
			return nil
		}
		key, value := node.Content[0], node.Content[1]
		t.Name = key.Value
		if t.Name != TagRelationships {
			return nil
		}
		return t.decodeRelationship(value)
	default:
		// Unknown shapes carry no information we emit.
		return nil
	}
}

func (t *Test) decodeRelationship(value *yaml.Node) error {
	var args struct {
		RelationshipTest `yaml:",inline"`
		Arguments        *RelationshipTest `yaml:"arguments"`
	}
	if value.Kind != yaml.MappingNode {
		t.Relationship = &RelationshipTest{}
		return nil
	}
	if err := value.Decode(&args); err != nil {
		return fmt.Errorf("line %d: invalid relationships test: %w", value.Line, err)
	}
	rel := args.RelationshipTest
	if args.Arguments != nil {
		if rel.To == nil {
			rel.To = args.Arguments.To
		}
		if rel.Field == nil {
			rel.Field = args.Arguments.Field
		}
	}
	t.Relationship = &rel
	return nil
}

// Load reads and parses a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes a schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return &s, nil
}
