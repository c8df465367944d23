// Package schema answers structural questions about the application's
// eventual database schema before any live connection exists, by parsing
// declarative table definitions instead of querying a server.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// definitionDoc is the on-disk shape of a schema definition file.
type definitionDoc struct {
	Tables map[string]tableDoc `yaml:"tables"`
}

type tableDoc struct {
	Columns []string `yaml:"columns"`
}

// Introspector answers "does table T have column C" from declarative
// schema-definition sources.
type Introspector struct {
	tables map[string][]string
}

// NewIntrospector creates an empty Introspector.
func NewIntrospector() *Introspector {
	return &Introspector{
		tables: make(map[string][]string),
	}
}

// AddDefinition parses a schema definition document and merges its tables.
// A table declared twice keeps the later column list.
func (i *Introspector) AddDefinition(data []byte) error {
	var doc definitionDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse schema definition: %w", err)
	}
	for name, table := range doc.Tables {
		columns := make([]string, len(table.Columns))
		copy(columns, table.Columns)
		i.tables[name] = columns
	}
	return nil
}

// LoadDir parses every .yaml/.yml file in dir as a schema definition.
func (i *Introspector) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read schema dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read schema file %s: %w", name, err)
		}
		if err := i.AddDefinition(data); err != nil {
			return fmt.Errorf("schema file %s: %w", name, err)
		}
	}
	return nil
}

// HasTable reports whether the table is declared.
func (i *Introspector) HasTable(name string) bool {
	_, ok := i.tables[name]
	return ok
}

// Tables returns the declared table names, sorted.
func (i *Introspector) Tables() []string {
	names := make([]string, 0, len(i.tables))
	for name := range i.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Columns returns the declared columns of a table in declaration order.
// Returns an empty slice when the table is undeclared.
func (i *Introspector) Columns(table string) []string {
	columns, ok := i.tables[table]
	if !ok {
		return []string{}
	}
	result := make([]string, len(columns))
	copy(result, columns)
	return result
}

// MissingColumns returns the subset of required columns not declared on the
// table, preserving the order of required. An undeclared table is missing
// every required column.
func (i *Introspector) MissingColumns(table string, required []string) []string {
	declared := make(map[string]struct{})
	for _, column := range i.tables[table] {
		declared[column] = struct{}{}
	}

	missing := make([]string, 0)
	for _, column := range required {
		if _, ok := declared[column]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}
