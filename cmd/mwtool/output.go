package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func (a *app) format() string {
	return a.v.GetString("output")
}

// render writes v as JSON or YAML, or rows under header as a table
func (a *app) render(v any, header []string, rows [][]string) error {
	switch a.format() {
	case formatJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	case formatYAML:
		enc := yaml.NewEncoder(a.out)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	}

	table := tablewriter.NewWriter(a.out)
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	table.Header(cells...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("appending table row: %w", err)
		}
	}
	return table.Render()
}

// writeJSONFile stores v as compact JSON at path, creating parent directories
func writeJSONFile(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// pathSegment turns an API-provided name into a single safe path element
func pathSegment(name string) string {
	if name == "" || name == "." || name == ".." {
		return "unknown"
	}
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}
