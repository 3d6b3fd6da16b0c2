package muscles

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed muscles.yaml
var defaultYAML []byte

// ErrUnknownGroup is returned when a table entry targets a group that no body part maps to.
var ErrUnknownGroup = errors.New("unknown muscle group")

// Table is the fixed muscle configuration: display body parts, canonical groups,
// and the secondary-label normalization table.
type Table struct {
	bodyParts map[string]string
	aliases   map[string]string
	groups    []string
}

type tableFile struct {
	BodyParts map[string]string `yaml:"body_parts"`
	Aliases   map[string]string `yaml:"aliases"`
}

// Default returns the table embedded in the binary.
func Default() *Table {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("muscles: embedded table is invalid: %v", err))
	}
	return t
}

// Load reads a muscle table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading muscle table: %w", err)
	}
	return Parse(data)
}

// Parse builds a table from YAML bytes and validates that every alias resolves
// to a group reachable from the body-part table.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing muscle table: %w", err)
	}
	if len(f.BodyParts) == 0 {
		return nil, fmt.Errorf("muscle table: body_parts is required")
	}

	t := &Table{
		bodyParts: make(map[string]string, len(f.BodyParts)),
		aliases:   make(map[string]string, len(f.Aliases)+len(f.BodyParts)),
	}

	seen := make(map[string]bool)
	for part, group := range f.BodyParts {
		group = strings.TrimSpace(group)
		if group == "" {
			return nil, fmt.Errorf("muscle table: body part %q has no group", part)
		}
		t.bodyParts[part] = group
		if !seen[group] {
			seen[group] = true
			t.groups = append(t.groups, group)
		}
	}
	sort.Strings(t.groups)

	// Canonical names normalize to themselves.
	for _, g := range t.groups {
		t.aliases[key(g)] = g
	}
	for label, group := range f.Aliases {
		group = strings.TrimSpace(group)
		if !seen[group] {
			return nil, fmt.Errorf("muscle table: alias %q -> %q: %w", label, group, ErrUnknownGroup)
		}
		t.aliases[key(label)] = group
	}
	return t, nil
}

func key(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Normalize maps a free-form muscle label to its canonical group.
// Unknown labels return ok=false; they are not an error.
func (t *Table) Normalize(label string) (string, bool) {
	g, ok := t.aliases[key(label)]
	return g, ok
}

// Groups returns every canonical muscle group, sorted.
func (t *Table) Groups() []string {
	out := make([]string, len(t.groups))
	copy(out, t.groups)
	return out
}

// GroupForBodyPart returns the canonical group a display body part renders.
func (t *Table) GroupForBodyPart(part string) (string, bool) {
	g, ok := t.bodyParts[part]
	return g, ok
}

// BodyParts returns every display body part, sorted.
func (t *Table) BodyParts() []string {
	out := make([]string, 0, len(t.bodyParts))
	for p := range t.bodyParts {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
