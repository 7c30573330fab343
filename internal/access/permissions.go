package access

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Table maps section -> action -> role names allowed to perform it.
// A section/action pair with no entry is denied.
type Table map[string]map[string][]string

var (
	viewAll   = []string{"admin", "member"}
	adminOnly = []string{"admin"}
)

// DefaultTable returns the deployment's built-in permission table.
func DefaultTable() Table {
	crud := func(withDelete bool) map[string][]string {
		m := map[string][]string{
			"view": viewAll,
			"edit": adminOnly,
			"add":  adminOnly,
		}
		if withDelete {
			m["delete"] = adminOnly
		}
		return m
	}
	t := Table{
		"members":     crud(false),
		"events":      crud(false),
		"calendar":    {"view": viewAll, "add": adminOnly},
		"rentals":     crud(false),
		"finance":     crud(false),
		"vendors":     crud(true),
		"reminders":   crud(false),
		"documents":   crud(false),
		"maintenance": crud(true),
		"ads-manager": {"view": adminOnly},
		"news":        crud(true),
	}
	return t.Clone()
}

// LoadTable reads a YAML permission table. An empty path yields DefaultTable.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read permissions file: %w", err)
	}
	return ParseTable(raw)
}

// ParseTable decodes a YAML document of the form
//
//	events:
//	  view: [admin, member]
//	  edit: [admin]
//
// Any action whose value is not a list of strings is rejected.
func ParseTable(raw []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse permissions: %w", err)
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("parse permissions: no sections defined")
	}
	return t, nil
}

// Clone returns a deep copy so callers cannot mutate the shared table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for section, actions := range t {
		a := make(map[string][]string, len(actions))
		for action, roles := range actions {
			a[action] = append([]string(nil), roles...)
		}
		out[section] = a
	}
	return out
}

// Sections lists the known sections in sorted order.
func (t Table) Sections() []string {
	out := make([]string, 0, len(t))
	for section := range t {
		out = append(out, section)
	}
	sort.Strings(out)
	return out
}

// Has reports whether the section defines the action at all.
func (t Table) Has(section, action string) bool {
	_, ok := t[section][action]
	return ok
}

// ResolveAction maps a "delete" request onto "edit" for sections that do not
// define a delete action of their own.
func (t Table) ResolveAction(section, action string) string {
	if action == "delete" && !t.Has(section, "delete") {
		return "edit"
	}
	return action
}
