package checklist

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mrovira/fieldops/templates"
)

// Registry resolves a task-type name to its checklist template. Lookups are
// pure; the only mutation is a whole-snapshot Replace used by hot reload.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Template
	byID   map[string]*Template
}

// NewRegistry validates the templates and builds a registry over them.
func NewRegistry(tpls []*Template) (*Registry, error) {
	r := &Registry{}
	if err := r.Replace(tpls); err != nil {
		return nil, err
	}
	return r, nil
}

// Resolve returns the template for a task-type name. A miss means the task
// is checklist-free.
func (r *Registry) Resolve(taskTypeName string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.byName[taskTypeName]
	return tpl, ok
}

// ByID returns the template with the given template ID.
func (r *Registry) ByID(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.byID[id]
	return tpl, ok
}

// Templates lists the registered templates sorted by ID.
func (r *Registry) Templates() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Template, 0, len(r.byID))
	for _, tpl := range r.byID {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Replace validates the full new set first and only then swaps the snapshot,
// so a bad reload can never leave a half-updated registry.
func (r *Registry) Replace(tpls []*Template) error {
	byName := make(map[string]*Template, len(tpls))
	byID := make(map[string]*Template, len(tpls))
	for _, tpl := range tpls {
		if err := ValidateTemplate(tpl); err != nil {
			return fmt.Errorf("template %s: %w", tpl.ID, err)
		}
		if _, dup := byID[tpl.ID]; dup {
			return fmt.Errorf("duplicate template id %q", tpl.ID)
		}
		if _, dup := byName[tpl.Name]; dup {
			return fmt.Errorf("duplicate template name %q", tpl.Name)
		}
		byID[tpl.ID] = tpl
		byName[tpl.Name] = tpl
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName = byName
	r.byID = byID
	return nil
}

// LoadBuiltin parses the checklist templates shipped in the binary.
func LoadBuiltin() ([]*Template, error) {
	var tpls []*Template
	err := fs.WalkDir(templates.FS, "checklists", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasYAMLExtension(path) {
			return nil
		}
		data, err := templates.FS.ReadFile(path)
		if err != nil {
			return err
		}
		tpl, err := parseTemplate(data)
		if err != nil {
			return fmt.Errorf("builtin %s: %w", path, err)
		}
		tpls = append(tpls, tpl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tpls, nil
}

// LoadDir parses every template file under dir. A missing dir is not an
// error; it simply contributes no templates.
func LoadDir(dir string) ([]*Template, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var tpls []*Template
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !hasYAMLExtension(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tpl, err := parseTemplate(data)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		tpls = append(tpls, tpl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tpls, nil
}

// LoadAll merges the built-in set with templates from dir. A dir template
// with the same ID replaces the built-in one.
func LoadAll(dir string) ([]*Template, error) {
	builtin, err := LoadBuiltin()
	if err != nil {
		return nil, err
	}
	external, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(builtin))
	merged := make([]*Template, 0, len(builtin)+len(external))
	for _, tpl := range builtin {
		byID[tpl.ID] = len(merged)
		merged = append(merged, tpl)
	}
	for _, tpl := range external {
		if i, ok := byID[tpl.ID]; ok {
			merged[i] = tpl
			continue
		}
		byID[tpl.ID] = len(merged)
		merged = append(merged, tpl)
	}
	return merged, nil
}

func parseTemplate(data []byte) (*Template, error) {
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &tpl, nil
}

// ValidateTemplate checks the structural invariants a template must hold
// before it can be registered.
func ValidateTemplate(tpl *Template) error {
	if tpl.ID == "" {
		return fmt.Errorf("id is required")
	}
	if tpl.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(tpl.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}

	fieldIDs := make(map[string]bool, len(tpl.Fields))
	for i, f := range tpl.Fields {
		if f.ID == "" {
			return fmt.Errorf("field %d: id is required", i)
		}
		if fieldIDs[f.ID] {
			return fmt.Errorf("duplicate field id %q", f.ID)
		}
		fieldIDs[f.ID] = true

		if !validFieldKinds[f.Kind] {
			return fmt.Errorf("field %s: unknown kind %q", f.ID, f.Kind)
		}
	}

	for _, f := range tpl.Fields {
		if err := validateField(f, fieldIDs); err != nil {
			return fmt.Errorf("field %s: %w", f.ID, err)
		}
	}
	return nil
}

func validateField(f Field, fieldIDs map[string]bool) error {
	switch f.Kind {
	case KindOptions:
		if len(f.Options) == 0 {
			return fmt.Errorf("options kind requires options")
		}
	case KindCalculated:
		if f.Formula == nil {
			return fmt.Errorf("calculated kind requires a formula")
		}
		if _, ok := formulaFuncs[f.Formula.Op]; !ok {
			return fmt.Errorf("unknown formula op %q", f.Formula.Op)
		}
		for _, dep := range f.Formula.Dependencies() {
			if !fieldIDs[dep] {
				return fmt.Errorf("formula depends on unknown field %q", dep)
			}
		}
	case KindSubtable:
		if len(f.Columns) == 0 {
			return fmt.Errorf("subtable kind requires columns")
		}
		colIDs := make(map[string]bool, len(f.Columns))
		for _, col := range f.Columns {
			if col.ID == "" {
				return fmt.Errorf("subtable column id is required")
			}
			if colIDs[col.ID] {
				return fmt.Errorf("duplicate subtable column id %q", col.ID)
			}
			colIDs[col.ID] = true
			switch col.ValueKind {
			case ColumnText, ColumnNumber, ColumnSelect:
			default:
				return fmt.Errorf("column %s: unknown value kind %q", col.ID, col.ValueKind)
			}
		}
	}

	if f.Formula != nil && f.Kind != KindCalculated {
		return fmt.Errorf("formula is only valid on calculated fields")
	}
	if f.PhotoMin != 0 && f.Kind != KindPhoto {
		return fmt.Errorf("photo_min is only valid on photo fields")
	}
	if f.PhotoMin < 0 {
		return fmt.Errorf("photo_min must not be negative")
	}
	if f.Condition != nil {
		if _, ok := conditionFuncs[f.Condition.Op]; !ok {
			return fmt.Errorf("unknown condition op %q", f.Condition.Op)
		}
		if !fieldIDs[f.Condition.Field] {
			return fmt.Errorf("condition references unknown field %q", f.Condition.Field)
		}
	}
	return nil
}

func hasYAMLExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
