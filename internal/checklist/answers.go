package checklist

import (
	"strconv"
	"strings"

	"github.com/mrovira/fieldops/internal/model"
)

// AnswerSet is the live set of values a technician has entered against a
// template for one task. Values persist independently of field visibility:
// hiding a field never deletes its answer, so toggling a condition off and
// back on restores prior input.
type AnswerSet struct {
	values model.AnswerValues
}

// NewAnswerSet returns an empty answer set.
func NewAnswerSet() *AnswerSet {
	return &AnswerSet{values: make(model.AnswerValues)}
}

// SeedAnswerSet builds an answer set from a task's persisted checklist data.
// The input is copied; later edits do not touch the task record until a
// lifecycle transition snapshots them back.
func SeedAnswerSet(vals model.AnswerValues) *AnswerSet {
	a := NewAnswerSet()
	for k, v := range vals {
		a.values[k] = v
	}
	return a
}

// Set stores a raw value for a field ID.
func (a *AnswerSet) Set(id string, v any) {
	a.values[id] = v
}

// Delete removes a stored value. Used for explicit clears, never for hides.
func (a *AnswerSet) Delete(id string) {
	delete(a.values, id)
}

// Get returns the raw stored value.
func (a *AnswerSet) Get(id string) (any, bool) {
	v, ok := a.values[id]
	return v, ok
}

// String returns the value as a string. Absent or non-string values yield
// ok=false.
func (a *AnswerSet) String(id string) (string, bool) {
	v, ok := a.values[id]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the value only when it is an explicit boolean. An unanswered
// boolean is distinguishable from an explicit "no".
func (a *AnswerSet) Bool(id string) (bool, bool) {
	v, ok := a.values[id]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Number parses the value as a float. Numeric inputs are free-text entered,
// so unparseable or blank text reads as absent rather than an error.
func (a *AnswerSet) Number(id string) (float64, bool) {
	v, ok := a.values[id]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		return parseNumber(val)
	default:
		return 0, false
	}
}

// Photos returns the photo references stored for a photo field.
func (a *AnswerSet) Photos(id string) []string {
	v, ok := a.values[id]
	if !ok {
		return nil
	}
	refs, _ := v.([]string)
	return refs
}

// Rows returns the rows stored for a subtable field.
func (a *AnswerSet) Rows(id string) []model.SubtableRow {
	v, ok := a.values[id]
	if !ok {
		return nil
	}
	rows, _ := v.([]model.SubtableRow)
	return rows
}

// Empty reports whether the field has no usable value: absent, empty string,
// or an empty sequence.
func (a *AnswerSet) Empty(id string) bool {
	v, ok := a.values[id]
	if !ok || v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []model.SubtableRow:
		return len(val) == 0
	default:
		return false
	}
}

// Values snapshots the answer set into a persistable form. The snapshot is
// deep-copied so the live set can keep mutating.
func (a *AnswerSet) Values() model.AnswerValues {
	out := make(model.AnswerValues, len(a.values))
	for k := range a.values {
		out[k] = a.values[k]
	}
	return model.Task{ChecklistData: out}.Clone().ChecklistData
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
