// Package model defines the data structures for fieldops' work orders,
// catalog records, and configuration.
package model

import (
	"fmt"
	"time"

	yamlv3 "gopkg.in/yaml.v3"
)

// AnswerValues is the raw checklist answer set persisted on a task. Keys are
// field IDs; values are strings, bools, photo reference slices, or subtable
// rows depending on the field kind.
type AnswerValues map[string]any

// UnmarshalYAML restores the concrete value types a generic decode would
// flatten: sequences of scalars come back as []string and sequences of
// mappings as []SubtableRow, so a reloaded snapshot validates the same way
// the live answer set did.
func (a *AnswerValues) UnmarshalYAML(node *yamlv3.Node) error {
	if node.Kind != yamlv3.MappingNode {
		return fmt.Errorf("checklist data: expected a mapping, got %v", node.Kind)
	}
	out := make(AnswerValues, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		v, err := decodeAnswerNode(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("checklist data: field %s: %w", key, err)
		}
		out[key] = v
	}
	*a = out
	return nil
}

func decodeAnswerNode(node *yamlv3.Node) (any, error) {
	if node.Kind == yamlv3.SequenceNode {
		if len(node.Content) > 0 && node.Content[0].Kind == yamlv3.MappingNode {
			var rows []SubtableRow
			if err := node.Decode(&rows); err != nil {
				return nil, err
			}
			return rows, nil
		}
		var refs []string
		if err := node.Decode(&refs); err != nil {
			return nil, err
		}
		return refs, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// SubtableRow is one row of a repeating-row checklist field. Cell values are
// stored as entered (free text).
type SubtableRow map[string]string

// MaterialUsage is a consumed-material line extracted from a completed work
// order's materials subtable.
type MaterialUsage struct {
	MaterialID string `yaml:"material_id"`
	Quantity   int    `yaml:"quantity"`
}

// Task is a service order (OS) for one piece of equipment at one store.
type Task struct {
	ID            string          `yaml:"id"`
	OSNumber      string          `yaml:"os_number"`
	Title         string          `yaml:"title"` // task-type name, resolves the checklist template
	Description   string          `yaml:"description"`
	StoreID       string          `yaml:"store_id"`
	EquipmentID   string          `yaml:"equipment_id"`
	TechnicianID  string          `yaml:"technician_id"`
	ScheduledDate time.Time       `yaml:"scheduled_date"`
	Status        TaskStatus      `yaml:"status"`
	ServiceType   string          `yaml:"service_type"`
	Photos        []string        `yaml:"photos"`
	Notes         string          `yaml:"notes"`
	VerifyMethod  string          `yaml:"verify_method,omitempty"` // how the equipment was verified at completion
	ChecklistData AnswerValues    `yaml:"checklist_data,omitempty"`
	Materials     []MaterialUsage `yaml:"materials,omitempty"`
	CreatedAt     time.Time       `yaml:"created_at"`
	UpdatedAt     time.Time       `yaml:"updated_at"`
}

// Clone returns a deep copy so repository snapshots cannot be mutated through
// shared slices or maps.
func (t Task) Clone() Task {
	c := t
	c.Photos = append([]string(nil), t.Photos...)
	c.Materials = append([]MaterialUsage(nil), t.Materials...)
	if t.ChecklistData != nil {
		c.ChecklistData = make(AnswerValues, len(t.ChecklistData))
		for k, v := range t.ChecklistData {
			c.ChecklistData[k] = cloneAnswerValue(v)
		}
	}
	return c
}

func cloneAnswerValue(v any) any {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []SubtableRow:
		rows := make([]SubtableRow, len(val))
		for i, row := range val {
			r := make(SubtableRow, len(row))
			for k, cell := range row {
				r[k] = cell
			}
			rows[i] = r
		}
		return rows
	default:
		return v
	}
}
