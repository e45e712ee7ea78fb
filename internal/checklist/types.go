// Package checklist implements the maintenance-procedure template registry
// and the evaluator that recomputes, filters, and validates technician
// answers against a template.
package checklist

// FieldKind represents the input kind of a checklist field.
type FieldKind string

const (
	KindHeader     FieldKind = "header"
	KindText       FieldKind = "text"
	KindTextArea   FieldKind = "textarea"
	KindBoolean    FieldKind = "boolean"
	KindNumeric    FieldKind = "numeric"
	KindOptions    FieldKind = "options"
	KindPhoto      FieldKind = "photo"
	KindSignature  FieldKind = "signature"
	KindCalculated FieldKind = "calculated"
	KindSubtable   FieldKind = "subtable"
)

var validFieldKinds = map[FieldKind]bool{
	KindHeader:     true,
	KindText:       true,
	KindTextArea:   true,
	KindBoolean:    true,
	KindNumeric:    true,
	KindOptions:    true,
	KindPhoto:      true,
	KindSignature:  true,
	KindCalculated: true,
	KindSubtable:   true,
}

// FormulaOp selects the derivation for a calculated field. Formulas are data,
// not stored closures, so template files stay auditable.
type FormulaOp string

const (
	// OpDeltaOf yields a - b formatted to one decimal.
	OpDeltaOf FormulaOp = "delta_of"
	// OpSumOf yields a + b formatted to one decimal.
	OpSumOf FormulaOp = "sum_of"
)

// ConditionOp selects the visibility predicate for a conditional field.
type ConditionOp string

const (
	// OpEqualsBool shows the field when a boolean answer equals value.
	OpEqualsBool ConditionOp = "equals_bool"
	// OpEqualsOption shows the field when an option answer equals value.
	OpEqualsOption ConditionOp = "equals_option"
)

// ColumnKind represents the cell input kind of a subtable column.
type ColumnKind string

const (
	ColumnText   ColumnKind = "text"
	ColumnNumber ColumnKind = "number"
	ColumnSelect ColumnKind = "select"
)

// Formula is the derivation rule of a calculated field. A and B name sibling
// fields in the same template.
type Formula struct {
	Op FormulaOp `yaml:"op"`
	A  string    `yaml:"a"`
	B  string    `yaml:"b"`
}

// Dependencies lists the field IDs the formula reads.
func (f Formula) Dependencies() []string {
	return []string{f.A, f.B}
}

// Condition is the visibility predicate of a conditional field.
type Condition struct {
	Op    ConditionOp `yaml:"op"`
	Field string      `yaml:"field"`
	Value any         `yaml:"value"`
}

// Range is an advisory warning band for numeric and calculated fields. It
// never blocks completion on its own.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// SubtableColumn describes one column of a repeating-row field. A select
// column may resolve its options from an external catalog.
type SubtableColumn struct {
	ID            string     `yaml:"id"`
	Label         string     `yaml:"label"`
	ValueKind     ColumnKind `yaml:"value_kind"`
	OptionsSource string     `yaml:"options_source,omitempty"` // e.g. "materials"
}

// Field is a single entry in a checklist template.
type Field struct {
	ID          string           `yaml:"id"`
	Label       string           `yaml:"label"`
	Kind        FieldKind        `yaml:"kind"`
	Required    bool             `yaml:"required,omitempty"`
	Placeholder string           `yaml:"placeholder,omitempty"`
	Options     []string         `yaml:"options,omitempty"`
	Range       *Range           `yaml:"range,omitempty"`
	Unit        string           `yaml:"unit,omitempty"`
	Formula     *Formula         `yaml:"formula,omitempty"`
	Columns     []SubtableColumn `yaml:"columns,omitempty"`
	PhotoMin    int              `yaml:"photo_min,omitempty"`
	Condition   *Condition       `yaml:"condition,omitempty"`
}

// Template is an ordered maintenance-procedure schema for one task type.
// Immutable once loaded; the registry swaps whole snapshots on reload.
type Template struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"` // task-type name used for resolution
	Fields []Field `yaml:"fields"`
}

// Reserved field IDs the evaluator treats specially: the materials
// cross-field rule is a domain invariant, not a per-field flag.
const (
	FieldUsedMaterials = "usedMaterials"
	FieldMaterials     = "materials"

	ColumnMaterialID = "materialId"
	ColumnQuantity   = "quantity"
)

// NotAvailable is the sentinel a calculated field yields while any of its
// dependencies is blank or unparseable.
const NotAvailable = "N/A"
