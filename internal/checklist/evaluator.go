package checklist

import (
	"fmt"
	"math"

	"github.com/mrovira/fieldops/internal/model"
)

// Problem describes one completion blocker found by Validate.
type Problem struct {
	FieldID string
	Message string
}

// Warning is an advisory out-of-range reading. Warnings never block
// completion.
type Warning struct {
	FieldID string
	Value   float64
	Min     float64
	Max     float64
}

// Recompute re-derives every calculated field in template order against the
// current answers and reports whether anything changed. Templates carry no
// cyclic dependencies between calculated fields, so a single pass in order
// reaches the fixed point.
func Recompute(tpl *Template, answers *AnswerSet) bool {
	if tpl == nil {
		return false
	}
	changed := false
	for _, f := range tpl.Fields {
		if f.Kind != KindCalculated || f.Formula == nil {
			continue
		}
		result := EvaluateFormula(*f.Formula, answers)
		prev, _ := answers.String(f.ID)
		if prev != result {
			answers.Set(f.ID, result)
			changed = true
		}
	}
	return changed
}

// Visible reports whether a field is currently shown. Hidden fields keep
// their stored answers.
func Visible(f Field, answers *AnswerSet) bool {
	if f.Condition == nil {
		return true
	}
	return EvaluateCondition(*f.Condition, answers)
}

// VisibleFields returns the render sequence for the current answers.
func VisibleFields(tpl *Template, answers *AnswerSet) []Field {
	if tpl == nil {
		return nil
	}
	out := make([]Field, 0, len(tpl.Fields))
	for _, f := range tpl.Fields {
		if Visible(f, answers) {
			out = append(out, f)
		}
	}
	return out
}

// Validate lists everything blocking completion. A nil template validates
// clean: tasks without a checklist are free-text only.
func Validate(tpl *Template, answers *AnswerSet) []Problem {
	if tpl == nil {
		return nil
	}

	var problems []Problem
	for _, f := range tpl.Fields {
		if !f.Required || !Visible(f, answers) {
			continue
		}
		if p := validateRequired(f, answers); p != nil {
			problems = append(problems, *p)
		}
	}

	problems = append(problems, validateMaterialsRule(answers)...)
	return problems
}

func validateRequired(f Field, answers *AnswerSet) *Problem {
	switch f.Kind {
	case KindBoolean:
		// An explicit "no" is a valid answer; only a missing one fails.
		if _, ok := answers.Bool(f.ID); !ok {
			return &Problem{FieldID: f.ID, Message: "requires an explicit yes/no answer"}
		}
	case KindPhoto:
		need := f.PhotoMin
		if need <= 0 {
			need = 1
		}
		if got := len(answers.Photos(f.ID)); got < need {
			return &Problem{FieldID: f.ID, Message: fmt.Sprintf("requires at least %d photo(s), has %d", need, got)}
		}
	default:
		if answers.Empty(f.ID) {
			return &Problem{FieldID: f.ID, Message: "required value is missing"}
		}
	}
	return nil
}

// validateMaterialsRule enforces the reserved usedMaterials/materials pair:
// claiming materials were used requires at least one row with a material and
// a positive quantity. This is a domain invariant of the evaluator, separate
// from per-field required flags.
func validateMaterialsRule(answers *AnswerSet) []Problem {
	used, ok := answers.Bool(FieldUsedMaterials)
	if !ok || !used {
		return nil
	}

	rows := answers.Rows(FieldMaterials)
	if len(rows) == 0 {
		return []Problem{{FieldID: FieldMaterials, Message: "materials were used but none are listed"}}
	}

	var problems []Problem
	for i, row := range rows {
		if row[ColumnMaterialID] == "" {
			problems = append(problems, Problem{FieldID: FieldMaterials, Message: fmt.Sprintf("row %d is missing a material", i+1)})
			continue
		}
		q, okQ := parseNumber(row[ColumnQuantity])
		if !okQ || q <= 0 {
			problems = append(problems, Problem{FieldID: FieldMaterials, Message: fmt.Sprintf("row %d needs a positive quantity", i+1)})
		}
	}
	return problems
}

// IsComplete reports whether every visible required field and the materials
// rule are satisfied.
func IsComplete(tpl *Template, answers *AnswerSet) bool {
	return len(Validate(tpl, answers)) == 0
}

// RangeWarnings lists visible numeric and calculated readings outside their
// advisory band.
func RangeWarnings(tpl *Template, answers *AnswerSet) []Warning {
	if tpl == nil {
		return nil
	}
	var warnings []Warning
	for _, f := range tpl.Fields {
		if f.Range == nil || !Visible(f, answers) {
			continue
		}
		if f.Kind != KindNumeric && f.Kind != KindCalculated {
			continue
		}
		v, ok := answers.Number(f.ID)
		if !ok {
			continue
		}
		if v < f.Range.Min || v > f.Range.Max {
			warnings = append(warnings, Warning{FieldID: f.ID, Value: v, Min: f.Range.Min, Max: f.Range.Max})
		}
	}
	return warnings
}

// ExtractPhotos flattens every photo field's references in template order.
// Runs on each Start/Complete transition to refresh the task's denormalized
// photo list.
func ExtractPhotos(tpl *Template, answers *AnswerSet) []string {
	if tpl == nil {
		return nil
	}
	var photos []string
	for _, f := range tpl.Fields {
		if f.Kind != KindPhoto {
			continue
		}
		photos = append(photos, answers.Photos(f.ID)...)
	}
	return photos
}

// ExtractMaterials pulls consumable usage rows from the reserved materials
// subtable, keeping only rows with a material and a positive quantity.
// Quantities round to whole catalog units; rows that round to zero are
// dropped.
func ExtractMaterials(answers *AnswerSet) []model.MaterialUsage {
	var usages []model.MaterialUsage
	for _, row := range answers.Rows(FieldMaterials) {
		if row[ColumnMaterialID] == "" {
			continue
		}
		q, ok := parseNumber(row[ColumnQuantity])
		if !ok || q <= 0 {
			continue
		}
		qty := int(math.Round(q))
		if qty <= 0 {
			continue
		}
		usages = append(usages, model.MaterialUsage{MaterialID: row[ColumnMaterialID], Quantity: qty})
	}
	return usages
}
