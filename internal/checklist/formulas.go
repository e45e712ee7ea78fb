package checklist

import "fmt"

// formulaFunc derives a calculated field's value from the current answers.
// Implementations must be pure: same answers, same output, no side effects.
type formulaFunc func(f Formula, answers *AnswerSet) string

// conditionFunc decides a conditional field's visibility.
type conditionFunc func(c Condition, answers *AnswerSet) bool

// The dispatch tables are the full set of supported variants. Loading a
// template with an unknown op fails validation instead of failing at
// evaluation time.
var formulaFuncs = map[FormulaOp]formulaFunc{
	OpDeltaOf: evalDeltaOf,
	OpSumOf:   evalSumOf,
}

var conditionFuncs = map[ConditionOp]conditionFunc{
	OpEqualsBool:   evalEqualsBool,
	OpEqualsOption: evalEqualsOption,
}

func evalDeltaOf(f Formula, answers *AnswerSet) string {
	a, okA := answers.Number(f.A)
	b, okB := answers.Number(f.B)
	if !okA || !okB {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f", a-b)
}

func evalSumOf(f Formula, answers *AnswerSet) string {
	a, okA := answers.Number(f.A)
	b, okB := answers.Number(f.B)
	if !okA || !okB {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f", a+b)
}

func evalEqualsBool(c Condition, answers *AnswerSet) bool {
	want, ok := c.Value.(bool)
	if !ok {
		return false
	}
	got, ok := answers.Bool(c.Field)
	return ok && got == want
}

func evalEqualsOption(c Condition, answers *AnswerSet) bool {
	want, ok := c.Value.(string)
	if !ok {
		return false
	}
	got, ok := answers.String(c.Field)
	return ok && got == want
}

// EvaluateFormula runs a calculated field's formula. Unknown ops yield the
// sentinel; the loader rejects them for any loaded template.
func EvaluateFormula(f Formula, answers *AnswerSet) string {
	fn, ok := formulaFuncs[f.Op]
	if !ok {
		return NotAvailable
	}
	return fn(f, answers)
}

// EvaluateCondition runs a field's visibility predicate.
func EvaluateCondition(c Condition, answers *AnswerSet) bool {
	fn, ok := conditionFuncs[c.Op]
	if !ok {
		return false
	}
	return fn(c, answers)
}
