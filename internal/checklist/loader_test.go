package checklist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltin(t *testing.T) {
	tpls, err := LoadBuiltin()
	require.NoError(t, err)
	require.NotEmpty(t, tpls)

	registry, err := NewRegistry(tpls)
	require.NoError(t, err)

	tpl, ok := registry.ByID("PLT-AA-PREV")
	require.True(t, ok)
	assert.Equal(t, "Mantenimiento preventivo de Aire Acondicionado", tpl.Name)

	// Resolution is by task-type name.
	byName, ok := registry.Resolve(tpl.Name)
	require.True(t, ok)
	assert.Same(t, tpl, byName)
}

func TestRegistry_ResolveMiss(t *testing.T) {
	registry, err := NewRegistry([]*Template{minimalTemplate("TPL-A", "Tipo A")})
	require.NoError(t, err)

	_, ok := registry.Resolve("Tipo inexistente")
	assert.False(t, ok)
}

func TestRegistry_ReplaceRejectsDuplicates(t *testing.T) {
	registry, err := NewRegistry([]*Template{minimalTemplate("TPL-A", "Tipo A")})
	require.NoError(t, err)

	err = registry.Replace([]*Template{
		minimalTemplate("TPL-B", "Tipo B"),
		minimalTemplate("TPL-B", "Tipo C"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate template id")

	err = registry.Replace([]*Template{
		minimalTemplate("TPL-B", "Tipo B"),
		minimalTemplate("TPL-C", "Tipo B"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate template name")

	// Failed replaces keep the previous snapshot.
	_, ok := registry.Resolve("Tipo A")
	assert.True(t, ok)
}

func TestLoadDir_MissingDirIsEmpty(t *testing.T) {
	tpls, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, tpls)

	tpls, err = LoadDir("")
	require.NoError(t, err)
	assert.Empty(t, tpls)
}

func TestLoadAll_DirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	override := `
id: PLT-AA-PREV
name: Mantenimiento preventivo de Aire Acondicionado
fields:
  - {id: soloUno, label: Solo uno, kind: boolean, required: true}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "override.yaml"), []byte(override), 0o644))

	tpls, err := LoadAll(dir)
	require.NoError(t, err)
	registry, err := NewRegistry(tpls)
	require.NoError(t, err)

	tpl, ok := registry.ByID("PLT-AA-PREV")
	require.True(t, ok)
	assert.Len(t, tpl.Fields, 1)
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(tpl *Template)
		wantErr string
	}{
		{name: "valid", mutate: func(tpl *Template) {}},
		{name: "missing id", mutate: func(tpl *Template) { tpl.ID = "" }, wantErr: "id is required"},
		{name: "missing name", mutate: func(tpl *Template) { tpl.Name = "" }, wantErr: "name is required"},
		{name: "no fields", mutate: func(tpl *Template) { tpl.Fields = nil }, wantErr: "at least one field"},
		{
			name:    "duplicate field id",
			mutate:  func(tpl *Template) { tpl.Fields = append(tpl.Fields, tpl.Fields[0]) },
			wantErr: "duplicate field id",
		},
		{
			name: "unknown kind",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{ID: "x", Kind: FieldKind("slider")})
			},
			wantErr: "unknown kind",
		},
		{
			name: "options without options",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{ID: "x", Kind: KindOptions})
			},
			wantErr: "requires options",
		},
		{
			name: "calculated without formula",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{ID: "x", Kind: KindCalculated})
			},
			wantErr: "requires a formula",
		},
		{
			name: "formula on unknown dependency",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{
					ID: "x", Kind: KindCalculated,
					Formula: &Formula{Op: OpDeltaOf, A: "nope", B: "check"},
				})
			},
			wantErr: "unknown field",
		},
		{
			name: "unknown formula op",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{
					ID: "x", Kind: KindCalculated,
					Formula: &Formula{Op: FormulaOp("product_of"), A: "check", B: "check"},
				})
			},
			wantErr: "unknown formula op",
		},
		{
			name: "formula on non-calculated field",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{
					ID: "x", Kind: KindText,
					Formula: &Formula{Op: OpDeltaOf, A: "check", B: "check"},
				})
			},
			wantErr: "only valid on calculated",
		},
		{
			name: "subtable without columns",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{ID: "x", Kind: KindSubtable})
			},
			wantErr: "requires columns",
		},
		{
			name: "subtable duplicate column",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{
					ID: "x", Kind: KindSubtable,
					Columns: []SubtableColumn{
						{ID: "a", ValueKind: ColumnText},
						{ID: "a", ValueKind: ColumnText},
					},
				})
			},
			wantErr: "duplicate subtable column",
		},
		{
			name: "photo_min on non-photo field",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{ID: "x", Kind: KindText, PhotoMin: 2})
			},
			wantErr: "only valid on photo",
		},
		{
			name: "condition on unknown field",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{
					ID: "x", Kind: KindText,
					Condition: &Condition{Op: OpEqualsBool, Field: "nope", Value: true},
				})
			},
			wantErr: "unknown field",
		},
		{
			name: "unknown condition op",
			mutate: func(tpl *Template) {
				tpl.Fields = append(tpl.Fields, Field{
					ID: "x", Kind: KindText,
					Condition: &Condition{Op: ConditionOp("greater_than"), Field: "check", Value: 1},
				})
			},
			wantErr: "unknown condition op",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := minimalTemplate("TPL-X", "Tipo X")
			tt.mutate(tpl)
			err := ValidateTemplate(tpl)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func minimalTemplate(id, name string) *Template {
	return &Template{
		ID:   id,
		Name: name,
		Fields: []Field{
			{ID: "check", Label: "Check", Kind: KindBoolean, Required: true},
		},
	}
}
