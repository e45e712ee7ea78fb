package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	for _, idType := range []IDType{IDTypeTask, IDTypeStore, IDTypeUser, IDTypeTool, IDTypePurchase, IDTypeEquipment} {
		id, err := GenerateID(idType)
		require.NoError(t, err)
		assert.True(t, ValidateID(id), "generated ID should validate: %s", id)

		parsed, err := ParseIDType(id)
		require.NoError(t, err)
		assert.Equal(t, idType, parsed)
	}
}

func TestGenerateID_InvalidType(t *testing.T) {
	_, err := GenerateID(IDType("bogus"))
	assert.Error(t, err)
}

func TestParseIDTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id, err := GenerateID(IDTypeTask)
	require.NoError(t, err)

	ts, err := ParseIDTimestamp(id)
	require.NoError(t, err)
	assert.True(t, ts.After(before))
	assert.True(t, ts.Before(time.Now().Add(time.Second)))
}

func TestValidateID_Rejects(t *testing.T) {
	for _, id := range []string{"", "task_123", "bogus_0000000000_deadbeef", "task_0000000000_zzzzzzzz"} {
		assert.False(t, ValidateID(id), id)
	}
}

func TestTaskClone_Independent(t *testing.T) {
	orig := Task{
		ID:       "task_0000000000_deadbeef",
		Photos:   []string{"p1"},
		Materials: []MaterialUsage{{MaterialID: "MAT-001", Quantity: 2}},
		ChecklistData: AnswerValues{
			"fotos": []string{"p1"},
			"materials": []SubtableRow{
				{"materialId": "MAT-001", "quantity": "2"},
			},
		},
	}

	clone := orig.Clone()
	clone.Photos[0] = "changed"
	clone.Materials[0].Quantity = 99
	clone.ChecklistData["fotos"].([]string)[0] = "changed"
	clone.ChecklistData["materials"].([]SubtableRow)[0]["quantity"] = "99"

	assert.Equal(t, "p1", orig.Photos[0])
	assert.Equal(t, 2, orig.Materials[0].Quantity)
	assert.Equal(t, "p1", orig.ChecklistData["fotos"].([]string)[0])
	assert.Equal(t, "2", orig.ChecklistData["materials"].([]SubtableRow)[0]["quantity"])
}
