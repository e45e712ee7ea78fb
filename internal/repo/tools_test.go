package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrovira/fieldops/internal/model"
)

func TestToolRepo_AssignAndReturn(t *testing.T) {
	r := NewToolRepo()
	require.NoError(t, r.Put(model.Tool{ID: "tool_1", Name: "Manifold digital", Category: model.ToolCategoryHVAC}))

	require.NoError(t, r.Assign("tool_1", "user_tech"))
	tool, err := r.Get("tool_1")
	require.NoError(t, err)
	assert.Equal(t, model.ToolStatusAssigned, tool.Status)
	assert.Equal(t, "user_tech", tool.AssignedTechnicianID)
	require.Len(t, tool.AssignmentHistory, 1)
	assert.Nil(t, tool.AssignmentHistory[0].ReturnedAt)

	// Already assigned.
	assert.Error(t, r.Assign("tool_1", "user_other"))

	require.NoError(t, r.Return("tool_1"))
	tool, err = r.Get("tool_1")
	require.NoError(t, err)
	assert.Equal(t, model.ToolStatusAvailable, tool.Status)
	assert.Empty(t, tool.AssignedTechnicianID)
	require.Len(t, tool.AssignmentHistory, 1)
	assert.NotNil(t, tool.AssignmentHistory[0].ReturnedAt)

	assert.Error(t, r.Return("tool_1"))
}

func TestToolRepo_SetStatus(t *testing.T) {
	r := NewToolRepo()
	require.NoError(t, r.Put(model.Tool{ID: "tool_1", Name: "Pinza amperimétrica"}))

	require.NoError(t, r.SetStatus("tool_1", model.ToolStatusInRepair))
	tool, err := r.Get("tool_1")
	require.NoError(t, err)
	assert.Equal(t, model.ToolStatusInRepair, tool.Status)

	// Assigned is only reachable through Assign.
	assert.Error(t, r.SetStatus("tool_1", model.ToolStatusAssigned))

	require.NoError(t, r.SetStatus("tool_1", model.ToolStatusAvailable))
	require.NoError(t, r.Assign("tool_1", "user_tech"))
	assert.Error(t, r.SetStatus("tool_1", model.ToolStatusMaintenance))
}

func TestToolRepo_HistoryIsCopied(t *testing.T) {
	r := NewToolRepo()
	require.NoError(t, r.Put(model.Tool{ID: "tool_1", Name: "Escalera"}))
	require.NoError(t, r.Assign("tool_1", "user_tech"))

	tool, err := r.Get("tool_1")
	require.NoError(t, err)
	tool.AssignmentHistory[0].TechnicianID = "tampered"

	again, err := r.Get("tool_1")
	require.NoError(t, err)
	assert.Equal(t, "user_tech", again.AssignmentHistory[0].TechnicianID)
}
