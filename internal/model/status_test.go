package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTaskTransition(t *testing.T) {
	testCases := []struct {
		name    string
		from    TaskStatus
		to      TaskStatus
		wantErr bool
	}{
		{"pending to in_progress", TaskStatusPending, TaskStatusInProgress, false},
		{"pending to completed", TaskStatusPending, TaskStatusCompleted, false},
		{"in_progress to completed", TaskStatusInProgress, TaskStatusCompleted, false},
		{"in_progress to pending", TaskStatusInProgress, TaskStatusPending, true},
		{"completed is terminal", TaskStatusCompleted, TaskStatusInProgress, true},
		{"completed to pending", TaskStatusCompleted, TaskStatusPending, true},
		{"unknown status", TaskStatus("archived"), TaskStatusCompleted, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTaskTransition(tc.from, tc.to)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(TaskStatusCompleted))
	assert.False(t, IsTerminal(TaskStatusPending))
	assert.False(t, IsTerminal(TaskStatusInProgress))
}
