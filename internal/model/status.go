package model

import "fmt"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type ToolStatus string

const (
	ToolStatusAvailable   ToolStatus = "available"
	ToolStatusAssigned    ToolStatus = "assigned"
	ToolStatusInRepair    ToolStatus = "in_repair"
	ToolStatusMaintenance ToolStatus = "maintenance"
)

var terminalTaskStatuses = map[TaskStatus]bool{
	TaskStatusCompleted: true,
}

// Work-order transitions: pending → in_progress → completed, plus a direct
// pending → completed path for visits closed within a single session.
var validTaskTransitions = map[TaskStatus]map[TaskStatus]bool{
	TaskStatusPending: {
		TaskStatusInProgress: true,
		TaskStatusCompleted:  true,
	},
	TaskStatusInProgress: {
		TaskStatusCompleted: true,
	},
}

func IsTerminal(s TaskStatus) bool {
	return terminalTaskStatuses[s]
}

func ValidateTaskTransition(from, to TaskStatus) error {
	if IsTerminal(from) {
		return fmt.Errorf("cannot transition from terminal status %q", from)
	}
	allowed, ok := validTaskTransitions[from]
	if !ok {
		return fmt.Errorf("unknown status %q", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid task transition: %q → %q", from, to)
	}
	return nil
}
