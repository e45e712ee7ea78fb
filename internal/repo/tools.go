package repo

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mrovira/fieldops/internal/model"
)

// ToolRepo tracks the tool pool and its assignment history.
type ToolRepo struct {
	mu    sync.Mutex
	tools map[string]model.Tool
	now   func() time.Time
}

func NewToolRepo() *ToolRepo {
	return &ToolRepo{tools: make(map[string]model.Tool), now: time.Now}
}

func (r *ToolRepo) Put(t model.Tool) error {
	if t.ID == "" || t.Name == "" {
		return fmt.Errorf("tool requires id and name")
	}
	if t.Status == "" {
		t.Status = model.ToolStatusAvailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.ID] = cloneTool(t)
	return nil
}

func (r *ToolRepo) Get(id string) (model.Tool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tools[id]
	if !ok {
		return model.Tool{}, fmt.Errorf("tool %q: %w", id, ErrNotFound)
	}
	return cloneTool(t), nil
}

func (r *ToolRepo) List() []model.Tool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, cloneTool(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Assign hands a tool to a technician and opens an assignment history entry.
// Only available tools can be assigned.
func (r *ToolRepo) Assign(toolID, technicianID string) error {
	if technicianID == "" {
		return fmt.Errorf("technician id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tools[toolID]
	if !ok {
		return fmt.Errorf("tool %q: %w", toolID, ErrNotFound)
	}
	if t.Status != model.ToolStatusAvailable {
		return fmt.Errorf("tool %q is %s, not available", toolID, t.Status)
	}
	t.Status = model.ToolStatusAssigned
	t.AssignedTechnicianID = technicianID
	t.AssignmentHistory = append(t.AssignmentHistory, model.ToolAssignment{
		TechnicianID: technicianID,
		AssignedAt:   r.now().UTC(),
	})
	r.tools[toolID] = t
	return nil
}

// Return marks an assigned tool available again and closes the open history
// entry.
func (r *ToolRepo) Return(toolID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tools[toolID]
	if !ok {
		return fmt.Errorf("tool %q: %w", toolID, ErrNotFound)
	}
	if t.Status != model.ToolStatusAssigned {
		return fmt.Errorf("tool %q is %s, not assigned", toolID, t.Status)
	}
	returned := r.now().UTC()
	for i := len(t.AssignmentHistory) - 1; i >= 0; i-- {
		if t.AssignmentHistory[i].ReturnedAt == nil {
			t.AssignmentHistory[i].ReturnedAt = &returned
			break
		}
	}
	t.Status = model.ToolStatusAvailable
	t.AssignedTechnicianID = ""
	r.tools[toolID] = t
	return nil
}

// SetStatus moves an unassigned tool between available, in_repair, and
// maintenance. Assigned tools must be returned first.
func (r *ToolRepo) SetStatus(toolID string, status model.ToolStatus) error {
	switch status {
	case model.ToolStatusAvailable, model.ToolStatusInRepair, model.ToolStatusMaintenance:
	default:
		return fmt.Errorf("cannot set tool status to %q directly", status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tools[toolID]
	if !ok {
		return fmt.Errorf("tool %q: %w", toolID, ErrNotFound)
	}
	if t.Status == model.ToolStatusAssigned {
		return fmt.Errorf("tool %q is assigned, return it first", toolID)
	}
	t.Status = status
	r.tools[toolID] = t
	return nil
}

func cloneTool(t model.Tool) model.Tool {
	c := t
	c.AssignmentHistory = append([]model.ToolAssignment(nil), t.AssignmentHistory...)
	return c
}
