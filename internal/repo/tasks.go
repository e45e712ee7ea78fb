package repo

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mrovira/fieldops/internal/events"
	"github.com/mrovira/fieldops/internal/inventory"
	"github.com/mrovira/fieldops/internal/model"
)

// TaskRepo stores work orders. It owns OS number assignment on create and the
// stock deduction on the completion edge in Update, so both happen exactly
// once per task no matter how many sessions touch it.
type TaskRepo struct {
	mu    sync.Mutex
	tasks map[string]model.Task

	ledger *inventory.Ledger
	bus    *events.Bus
	audit  *events.AuditLogger
	logger *log.Logger
	now    func() time.Time
}

// NewTaskRepo creates an empty repository. ledger, bus, and audit may each be
// nil when the corresponding side effect is not wanted.
func NewTaskRepo(logger *log.Logger, ledger *inventory.Ledger, bus *events.Bus, audit *events.AuditLogger) *TaskRepo {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &TaskRepo{
		tasks:  make(map[string]model.Task),
		ledger: ledger,
		bus:    bus,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// Create registers a new work order, assigning its ID and OS number. The OS
// number year comes from the scheduled date, falling back to the current year
// for unscheduled orders.
func (r *TaskRepo) Create(t model.Task) (model.Task, error) {
	if t.Title == "" {
		return model.Task{}, fmt.Errorf("task requires a title")
	}
	id, err := model.GenerateID(model.IDTypeTask)
	if err != nil {
		return model.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	year := t.ScheduledDate.Year()
	if t.ScheduledDate.IsZero() {
		year = r.now().Year()
	}
	t.ID = id
	t.OSNumber = model.NextOSNumber(r.osNumbersLocked(), year)
	if t.Status == "" {
		t.Status = model.TaskStatusPending
	}
	nowUTC := r.now().UTC()
	t.CreatedAt = nowUTC
	t.UpdatedAt = nowUTC

	r.tasks[t.ID] = t.Clone()
	return t, nil
}

// Get returns a deep copy of one task.
func (r *TaskRepo) Get(id string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

// Update persists a modified task. Status changes are checked against the
// work-order transition table, and the ID, OS number, and creation timestamp
// of the stored record always win. Crossing into completed deducts the
// consumed materials from the ledger.
func (r *TaskRepo) Update(t model.Task) (model.Task, error) {
	r.mu.Lock()
	prev, ok := r.tasks[t.ID]
	if !ok {
		r.mu.Unlock()
		return model.Task{}, fmt.Errorf("task %q: %w", t.ID, ErrNotFound)
	}
	if t.Status != prev.Status {
		if err := model.ValidateTaskTransition(prev.Status, t.Status); err != nil {
			r.mu.Unlock()
			return model.Task{}, err
		}
	}

	t.OSNumber = prev.OSNumber
	t.CreatedAt = prev.CreatedAt
	t.UpdatedAt = r.now().UTC()
	r.tasks[t.ID] = t.Clone()

	completedNow := prev.Status != model.TaskStatusCompleted && t.Status == model.TaskStatusCompleted
	r.mu.Unlock()

	if completedNow {
		r.onCompleted(t)
	}
	return t, nil
}

func (r *TaskRepo) onCompleted(t model.Task) {
	if r.ledger != nil {
		r.ledger.DebitUsages(t.Materials)
	}
	if r.bus != nil {
		r.bus.Publish(events.EventTaskCompleted, map[string]interface{}{
			"task_id":   t.ID,
			"os_number": t.OSNumber,
		})
	}
	if r.audit != nil {
		err := r.audit.Log(events.AuditEntry{
			EventType:    string(events.EventTaskCompleted),
			TaskID:       t.ID,
			OSNumber:     t.OSNumber,
			EquipmentID:  t.EquipmentID,
			TechnicianID: t.TechnicianID,
			VerifyMethod: t.VerifyMethod,
		})
		if err != nil {
			r.logger.Printf("WARN tasks: audit log failed for %s: %v", t.ID, err)
		}
	}
}

// List returns all tasks sorted by OS number.
func (r *TaskRepo) List() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OSNumber < out[j].OSNumber })
	return out
}

// ForEquipment returns the maintenance history of one asset, newest scheduled
// visit first.
func (r *TaskRepo) ForEquipment(equipmentID string) []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Task
	for _, t := range r.tasks {
		if t.EquipmentID == equipmentID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.After(out[j].ScheduledDate) })
	return out
}

// ForTechnician returns a technician's assigned orders sorted by scheduled
// date ascending, the order they should be worked.
func (r *TaskRepo) ForTechnician(technicianID string) []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Task
	for _, t := range r.tasks {
		if t.TechnicianID == technicianID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out
}

func (r *TaskRepo) osNumbersLocked() []string {
	nums := make([]string, 0, len(r.tasks))
	for _, t := range r.tasks {
		nums = append(nums, t.OSNumber)
	}
	return nums
}
