// Package workorder drives a technician's working session on one task: the
// checklist answers, the equipment identity check, and the status
// transitions, with nothing persisted until Start or Complete succeeds.
package workorder

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/mrovira/fieldops/internal/checklist"
	"github.com/mrovira/fieldops/internal/events"
	"github.com/mrovira/fieldops/internal/model"
	"github.com/mrovira/fieldops/internal/repo"
	"github.com/mrovira/fieldops/internal/verify"
)

// ErrSessionClosed is returned by mutating calls after Close.
var ErrSessionClosed = errors.New("session is closed")

// Guard is the result of a precondition check. When OK is false, Reasons
// lists every unmet condition so the caller can show them all at once.
type Guard struct {
	OK      bool
	Reasons []string
}

// Session is a working copy of one task plus its live checklist state. It is
// not safe for concurrent use; one session belongs to one technician.
type Session struct {
	task     model.Task
	template *checklist.Template
	answers  *checklist.AnswerSet
	verifier *verify.Verifier

	tasks  *repo.TaskRepo
	bus    *events.Bus
	audit  *events.AuditLogger
	logger *log.Logger
	closed bool
}

// NewSession loads the task and seeds the checklist from its saved answers.
// Tasks whose title matches no template carry no checklist; they can still be
// started and completed once the equipment is verified.
func NewSession(taskID string, tasks *repo.TaskRepo, registry *checklist.Registry, bus *events.Bus, audit *events.AuditLogger, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	task, err := tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	if model.IsTerminal(task.Status) {
		return nil, fmt.Errorf("task %s is already %s", task.ID, task.Status)
	}

	var tpl *checklist.Template
	if registry != nil {
		if t, ok := registry.Resolve(task.Title); ok {
			tpl = t
		} else {
			logger.Printf("WARN workorder: no checklist template for task type %q", task.Title)
		}
	}

	answers := checklist.SeedAnswerSet(task.ChecklistData)
	checklist.Recompute(tpl, answers)

	return &Session{
		task:     task,
		template: tpl,
		answers:  answers,
		verifier: verify.New(task.EquipmentID),
		tasks:    tasks,
		bus:      bus,
		audit:    audit,
		logger:   logger,
	}, nil
}

// Task returns a copy of the session's working task state.
func (s *Session) Task() model.Task {
	return s.task.Clone()
}

// Template returns the resolved checklist template, nil when the task type
// has none.
func (s *Session) Template() *checklist.Template {
	return s.template
}

// Answers exposes the live answer set for reading.
func (s *Session) Answers() *checklist.AnswerSet {
	return s.answers
}

// SetAnswer records one field value and recomputes the calculated fields.
func (s *Session) SetAnswer(fieldID string, value any) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.answers.Set(fieldID, value)
	checklist.Recompute(s.template, s.answers)
	return nil
}

// ClearAnswer removes a field value and recomputes.
func (s *Session) ClearAnswer(fieldID string) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.answers.Delete(fieldID)
	checklist.Recompute(s.template, s.answers)
	return nil
}

// VerifyScan checks a scanned QR code against the task's equipment. Once the
// session is verified, further scans are no-ops.
func (s *Session) VerifyScan(code string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.verifier.Verified() {
		return nil
	}
	if err := s.verifier.Scan(code); err != nil {
		return err
	}
	s.onVerified()
	return nil
}

// VerifyManually records an explicit override when the QR label is damaged
// or unreadable. The audit trail keeps the method distinct from a scan. A
// no-op when the session is already verified.
func (s *Session) VerifyManually() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.verifier.Verified() {
		return nil
	}
	s.verifier.ConfirmManually()
	s.onVerified()
	return nil
}

func (s *Session) onVerified() {
	if s.bus != nil {
		s.bus.Publish(events.EventEquipmentVerified, map[string]interface{}{
			"task_id":      s.task.ID,
			"equipment_id": s.task.EquipmentID,
			"method":       string(s.verifier.Method()),
		})
	}
	s.auditLog(events.EventEquipmentVerified)
}

// Verifier exposes the identity check state.
func (s *Session) Verifier() *verify.Verifier {
	return s.verifier
}

// CanStart reports whether the order may move to in progress.
func (s *Session) CanStart() Guard {
	var reasons []string
	if s.closed {
		reasons = append(reasons, "session is closed")
	}
	if s.task.Status != model.TaskStatusPending {
		reasons = append(reasons, fmt.Sprintf("task is %s, not pending", s.task.Status))
	}
	if !s.verifier.Verified() {
		reasons = append(reasons, "equipment identity not verified")
	}
	return Guard{OK: len(reasons) == 0, Reasons: reasons}
}

// Start moves the order to in progress and persists the checklist state
// entered so far.
func (s *Session) Start() error {
	if g := s.CanStart(); !g.OK {
		return fmt.Errorf("cannot start task %s: %v", s.task.ID, g.Reasons)
	}
	s.snapshotChecklist()
	s.task.Status = model.TaskStatusInProgress

	updated, err := s.tasks.Update(s.task)
	if err != nil {
		s.task.Status = model.TaskStatusPending
		return err
	}
	s.task = updated

	if s.bus != nil {
		s.bus.Publish(events.EventTaskStarted, map[string]interface{}{
			"task_id":   s.task.ID,
			"os_number": s.task.OSNumber,
		})
	}
	s.auditLog(events.EventTaskStarted)
	return nil
}

// CanComplete reports whether the order may be closed out. The checklist
// must validate in full, unless the task type has no template.
func (s *Session) CanComplete() Guard {
	var reasons []string
	if s.closed {
		reasons = append(reasons, "session is closed")
	}
	switch s.task.Status {
	case model.TaskStatusPending, model.TaskStatusInProgress:
	default:
		reasons = append(reasons, fmt.Sprintf("task is %s", s.task.Status))
	}
	if !s.verifier.Verified() {
		reasons = append(reasons, "equipment identity not verified")
	}
	if s.template != nil {
		for _, p := range checklist.Validate(s.template, s.answers) {
			reasons = append(reasons, fmt.Sprintf("%s: %s", p.FieldID, p.Message))
		}
	}
	return Guard{OK: len(reasons) == 0, Reasons: reasons}
}

// Complete persists the finished order. The repository applies the status
// transition and deducts the consumed materials from stock.
func (s *Session) Complete() error {
	if g := s.CanComplete(); !g.OK {
		return fmt.Errorf("cannot complete task %s: %v", s.task.ID, g.Reasons)
	}
	checklist.Recompute(s.template, s.answers)
	s.snapshotChecklist()
	s.task.Materials = checklist.ExtractMaterials(s.answers)
	s.task.VerifyMethod = string(s.verifier.Method())

	for _, w := range checklist.RangeWarnings(s.template, s.answers) {
		s.logger.Printf("WARN workorder: %s reading %s=%.1f outside [%.1f, %.1f]", s.task.OSNumber, w.FieldID, w.Value, w.Min, w.Max)
	}

	prev := s.task.Status
	s.task.Status = model.TaskStatusCompleted
	updated, err := s.tasks.Update(s.task)
	if err != nil {
		s.task.Status = prev
		return err
	}
	s.task = updated
	s.closed = true
	return nil
}

// Close discards the session without persisting anything.
func (s *Session) Close() {
	s.closed = true
}

func (s *Session) snapshotChecklist() {
	s.task.ChecklistData = s.answers.Values()
	if s.template != nil {
		s.task.Photos = checklist.ExtractPhotos(s.template, s.answers)
	}
}

func (s *Session) auditLog(event events.EventType) {
	if s.audit == nil {
		return
	}
	err := s.audit.Log(events.AuditEntry{
		EventType:    string(event),
		TaskID:       s.task.ID,
		OSNumber:     s.task.OSNumber,
		EquipmentID:  s.task.EquipmentID,
		TechnicianID: s.task.TechnicianID,
		VerifyMethod: string(s.verifier.Method()),
	})
	if err != nil {
		s.logger.Printf("WARN workorder: audit log failed for %s: %v", s.task.ID, err)
	}
}
