// Package verify implements the per-session equipment identity check a
// technician must pass before checklist work counts toward completion.
package verify

import "fmt"

// Method records how a session was verified. Manual confirmation is an
// escape hatch for scanning-incapable clients and is tagged so the audit
// trail can tell the two apart.
type Method string

const (
	MethodNone    Method = ""
	MethodScanned Method = "scanned"
	MethodManual  Method = "manual"
)

// Verifier holds the verification state for one task-editing session. The
// zero value is unusable; bind the expected equipment ID with New. State is
// discarded with the session, never persisted.
type Verifier struct {
	equipmentID string
	verified    bool
	method      Method
	lastError   string
}

// New binds a verifier to the equipment a task references.
func New(equipmentID string) *Verifier {
	return &Verifier{equipmentID: equipmentID}
}

// Scan compares a scanned identifier against the bound equipment ID. The
// comparison is exact and case-sensitive. A mismatch leaves the verifier
// unverified and records a transient error; retries are unlimited.
func (v *Verifier) Scan(scanned string) error {
	v.lastError = ""
	if v.verified {
		return nil
	}
	if scanned != v.equipmentID {
		v.lastError = fmt.Sprintf("código incorrecto: se esperaba %s", v.equipmentID)
		return fmt.Errorf("scanned code %q does not match equipment %q", scanned, v.equipmentID)
	}
	v.verified = true
	v.method = MethodScanned
	return nil
}

// ConfirmManually marks the session verified without comparing any value.
// Trust-the-operator path for clients that cannot scan.
func (v *Verifier) ConfirmManually() {
	v.lastError = ""
	if v.verified {
		return
	}
	v.verified = true
	v.method = MethodManual
}

// Verified reports whether the session passed verification.
func (v *Verifier) Verified() bool {
	return v.verified
}

// Method returns how the session was verified.
func (v *Verifier) Method() Method {
	return v.method
}

// LastError returns the message from the most recent failed scan. It clears
// on the next attempt.
func (v *Verifier) LastError() string {
	return v.lastError
}

// Reset discards all session state.
func (v *Verifier) Reset() {
	v.verified = false
	v.method = MethodNone
	v.lastError = ""
}
