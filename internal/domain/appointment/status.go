package appointment

import "github.com/BruksfildServices01/barber-turnos/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ActiveStatuses occupy a slot and count against the one-per-user limit.
var ActiveStatuses = []string{string(StatusPending), string(StatusAccepted)}

func InitialStatus() Status {
	return StatusPending
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusAccepted
}

func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// ===============================
// Validations
// ===============================

// ParseDecision accepts only the two statuses an admin may set.
func ParseDecision(raw string) (Status, error) {
	switch Status(raw) {
	case StatusAccepted, StatusRejected:
		return Status(raw), nil
	default:
		return "", httperr.Validation("invalid_status")
	}
}

// CanDecide allows a single transition out of pending.
func CanDecide(current Status) error {
	if current != StatusPending {
		return httperr.Conflict("invalid_state")
	}
	return nil
}
