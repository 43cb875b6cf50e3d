package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
	"github.com/BruksfildServices01/barber-turnos/internal/validators"
)

// Draft is the raw input of a booking request.
type Draft struct {
	Client  string `json:"client"`
	Service string `json:"service"`
	Time    string `json:"time"`
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTime accepts RFC 3339 instants and naive local date-times, the latter
// read in loc.
func ParseTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, httperr.Validation("invalid_time")
}

// ===============================
// Domain Actions
// ===============================

// New validates d and builds a pending appointment with a fresh id. Times
// are cut to microseconds, the precision PostgreSQL keeps.
func New(d Draft, owner *uint, loc *time.Location, now time.Time) (*models.Appointment, error) {
	client := validators.CleanName(d.Client)
	service := validators.CleanName(d.Service)
	if client == "" || service == "" || strings.TrimSpace(d.Time) == "" {
		return nil, httperr.Validation("missing_fields")
	}
	if !validators.FitsColumn(client, validators.MaxNameLength) ||
		!validators.FitsColumn(service, validators.MaxNameLength) {
		return nil, httperr.Validation("field_too_long")
	}

	at, err := ParseTime(d.Time, loc)
	if err != nil {
		return nil, err
	}

	return &models.Appointment{
		ID:          uuid.NewString(),
		Client:      client,
		Service:     service,
		Time:        at.UTC().Truncate(time.Microsecond),
		Status:      string(InitialStatus()),
		OwnerUserID: owner,
		CreatedAt:   now.UTC().Truncate(time.Microsecond),
	}, nil
}

// Decide moves ap from pending to target exactly once.
func Decide(ap *models.Appointment, target Status, now time.Time) error {
	if _, err := ParseDecision(string(target)); err != nil {
		return err
	}
	if err := CanDecide(Status(ap.Status)); err != nil {
		return err
	}

	decided := now.UTC().Truncate(time.Microsecond)
	ap.Status = string(target)
	ap.DecidedAt = &decided
	return nil
}
