package appointment

import (
	"strings"
	"testing"
	"time"

	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

var now = time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

func TestNew_ValidDraft(t *testing.T) {
	ap, err := New(Draft{Client: " Ana ", Service: "Corte", Time: "2025-11-04T09:00:00Z"}, nil, time.UTC, now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ap.ID == "" {
		t.Error("expected an id to be assigned")
	}
	if ap.Client != "Ana" {
		t.Errorf("Client = %q, want %q", ap.Client, "Ana")
	}
	if ap.Status != string(StatusPending) {
		t.Errorf("Status = %q, want pending", ap.Status)
	}
	if !ap.Time.Equal(time.Date(2025, 11, 4, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Time = %v", ap.Time)
	}
	if ap.OwnerUserID != nil {
		t.Error("public appointments have no owner")
	}
	if !ap.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", ap.CreatedAt, now)
	}
}

func TestNew_TruncatesToMicroseconds(t *testing.T) {
	clock := time.Date(2025, 11, 1, 12, 0, 0, 123456789, time.UTC)
	ap, err := New(Draft{Client: "Ana", Service: "Corte", Time: "2025-11-04T09:00:00.987654321Z"}, nil, time.UTC, clock)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ap.Time.Nanosecond() != 987654000 {
		t.Errorf("time nanos = %d, want 987654000", ap.Time.Nanosecond())
	}
	if ap.CreatedAt.Nanosecond() != 123456000 {
		t.Errorf("created_at nanos = %d, want 123456000", ap.CreatedAt.Nanosecond())
	}

	if err := Decide(ap, StatusAccepted, clock); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if ap.DecidedAt.Nanosecond() != 123456000 {
		t.Errorf("decided_at nanos = %d, want 123456000", ap.DecidedAt.Nanosecond())
	}
}

func TestNew_AssignsDistinctIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ap, err := New(Draft{Client: "Ana", Service: "Corte", Time: "2025-11-04T09:00:00Z"}, nil, time.UTC, now)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if seen[ap.ID] {
			t.Fatalf("id %s reused", ap.ID)
		}
		seen[ap.ID] = true
	}
}

func TestNew_SetsOwner(t *testing.T) {
	owner := uint(7)
	ap, err := New(Draft{Client: "Juan", Service: "Afeitado", Time: "2025-11-04T10:00:00Z"}, &owner, time.UTC, now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ap.OwnerUserID == nil || *ap.OwnerUserID != 7 {
		t.Errorf("OwnerUserID = %v, want 7", ap.OwnerUserID)
	}
}

func TestNew_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		code  string
	}{
		{"missing client", Draft{Service: "Corte", Time: "2025-11-04T09:00:00Z"}, "missing_fields"},
		{"blank service", Draft{Client: "Ana", Service: "   ", Time: "2025-11-04T09:00:00Z"}, "missing_fields"},
		{"missing time", Draft{Client: "Ana", Service: "Corte"}, "missing_fields"},
		{"client too long", Draft{Client: strings.Repeat("a", 101), Service: "Corte", Time: "2025-11-04T09:00:00Z"}, "field_too_long"},
		{"garbage time", Draft{Client: "Ana", Service: "Corte", Time: "mañana"}, "invalid_time"},
		{"impossible date", Draft{Client: "Ana", Service: "Corte", Time: "2025-02-30T09:00:00Z"}, "invalid_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.draft, nil, time.UTC, now)
			if !httperr.IsKind(err, httperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !httperr.IsBusiness(err, tt.code) {
				t.Errorf("code = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseTime_NaiveUsesLocation(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)

	for _, raw := range []string{"2025-11-04T09:00", "2025-11-04T09:00:00", "2025-11-04 09:00"} {
		got, err := ParseTime(raw, loc)
		if err != nil {
			t.Fatalf("ParseTime(%q): %v", raw, err)
		}
		want := time.Date(2025, 11, 4, 12, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("ParseTime(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestDecide(t *testing.T) {
	ap := &models.Appointment{Status: string(StatusPending)}

	if err := Decide(ap, StatusAccepted, now); err != nil {
		t.Fatalf("Decide accepted: %v", err)
	}
	if ap.Status != string(StatusAccepted) {
		t.Errorf("Status = %q, want accepted", ap.Status)
	}
	if ap.DecidedAt == nil || !ap.DecidedAt.Equal(now) {
		t.Errorf("DecidedAt = %v", ap.DecidedAt)
	}

	err := Decide(ap, StatusRejected, now.Add(time.Hour))
	if !httperr.IsKind(err, httperr.KindConflict) {
		t.Fatalf("second decision: expected conflict, got %v", err)
	}
	if ap.Status != string(StatusAccepted) {
		t.Errorf("terminal status changed to %q", ap.Status)
	}
}

func TestDecide_SameTargetTwiceFails(t *testing.T) {
	ap := &models.Appointment{Status: string(StatusPending)}
	if err := Decide(ap, StatusRejected, now); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if err := Decide(ap, StatusRejected, now); !httperr.IsKind(err, httperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDecide_InvalidTarget(t *testing.T) {
	ap := &models.Appointment{Status: string(StatusPending)}
	if err := Decide(ap, StatusPending, now); !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ap.Status != string(StatusPending) {
		t.Errorf("status changed to %q", ap.Status)
	}
}

func TestStatusPredicates(t *testing.T) {
	if !StatusPending.IsActive() || !StatusAccepted.IsActive() || StatusRejected.IsActive() {
		t.Error("unexpected IsActive results")
	}
	if StatusPending.IsTerminal() || !StatusAccepted.IsTerminal() || !StatusRejected.IsTerminal() {
		t.Error("unexpected IsTerminal results")
	}
	if _, err := ParseDecision("cancelled"); err == nil {
		t.Error("expected cancelled to be rejected")
	}
}
