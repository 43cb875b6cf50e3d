package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

// Sink persists audit entries. Both storage engines implement it.
type Sink interface {
	AppendAudit(ctx context.Context, entry *models.AuditLog) error
}

type Logger struct {
	sink Sink
	now  func() time.Time
}

func New(sink Sink) *Logger {
	return &Logger{sink: sink, now: time.Now}
}

func (l *Logger) Log(ctx context.Context, ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:    ev.UserID,
		Action:    ev.Action,
		Entity:    ev.Entity,
		EntityID:  ev.EntityID,
		Metadata:  metaJSON,
		CreatedAt: l.now().UTC(),
	}

	return l.sink.AppendAudit(ctx, &entry)
}
