package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	ActionAppointmentCreated  = "appointment_created"
	ActionAppointmentAccepted = "appointment_accepted"
	ActionAppointmentRejected = "appointment_rejected"
	ActionAppointmentConflict = "appointment_conflict"
	ActionLoginSucceeded      = "login_succeeded"
	ActionLoginFailed         = "login_failed"

	EntityAppointment = "appointment"
	EntityUser        = "user"
)

const writeTimeout = 5 * time.Second

type Event struct {
	UserID   *uint
	Action   string
	Entity   string
	EntityID string
	Metadata any
}

// Dispatcher writes events on a background worker so auditing never slows
// down or fails a request.
type Dispatcher struct {
	logger *Logger
	queue  chan Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(logger *Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		queue:  make(chan Event, 100),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := d.logger.Log(ctx, ev); err != nil {
			slog.Error("audit write failed", "action", ev.Action, "error", err)
		}
		cancel()
	}
}

// Dispatch never blocks; a full queue drops the event.
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		slog.Warn("audit queue full, dropping event", "action", ev.Action)
	}
}

// Close stops accepting events and waits until queued ones are written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
}
