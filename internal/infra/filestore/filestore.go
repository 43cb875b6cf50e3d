// Package filestore is the flat-file storage engine. Each collection lives
// in one JSON file that is read, modified and rewritten as a whole by every
// operation. A single in-process mutex serialises all operations; nothing
// protects the files from a second process.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/domain/user"
	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

const (
	appointmentsFile = "appointments.json"
	usersFile        = "users.json"
	auditFile        = "audit.log"
)

// Mirror receives every snapshot written to disk.
type Mirror interface {
	Enqueue(name string, data []byte)
}

type FileStore struct {
	mu     sync.Mutex
	dir    string
	mirror Mirror
}

type Option func(*FileStore)

func WithMirror(m Mirror) Option {
	return func(s *FileStore) { s.mirror = m }
}

// Open prepares dir for use; missing collection files read as empty.
func Open(dir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &FileStore{dir: dir}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

var (
	_ domain.Repository = (*FileStore)(nil)
	_ user.Directory    = (*FileStore)(nil)
)

func (s *FileStore) Close() error { return nil }

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (s *FileStore) ListPublic(ctx context.Context) ([]models.Appointment, error) {
	return s.listWhere(func(ap *models.Appointment) bool {
		return domain.Status(ap.Status).IsActive()
	})
}

func (s *FileStore) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return s.listWhere(func(*models.Appointment) bool { return true })
}

func (s *FileStore) CalendarSnapshot(ctx context.Context) ([]models.Appointment, error) {
	return s.ListPublic(ctx)
}

func (s *FileStore) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := s.loadAppointments()
	if err != nil {
		return nil, err
	}
	for i := range apps {
		if apps[i].ID == id {
			ap := apps[i]
			return &ap, nil
		}
	}
	return nil, httperr.NotFound("appointment_not_found")
}

func (s *FileStore) GetActiveForUser(ctx context.Context, userID uint) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := s.loadAppointments()
	if err != nil {
		return nil, err
	}
	return latestActive(apps, userID), nil
}

func (s *FileStore) Create(ctx context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := s.loadAppointments()
	if err != nil {
		return err
	}
	return s.saveAppointments(append(apps, *ap))
}

func (s *FileStore) CreateForUser(ctx context.Context, ap *models.Appointment) error {
	if ap.OwnerUserID == nil {
		return httperr.Validation("invalid_request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := s.loadAppointments()
	if err != nil {
		return err
	}
	if latestActive(apps, *ap.OwnerUserID) != nil {
		return httperr.Conflict("active_appointment")
	}
	return s.saveAppointments(append(apps, *ap))
}

func (s *FileStore) SetStatus(
	ctx context.Context,
	id string,
	status domain.Status,
	now time.Time,
) (*models.Appointment, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := s.loadAppointments()
	if err != nil {
		return nil, err
	}

	for i := range apps {
		if apps[i].ID != id {
			continue
		}
		if err := domain.Decide(&apps[i], status, now); err != nil {
			return nil, err
		}
		if err := s.saveAppointments(apps); err != nil {
			return nil, err
		}
		ap := apps[i]
		return &ap, nil
	}
	return nil, httperr.NotFound("appointment_not_found")
}

func (s *FileStore) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, auditFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// --------------------------------------------------
// User
// --------------------------------------------------

func (s *FileStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

func (s *FileStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.ID == id })
}

func (s *FileStore) EnsureUser(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}

	var maxID uint
	for i := range users {
		if users[i].Username == u.Username {
			return users[i].toModel(), nil
		}
		if users[i].ID > maxID {
			maxID = users[i].ID
		}
	}

	created := newUserRecord(u)
	created.ID = maxID + 1
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if err := s.save(usersFile, append(users, created)); err != nil {
		return nil, err
	}
	return created.toModel(), nil
}

// --------------------------------------------------
// helpers (callers hold s.mu unless noted)
// --------------------------------------------------

// listWhere takes the lock itself.
func (s *FileStore) listWhere(keep func(*models.Appointment) bool) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := s.loadAppointments()
	if err != nil {
		return nil, err
	}

	out := make([]models.Appointment, 0, len(apps))
	for i := range apps {
		if keep(&apps[i]) {
			out = append(out, apps[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out, nil
}

// findUser takes the lock itself.
func (s *FileStore) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if u := users[i].toModel(); match(u) {
			return u, nil
		}
	}
	return nil, nil
}

func latestActive(apps []models.Appointment, userID uint) *models.Appointment {
	var latest *models.Appointment
	for i := range apps {
		ap := &apps[i]
		if ap.OwnerUserID == nil || *ap.OwnerUserID != userID {
			continue
		}
		if !domain.Status(ap.Status).IsActive() {
			continue
		}
		if latest == nil || ap.Time.After(latest.Time) {
			latest = ap
		}
	}
	if latest == nil {
		return nil
	}
	out := *latest
	return &out
}

func (s *FileStore) loadAppointments() ([]models.Appointment, error) {
	var apps []models.Appointment
	if err := s.load(appointmentsFile, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *FileStore) saveAppointments(apps []models.Appointment) error {
	return s.save(appointmentsFile, apps)
}

// userRecord is the users.json row. models.User hides the credential from
// JSON, so it cannot be stored as is.
type userRecord struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Credential string    `json:"credential"`
	IsAdmin    bool      `json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
}

func newUserRecord(u *models.User) userRecord {
	return userRecord{
		ID:         u.ID,
		Username:   u.Username,
		Credential: u.Credential,
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt,
	}
}

func (r userRecord) toModel() *models.User {
	return &models.User{
		ID:         r.ID,
		Username:   r.Username,
		Credential: r.Credential,
		IsAdmin:    r.IsAdmin,
		CreatedAt:  r.CreatedAt,
	}
}

func (s *FileStore) loadUsers() ([]userRecord, error) {
	var users []userRecord
	if err := s.load(usersFile, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *FileStore) load(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// save writes to a temp file and renames it over name, so a crash leaves
// either the old or the new collection on disk.
func (s *FileStore) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", name, err)
	}

	if s.mirror != nil {
		s.mirror.Enqueue(name, data)
	}
	return nil
}
