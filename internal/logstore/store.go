// Package logstore owns the collection of communication log entries.
//
// Entries are kept in insertion order. Every mutation rewrites the whole
// log document so the file always matches the in-memory collection; there
// is no incremental write and no partial-write recovery.
package logstore

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"evidence-log-analyzer/internal/common"
	"evidence-log-analyzer/internal/detector"
	"evidence-log-analyzer/internal/logging"
	"evidence-log-analyzer/internal/models"
	"evidence-log-analyzer/internal/storage"
)

// Authorizer decides whether a user may use a capability
type Authorizer interface {
	CheckAccess(username, capability string) bool
}

// Auditor records security-relevant actions
type Auditor interface {
	Record(user, action string) models.AuditEntry
}

// ContentDetector flags suspicious message text
type ContentDetector interface {
	IsSuspicious(text string) bool
}

// Input carries the caller-supplied fields of a new log entry
// Genders are upper-cased and all fields trimmed before validation
type Input struct {
	Type           models.LogType
	SenderName     string
	ReceiverName   string
	SenderGender   string
	ReceiverGender string
	Date           string // DD-MM-YYYY
	Time           string // HH:MM:SS
	Content        string // message text, file name, or call duration in seconds
}

// Store is the log collection backed by a JSON document
type Store struct {
	mu       sync.Mutex
	path     string
	entries  []models.LogEntry
	policy   Authorizer
	audit    Auditor
	detector ContentDetector
	newID    func() string
	logger   logging.Logger
}

// Option configures a Store
type Option func(*Store)

// WithDetector replaces the default keyword detector
func WithDetector(d ContentDetector) Option {
	return func(s *Store) {
		s.detector = d
	}
}

// WithIDGenerator replaces UUID v4 generation
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// NewStore opens the log document at path
// An absent or unparsable document starts an empty collection
func NewStore(path string, policy Authorizer, audit Auditor, logger logging.Logger, opts ...Option) *Store {
	s := &Store{
		path:     path,
		policy:   policy,
		audit:    audit,
		detector: detector.Default(),
		newID:    func() string { return uuid.NewString() },
		logger:   logger.With("store", "logs", "path", path),
	}
	for _, opt := range opts {
		opt(s)
	}

	var entries []models.LogEntry
	if err := storage.Load(path, &entries); err != nil {
		if !errors.Is(err, storage.ErrMissing) {
			s.logger.Warn("log file unreadable, starting empty", "error", err)
		}
		entries = nil
	}
	s.entries = entries

	return s
}

// Validate checks in and returns the normalized entry it describes
// The returned entry has no ID and IsSuspicious is not yet computed
func Validate(in Input) (models.LogEntry, error) {
	logType := models.LogType(strings.TrimSpace(string(in.Type)))
	if !logType.Valid() {
		return models.LogEntry{}, fmt.Errorf("%w: invalid type '%s': must be Text, Audio, Video or Call", common.ErrValidation, in.Type)
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("%w: invalid date '%s': expected a calendar date as DD-MM-YYYY", common.ErrValidation, in.Date)
	}
	clock, err := time.Parse(models.TimeLayout, strings.TrimSpace(in.Time))
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("%w: invalid time '%s': expected HH:MM:SS", common.ErrValidation, in.Time)
	}

	entry := models.LogEntry{
		Type:           logType,
		SenderName:     strings.TrimSpace(in.SenderName),
		ReceiverName:   strings.TrimSpace(in.ReceiverName),
		SenderGender:   models.Gender(strings.ToUpper(strings.TrimSpace(in.SenderGender))),
		ReceiverGender: models.Gender(strings.ToUpper(strings.TrimSpace(in.ReceiverGender))),
		Date:           date.Format(models.DateLayout),
		Time:           clock.Format(models.TimeLayout),
		Content:        strings.TrimSpace(in.Content),
	}

	if entry.SenderName == "" || entry.ReceiverName == "" {
		return models.LogEntry{}, fmt.Errorf("%w: sender and receiver names are required", common.ErrValidation)
	}
	if !entry.SenderGender.Valid() || !entry.ReceiverGender.Valid() {
		return models.LogEntry{}, fmt.Errorf("%w: sender and receiver gender must be M, F or O", common.ErrValidation)
	}
	if entry.Content == "" {
		return models.LogEntry{}, fmt.Errorf("%w: content/duration is required", common.ErrValidation)
	}

	return entry, nil
}

// Add validates in, assigns a new ID and appends the entry on behalf of actor
// Only Text entries are scanned for suspicious keywords
func (s *Store) Add(actor string, in Input) (models.LogEntry, error) {
	entry, err := Validate(in)
	if err != nil {
		return models.LogEntry{}, err
	}

	entry.ID = s.newID()
	if entry.Type == models.TypeText {
		entry.IsSuspicious = s.detector.IsSuspicious(entry.Content)
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.persist()
	s.mu.Unlock()

	s.audit.Record(actor, fmt.Sprintf("Added new %s log entry with ID: %s", entry.Type, entry.ID))
	return entry, nil
}

// Remove deletes the entry with id on behalf of actor
// actor needs the remove_logs capability
func (s *Store) Remove(actor, id string) error {
	if !s.policy.CheckAccess(actor, models.CapRemoveLogs) {
		return fmt.Errorf("%w: user '%s' may not remove logs", common.ErrAuthorization, actor)
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: log ID is required", common.ErrValidation)
	}

	s.mu.Lock()
	before := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, func(e models.LogEntry) bool {
		return e.ID == id
	})
	removed := len(s.entries) < before
	if removed {
		s.persist()
	}
	s.mu.Unlock()

	if !removed {
		return fmt.Errorf("%w: log ID %s", common.ErrNotFound, id)
	}

	s.audit.Record(actor, fmt.Sprintf("Removed log entry with ID: %s", id))
	return nil
}

// persist rewrites the whole log document. Callers hold s.mu.
func (s *Store) persist() {
	entries := s.entries
	if entries == nil {
		entries = []models.LogEntry{}
	}
	if err := storage.Save(s.path, entries); err != nil {
		s.logger.Warn("failed to persist logs", "error", err)
	}
}

// Snapshot returns a copy of the collection in insertion order
func (s *Store) Snapshot() []models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Get returns the entry with id
func (s *Store) Get(id string) (models.LogEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.entries, func(e models.LogEntry) bool {
		return e.ID == id
	})
	if i < 0 {
		return models.LogEntry{}, false
	}
	return s.entries[i], true
}

// Len returns the number of stored entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
