// Package audit keeps the append-only trail of security-relevant actions
// (logins, denials, additions and removals). The whole trail is rewritten
// to the audit document after every Record.
package audit

import (
	"errors"
	"slices"
	"sync"
	"time"

	"evidence-log-analyzer/internal/logging"
	"evidence-log-analyzer/internal/models"
	"evidence-log-analyzer/internal/storage"
)

// Log is the audit trail backed by a JSON document
type Log struct {
	mu      sync.Mutex
	path    string
	entries []models.AuditEntry
	now     func() time.Time
	logger  logging.Logger
}

// Option configures a Log
type Option func(*Log)

// WithClock replaces time.Now as the source of entry timestamps
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// New opens the audit trail stored at path
// An absent or unparsable document starts an empty trail
func New(path string, logger logging.Logger, opts ...Option) *Log {
	l := &Log{
		path:   path,
		now:    time.Now,
		logger: logger.With("store", "audit", "path", path),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.entries = l.load()
	return l
}

func (l *Log) load() []models.AuditEntry {
	var entries []models.AuditEntry
	if err := storage.Load(l.path, &entries); err != nil {
		if !errors.Is(err, storage.ErrMissing) {
			l.logger.Warn("audit history unreadable, starting empty", "error", err)
		}
		return []models.AuditEntry{}
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return entries
}

// Record appends an entry for user and rewrites the audit document
// An empty user is recorded as models.UnauthenticatedUser. A failed write
// is logged; the entry stays in memory.
func (l *Log) Record(user, action string) models.AuditEntry {
	if user == "" {
		user = models.UnauthenticatedUser
	}
	entry := models.AuditEntry{
		Timestamp: l.now().Format(models.AuditTimestampLayout),
		User:      user,
		Action:    action,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if err := storage.Save(l.path, l.entries); err != nil {
		l.logger.Warn("failed to persist audit history", "error", err)
	}
	return entry
}

// Entries returns a copy of the in-memory trail in insertion order
func (l *Log) Entries() []models.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Reload re-reads the audit document, replacing the in-memory trail, and
// returns it in insertion order
func (l *Log) Reload() []models.AuditEntry {
	entries := l.load()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = entries
	return slices.Clone(entries)
}

// NewestFirst returns entries in reverse order for display
func NewestFirst(entries []models.AuditEntry) []models.AuditEntry {
	out := slices.Clone(entries)
	slices.Reverse(out)
	return out
}
