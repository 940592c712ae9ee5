// Package session is the entry point front ends call into. An Engine wires
// the audit trail, credential store, access policy and log store from a
// Config; Login yields a Session bound to one authenticated user, and every
// Session method is a direct synchronous call returning a result or error.
package session

import (
	"fmt"
	"iter"

	"evidence-log-analyzer/internal/access"
	"evidence-log-analyzer/internal/audit"
	"evidence-log-analyzer/internal/common"
	"evidence-log-analyzer/internal/config"
	"evidence-log-analyzer/internal/credentials"
	"evidence-log-analyzer/internal/database"
	"evidence-log-analyzer/internal/filter"
	"evidence-log-analyzer/internal/logging"
	"evidence-log-analyzer/internal/logstore"
	"evidence-log-analyzer/internal/models"
	"evidence-log-analyzer/internal/parser"
)

// Engine holds the stores of one running process
type Engine struct {
	Audit  *audit.Log
	Users  *credentials.Store
	Policy *access.Policy
	Logs   *logstore.Store

	logger logging.Logger
}

type options struct {
	audit []audit.Option
	logs  []logstore.Option
}

// Option configures an Engine
type Option func(*options)

// WithAuditOptions passes options to the audit trail
func WithAuditOptions(opts ...audit.Option) Option {
	return func(o *options) {
		o.audit = append(o.audit, opts...)
	}
}

// WithLogOptions passes options to the log store
func WithLogOptions(opts ...logstore.Option) Option {
	return func(o *options) {
		o.logs = append(o.logs, opts...)
	}
}

// New opens every store named in cfg
// The credential document is seeded here if it does not exist yet
func New(cfg *config.Config, logger logging.Logger, opts ...Option) *Engine {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	trail := audit.New(cfg.AuditFile, logger, o.audit...)
	users := credentials.NewStore(cfg.UsersFile, trail, logger)
	policy := access.NewPolicy(users, trail)
	logs := logstore.NewStore(cfg.LogsFile, policy, trail, logger, o.logs...)

	return &Engine{
		Audit:  trail,
		Users:  users,
		Policy: policy,
		Logs:   logs,
		logger: logger,
	}
}

// Login authenticates username and opens a Session
// Both outcomes are audited; failure returns common.ErrAuthorization
func (e *Engine) Login(username, password string) (*Session, error) {
	if !e.Users.Authenticate(username, password) {
		e.Audit.Record("", fmt.Sprintf("Failed login attempt for user: %s", username))
		return nil, fmt.Errorf("%w: invalid username or password", common.ErrAuthorization)
	}

	e.Audit.Record(username, fmt.Sprintf("Successful login by user: %s", username))
	e.logger.Debug("user logged in", "user", username)
	return &Session{engine: e, user: username}, nil
}

// Session is the work of one authenticated user
type Session struct {
	engine *Engine
	user   string
	closed bool
}

// User returns the authenticated username
func (s *Session) User() string {
	return s.user
}

func (s *Session) active() error {
	if s.closed {
		return fmt.Errorf("%w: session for '%s' is logged out", common.ErrAuthorization, s.user)
	}
	return nil
}

func (s *Session) require(capability string) error {
	if err := s.active(); err != nil {
		return err
	}
	if !s.engine.Policy.CheckAccess(s.user, capability) {
		return fmt.Errorf("%w: user '%s' does not have permission to perform '%s'", common.ErrAuthorization, s.user, capability)
	}
	return nil
}

// Can reports whether the user may use capability, auditing a denial
// Front ends use it to decide which views to offer
func (s *Session) Can(capability string) bool {
	return s.require(capability) == nil
}

// AddLog records a new communication log entry
func (s *Session) AddLog(in logstore.Input) (models.LogEntry, error) {
	if err := s.active(); err != nil {
		return models.LogEntry{}, err
	}
	return s.engine.Logs.Add(s.user, in)
}

// RemoveLog deletes the entry with id; the user needs remove_logs
func (s *Session) RemoveLog(id string) error {
	if err := s.active(); err != nil {
		return err
	}
	return s.engine.Logs.Remove(s.user, id)
}

// Query filters the current log collection
func (s *Session) Query(c filter.Criteria) (iter.Seq[models.LogEntry], error) {
	if err := s.active(); err != nil {
		return nil, err
	}
	return filter.Query(s.engine.Logs.Snapshot(), c)
}

// AuditTrail re-reads the access history; the user needs admin_logs
// Entries are returned in insertion order
func (s *Session) AuditTrail() ([]models.AuditEntry, error) {
	if err := s.require(models.CapAdminLogs); err != nil {
		return nil, err
	}
	return s.engine.Audit.Reload(), nil
}

// AddUser creates an account; the user needs user_management and the
// request must carry valid modern admin credentials
func (s *Session) AddUser(req credentials.NewUser) error {
	if err := s.require(models.CapUserManagement); err != nil {
		return err
	}
	return s.engine.Users.AddUser(s.user, req)
}

// ImportCSV adds every row of a CSV file as a log entry
// The file is fully validated first, so a bad row adds nothing
func (s *Session) ImportCSV(path string) ([]models.LogEntry, error) {
	if err := s.active(); err != nil {
		return nil, err
	}

	inputs, err := parser.ParseCSV(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	added := make([]models.LogEntry, 0, len(inputs))
	for _, in := range inputs {
		entry, err := s.engine.Logs.Add(s.user, in)
		if err != nil {
			return added, err
		}
		added = append(added, entry)
	}

	s.engine.Audit.Record(s.user, fmt.Sprintf("Imported %d log entries from %s", len(added), path))
	return added, nil
}

// ExportSQLite writes the log collection to a SQLite database at dbPath
// The user needs view_logs. Without appendMode existing rows are replaced.
func (s *Session) ExportSQLite(dbPath string, appendMode bool) (int64, error) {
	if err := s.require(models.CapViewLogs); err != nil {
		return 0, err
	}

	db, err := database.Initialize(dbPath)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	count, err := database.InsertLogEntries(db, s.engine.Logs.Snapshot(), appendMode)
	if err != nil {
		return count, fmt.Errorf("failed to export log entries: %w", err)
	}

	s.engine.Audit.Record(s.user, fmt.Sprintf("Exported %d log entries to %s", count, dbPath))
	return count, nil
}

// Logout closes the session; later calls fail with common.ErrAuthorization
func (s *Session) Logout() {
	if s.closed {
		return
	}
	s.engine.Audit.Record(s.user, fmt.Sprintf("User logged out: %s", s.user))
	s.closed = true
}
