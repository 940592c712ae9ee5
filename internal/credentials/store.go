// Package credentials holds the user accounts of the analyzer.
//
// The credential document maps usernames either to an object
// {"password", "role", "restrictions"} or, for accounts created before
// roles existed, to a bare password string. Both shapes load and
// authenticate. Passwords are stored and compared in clear text; this is a
// known limitation of the file format, not something this package hides.
package credentials

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"evidence-log-analyzer/internal/common"
	"evidence-log-analyzer/internal/logging"
	"evidence-log-analyzer/internal/models"
	"evidence-log-analyzer/internal/storage"
)

// Auditor records security-relevant actions
type Auditor interface {
	Record(user, action string) models.AuditEntry
}

// Store owns the account collection and its credential document
type Store struct {
	mu       sync.Mutex
	path     string
	accounts models.Accounts
	audit    Auditor
	logger   logging.Logger
}

// NewUser describes an account creation request. AdminUsername and
// AdminPassword are re-verified on every request.
type NewUser struct {
	AdminUsername string
	AdminPassword string
	Username      string
	Password      string
	Role          models.Role
}

// NewStore loads the credential document at path
//
// When no document exists the default accounts are seeded and written
// before anything can authenticate. A document that exists but cannot be
// read or parsed is replaced in memory by the defaults and left untouched
// on disk until the next successful write.
func NewStore(path string, audit Auditor, logger logging.Logger) *Store {
	s := &Store{
		path:   path,
		audit:  audit,
		logger: logger.With("store", "credentials", "path", path),
	}

	var accounts models.Accounts
	err := storage.Load(path, &accounts)
	switch {
	case errors.Is(err, storage.ErrMissing):
		s.accounts = models.DefaultAccounts()
		s.persist()
		s.logger.Info("seeded default user credentials", "users", strings.Join(s.usernames(), ","))
	case err != nil:
		s.logger.Warn("credential file unreadable, using default users", "error", err)
		s.accounts = models.DefaultAccounts()
	default:
		s.accounts = accounts
	}

	return s
}

// persist rewrites the whole credential document. Callers hold s.mu or own s exclusively.
func (s *Store) persist() {
	if err := storage.Save(s.path, s.accounts); err != nil {
		s.logger.Warn("failed to persist user credentials", "error", err)
	}
}

// Lookup returns the record stored for username
func (s *Store) Lookup(username string) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	return acc, ok
}

// Authenticate reports whether password matches the record for username
// Unknown users and records of unknown shape never authenticate
func (s *Store) Authenticate(username, password string) bool {
	acc, ok := s.Lookup(username)
	if !ok {
		return false
	}

	switch a := acc.(type) {
	case *models.ModernAccount:
		return !a.PasswordMissing && a.Password == password
	case *models.LegacyAccount:
		return a.Password == password
	default:
		return false
	}
}

// AddUser creates a modern account on behalf of actor
//
// The request must carry the credentials of a modern admin account; legacy
// accounts cannot authorize user creation, not even "admin". Restrictions
// default from the role: users get every protected capability restricted,
// admins get none.
func (s *Store) AddUser(actor string, req NewUser) error {
	adminUser := strings.TrimSpace(req.AdminUsername)
	adminPass := strings.TrimSpace(req.AdminPassword)
	newUser := strings.TrimSpace(req.Username)
	newPass := strings.TrimSpace(req.Password)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isModernAdmin(adminUser, adminPass) {
		s.audit.Record(actor, fmt.Sprintf("Failed attempt to add new user by admin credentials: %s", adminUser))
		return fmt.Errorf("%w: invalid admin credentials or insufficient privileges", common.ErrAuthorization)
	}

	if newUser == "" || newPass == "" {
		return fmt.Errorf("%w: new username and password cannot be empty", common.ErrValidation)
	}
	if _, exists := s.accounts[newUser]; exists {
		return fmt.Errorf("%w: username '%s' already exists", common.ErrValidation, newUser)
	}
	if !req.Role.Valid() {
		return fmt.Errorf("%w: invalid role '%s': must be 'admin' or 'user'", common.ErrValidation, req.Role)
	}

	s.accounts[newUser] = &models.ModernAccount{
		Password:     newPass,
		Role:         req.Role,
		Restrictions: models.DefaultRestrictions(req.Role),
	}
	s.persist()

	s.audit.Record(actor, fmt.Sprintf("Admin '%s' added new user: %s with role: %s", adminUser, newUser, req.Role))
	return nil
}

func (s *Store) isModernAdmin(username, password string) bool {
	acc, ok := s.accounts[username].(*models.ModernAccount)
	return ok && !acc.PasswordMissing && acc.Password == password && acc.Role == models.RoleAdmin
}

// Usernames returns every account name in sorted order
func (s *Store) Usernames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usernames()
}

func (s *Store) usernames() []string {
	names := make([]string, 0, len(s.accounts))
	for name := range s.accounts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
