package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Role of a modern account
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is admin or user
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Capability tags checked by the access policy
const (
	CapAdminLogs      = "admin_logs"
	CapUserManagement = "user_management"
	CapRemoveLogs     = "remove_logs"

	// CapViewLogs is not protected: it is granted unless a modern
	// account lists it in its restrictions
	CapViewLogs = "view_logs"
)

// ProtectedCapabilities are the privileged capabilities denied to
// restricted users and to legacy accounts other than "admin"
var ProtectedCapabilities = []string{CapAdminLogs, CapUserManagement, CapRemoveLogs}

// DefaultRestrictions returns the restriction set a new account of the given role receives
func DefaultRestrictions(role Role) []string {
	if role == RoleUser {
		return append([]string(nil), ProtectedCapabilities...)
	}
	return []string{}
}

// Account is a credential record in one of the shapes found in the
// credential file: *LegacyAccount, *ModernAccount or *UnknownAccount
type Account interface {
	account()
}

// LegacyAccount is a record stored as a bare password string
type LegacyAccount struct {
	Password string
}

// ModernAccount is a record with explicit password, role and restrictions
type ModernAccount struct {
	Password string
	Role     Role

	// Restrictions lists the capabilities the account may NOT use
	Restrictions []string

	// PasswordMissing is set when the stored object has no string password field
	PasswordMissing bool

	// RestrictionsMissing is set when the stored restrictions field is
	// absent or not a list of strings
	RestrictionsMissing bool
}

// UnknownAccount keeps a record of any other JSON shape verbatim
type UnknownAccount struct {
	Raw json.RawMessage
}

func (*LegacyAccount) account()  {}
func (*ModernAccount) account()  {}
func (*UnknownAccount) account() {}

// Accounts maps usernames to credential records
// It marshals to and from the on-disk credential document
type Accounts map[string]Account

// DefaultAccounts returns the accounts seeded on first run
// Passwords are clear text, as in the original credential file format
func DefaultAccounts() Accounts {
	return Accounts{
		"admin": &ModernAccount{
			Password:     "password123",
			Role:         RoleAdmin,
			Restrictions: DefaultRestrictions(RoleAdmin),
		},
		"analyst": &ModernAccount{
			Password:     "secure456",
			Role:         RoleUser,
			Restrictions: DefaultRestrictions(RoleUser),
		},
	}
}

// modernRecord is the wire form of a ModernAccount
type modernRecord struct {
	Password     *string   `json:"password,omitempty"`
	Role         Role      `json:"role,omitempty"`
	Restrictions *[]string `json:"restrictions,omitempty"`
}

// MarshalJSON writes legacy accounts as bare strings and modern accounts as objects
func (a Accounts) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(a))
	for name, acc := range a {
		raw, err := marshalAccount(acc)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", name, err)
		}
		out[name] = raw
	}
	return json.Marshal(out)
}

func marshalAccount(acc Account) (json.RawMessage, error) {
	switch v := acc.(type) {
	case *LegacyAccount:
		return json.Marshal(v.Password)
	case *ModernAccount:
		rec := modernRecord{Role: v.Role}
		if !v.PasswordMissing {
			pw := v.Password
			rec.Password = &pw
		}
		if !v.RestrictionsMissing {
			r := append([]string{}, v.Restrictions...)
			rec.Restrictions = &r
		}
		return json.Marshal(rec)
	case *UnknownAccount:
		if len(v.Raw) == 0 {
			return json.RawMessage("null"), nil
		}
		return v.Raw, nil
	default:
		return nil, fmt.Errorf("unsupported account type %T", acc)
	}
}

// UnmarshalJSON accepts a mapping of usernames to either a bare string or an object
// Values of any other shape become *UnknownAccount
func (a *Accounts) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("credential document is null")
	}

	accounts := make(Accounts, len(raw))
	for name, value := range raw {
		accounts[name] = decodeAccount(value)
	}
	*a = accounts
	return nil
}

func decodeAccount(raw json.RawMessage) Account {
	trimmed := bytes.TrimSpace(raw)
	unknown := &UnknownAccount{Raw: append(json.RawMessage(nil), trimmed...)}
	if bytes.Equal(trimmed, []byte("null")) {
		return unknown
	}

	var password string
	if err := json.Unmarshal(trimmed, &password); err == nil {
		return &LegacyAccount{Password: password}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return unknown
	}

	acc := &ModernAccount{PasswordMissing: true, RestrictionsMissing: true}
	if v, ok := fields["password"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &acc.Password); err == nil {
			acc.PasswordMissing = false
		}
	}
	if v, ok := fields["role"]; ok && !isNull(v) {
		var role string
		if err := json.Unmarshal(v, &role); err == nil {
			acc.Role = Role(role)
		}
	}
	if v, ok := fields["restrictions"]; ok && !isNull(v) {
		var restrictions []string
		if err := json.Unmarshal(v, &restrictions); err == nil {
			acc.Restrictions = restrictions
			acc.RestrictionsMissing = false
		}
	}
	return acc
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
