// Package access decides whether a user may invoke a named capability.
//
// Resolution by account shape:
//
//   - legacy (bare password string): "admin" is always granted; every other
//     legacy account is denied the protected capabilities and allowed
//     everything else.
//   - modern: granted unless the capability is in the account's
//     restrictions. A missing or malformed restrictions field resolves to
//     the literal set {"all"}, which only blocks a capability named "all".
//   - absent or unknown shape: never granted.
//
// Every refusal is written to the audit trail.
package access

import (
	"fmt"
	"slices"

	"evidence-log-analyzer/internal/models"
)

// RestrictAllSentinel is the restriction set assumed for a modern account
// whose restrictions field is missing or malformed. It names no real
// capability, so such an account is effectively unrestricted.
const RestrictAllSentinel = "all"

// Accounts resolves usernames to credential records
type Accounts interface {
	Lookup(username string) (models.Account, bool)
}

// Auditor records security-relevant actions
type Auditor interface {
	Record(user, action string) models.AuditEntry
}

// Policy checks capabilities against the credential records
type Policy struct {
	accounts Accounts
	audit    Auditor
}

// NewPolicy creates a Policy over accounts that audits denials to audit
func NewPolicy(accounts Accounts, audit Auditor) *Policy {
	return &Policy{accounts: accounts, audit: audit}
}

// CheckAccess reports whether username may use capability
// A denial is recorded in the audit trail before returning false
func (p *Policy) CheckAccess(username, capability string) bool {
	acc, _ := p.accounts.Lookup(username)

	if legacy, ok := acc.(*models.LegacyAccount); ok && legacy != nil {
		if username == "admin" {
			return true
		}
		if slices.Contains(models.ProtectedCapabilities, capability) {
			p.audit.Record(username, fmt.Sprintf("Access denied for '%s' to legacy user: %s", capability, username))
			return false
		}
		return true
	}

	restrictions, known := Restrictions(acc)
	if known && !slices.Contains(restrictions, capability) {
		return true
	}

	p.audit.Record(username, fmt.Sprintf("Access denied for '%s' to user: %s", capability, username))
	return false
}

// Restrictions returns the restriction set applied to a non-legacy record
// and whether the record is a modern account at all
func Restrictions(acc models.Account) ([]string, bool) {
	modern, ok := acc.(*models.ModernAccount)
	if !ok || modern == nil {
		return []string{RestrictAllSentinel}, false
	}
	if modern.RestrictionsMissing {
		return []string{RestrictAllSentinel}, true
	}
	return modern.Restrictions, true
}
