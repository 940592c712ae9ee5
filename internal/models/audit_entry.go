package models

// UnauthenticatedUser is recorded as the user of audit entries written
// before anyone has logged in
const UnauthenticatedUser = "Unauthenticated"

// AuditEntry is one line of the append-only access history
type AuditEntry struct {
	Timestamp string `json:"timestamp"` // YYYY-MM-DD HH:MM:SS, local time
	User      string `json:"user"`
	Action    string `json:"action"`
}
