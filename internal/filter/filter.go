// Package filter evaluates multi-criteria queries against a log collection.
//
// All active criteria must hold (AND). Results are produced lazily in the
// collection's order and the returned sequence can be ranged over again.
// Content is never truncated here; see models.Truncate for display.
package filter

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"evidence-log-analyzer/internal/common"
	"evidence-log-analyzer/internal/models"
)

// All disables the Type, SenderGender and Suspicious criteria
const All = "All"

// Suspicious flag values
const (
	FlagSuspicious = "Suspicious"
	FlagNormal     = "Normal"
)

// Criteria holds the raw filter inputs; zero values disable each criterion
type Criteria struct {
	// Keyword matches content, sender or receiver, case-insensitively
	Keyword string

	// Type is a log type, "All" or empty
	Type string

	// DateMin and DateMax are inclusive YYYY-MM-DD bounds
	// A bound that does not parse is ignored
	DateMin string
	DateMax string

	// SenderGender is M, F, O, "All" or empty
	SenderGender string

	// MinLength is the raw minimum length/duration; it must be an integer when set
	MinLength string

	// Suspicious is "Suspicious", "Normal", "All" or empty
	Suspicious string
}

// Matcher is a compiled set of criteria
type Matcher struct {
	keyword      string
	logType      string
	dateMin      string // YYYYMMDD, empty when unset
	dateMax      string
	senderGender string
	minLength    int
	suspicious   string
}

// Compile validates c and prepares it for matching
// A non-numeric MinLength fails with common.ErrValidation
func Compile(c Criteria) (*Matcher, error) {
	m := &Matcher{
		keyword:      strings.ToLower(c.Keyword),
		logType:      c.Type,
		senderGender: c.SenderGender,
		suspicious:   c.Suspicious,
		minLength:    -1,
	}

	if raw := strings.TrimSpace(c.MinLength); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: min length/duration must be a number, got '%s'", common.ErrValidation, c.MinLength)
		}
		m.minLength = n
	}

	m.dateMin = comparableBound(c.DateMin)
	m.dateMax = comparableBound(c.DateMax)

	return m, nil
}

// comparableBound converts a YYYY-MM-DD bound to YYYYMMDD, or "" when it does not parse
func comparableBound(bound string) string {
	bound = strings.TrimSpace(bound)
	if bound == "" {
		return ""
	}
	t, err := time.Parse(models.FilterDateLayout, bound)
	if err != nil {
		return ""
	}
	return t.Format("20060102")
}

// Match reports whether e satisfies every active criterion
func (m *Matcher) Match(e models.LogEntry) bool {
	content := strings.ToLower(e.Content)

	if m.keyword != "" &&
		!strings.Contains(content, m.keyword) &&
		!strings.Contains(strings.ToLower(e.SenderName), m.keyword) &&
		!strings.Contains(strings.ToLower(e.ReceiverName), m.keyword) {
		return false
	}

	if m.logType != "" && m.logType != All && string(e.Type) != m.logType {
		return false
	}

	if !m.matchDate(e.Date) {
		return false
	}

	if m.senderGender != "" && m.senderGender != All && string(e.SenderGender) != m.senderGender {
		return false
	}

	if m.minLength > 0 && length(e.Type, e.Content) < m.minLength {
		return false
	}

	switch m.suspicious {
	case FlagSuspicious:
		return e.IsSuspicious
	case FlagNormal:
		return !e.IsSuspicious
	}

	return true
}

// matchDate applies the date bounds; an unparsable stored date passes
func (m *Matcher) matchDate(date string) bool {
	if m.dateMin == "" && m.dateMax == "" {
		return true
	}
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return true
	}
	d := t.Format("20060102")
	if m.dateMin != "" && d < m.dateMin {
		return false
	}
	if m.dateMax != "" && d > m.dateMax {
		return false
	}
	return true
}

// length is the call duration for all-digit Call content, otherwise the character count
func length(t models.LogType, content string) int {
	if t == models.TypeCall && isDigits(content) {
		if n, err := strconv.Atoi(content); err == nil {
			return n
		}
	}
	return utf8.RuneCountInString(content)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Apply returns the entries of logs that match, lazily and in order
func (m *Matcher) Apply(logs []models.LogEntry) iter.Seq[models.LogEntry] {
	return func(yield func(models.LogEntry) bool) {
		for _, e := range logs {
			if m.Match(e) && !yield(e) {
				return
			}
		}
	}
}

// Query compiles c and applies it to logs
func Query(logs []models.LogEntry, c Criteria) (iter.Seq[models.LogEntry], error) {
	m, err := Compile(c)
	if err != nil {
		return nil, err
	}
	return m.Apply(logs), nil
}
