// Package models defines the data structures used throughout the application
package models

import (
	"fmt"
	"unicode/utf8"
)

// Date and time layouts used by the persisted documents and the filter inputs
const (
	// DateLayout is the stored day-month-year format of LogEntry.Date
	DateLayout = "02-01-2006"

	// TimeLayout is the stored hour:minute:second format of LogEntry.Time
	TimeLayout = "15:04:05"

	// FilterDateLayout is the year-month-day format accepted by date range filters
	FilterDateLayout = "2006-01-02"

	// AuditTimestampLayout is the format of AuditEntry.Timestamp
	AuditTimestampLayout = "2006-01-02 15:04:05"
)

// LogType is the kind of communication a log entry records
type LogType string

const (
	TypeText  LogType = "Text"
	TypeAudio LogType = "Audio"
	TypeVideo LogType = "Video"
	TypeCall  LogType = "Call"
)

// LogTypes lists every valid LogType in display order
var LogTypes = []LogType{TypeText, TypeAudio, TypeVideo, TypeCall}

// Valid reports whether t is one of the known log types
func (t LogType) Valid() bool {
	switch t {
	case TypeText, TypeAudio, TypeVideo, TypeCall:
		return true
	}
	return false
}

// Gender of a sender or receiver
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// Valid reports whether g is M, F or O
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// LogEntry represents a single recorded communication
// Content holds the message text for Text, the file name for Audio/Video
// and the duration in seconds for Call entries
type LogEntry struct {
	ID             string  `db:"id" json:"id"`                           // UUID v4, assigned at creation
	Type           LogType `db:"type" json:"type"`                       // Text, Audio, Video or Call
	SenderName     string  `db:"sender_name" json:"sender_name"`         // Free text
	ReceiverName   string  `db:"receiver_name" json:"receiver_name"`     // Free text
	SenderGender   Gender  `db:"sender_gender" json:"sender_gender"`     // M, F or O
	ReceiverGender Gender  `db:"receiver_gender" json:"receiver_gender"` // M, F or O
	Date           string  `db:"date" json:"date"`                       // DD-MM-YYYY
	Time           string  `db:"time" json:"time"`                       // HH:MM:SS
	Content        string  `db:"content_or_duration" json:"content_or_duration"`
	IsSuspicious   bool    `db:"is_suspicious" json:"is_suspicious"` // Only ever true for Text
}

// String returns a human-readable representation of the log entry
func (l LogEntry) String() string {
	flag := ""
	if l.IsSuspicious {
		flag = " [SUSPICIOUS]"
	}
	return fmt.Sprintf("%s %s %s: %s (%s) -> %s (%s): %s%s",
		l.Date,
		l.Time,
		l.Type,
		l.SenderName,
		l.SenderGender,
		l.ReceiverName,
		l.ReceiverGender,
		Truncate(l.Content, DisplayContentLimit),
		flag)
}

// DisplayContentLimit is the number of content characters shown in listings
const DisplayContentLimit = 50

// Truncate shortens s to limit characters followed by "..." when it is longer
// Only presentation code should call this; stored content is never truncated
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
