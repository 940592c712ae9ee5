// Package detector flags message text containing investigative keywords
package detector

import (
	"regexp"
	"strings"
)

// DefaultKeywords is the fixed keyword list applied to Text log entries
var DefaultKeywords = []string{
	"bomb", "attack", "target", "secret", "meeting", "code word",
	"transfer", "withdraw", "hide", "dispose", "burner phone",
}

// Detector matches whole words and phrases case-insensitively
type Detector struct {
	pattern *regexp.Regexp
}

// New builds a Detector for keywords
// Multi-word keywords match as contiguous words; empty keywords are ignored
func New(keywords ...string) *Detector {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	if len(quoted) == 0 {
		return &Detector{}
	}
	return &Detector{
		pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

var defaultDetector = New(DefaultKeywords...)

// Default returns the detector for DefaultKeywords
func Default() *Detector {
	return defaultDetector
}

// IsSuspicious reports whether text contains any keyword
func (d *Detector) IsSuspicious(text string) bool {
	if text == "" || d.pattern == nil {
		return false
	}
	return d.pattern.MatchString(text)
}

// IsSuspicious checks text against DefaultKeywords
func IsSuspicious(text string) bool {
	return defaultDetector.IsSuspicious(text)
}
