package filter

import (
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidence-log-analyzer/internal/common"
	"evidence-log-analyzer/internal/models"
)

func entry(id string, t models.LogType, date, content string, suspicious bool) models.LogEntry {
	return models.LogEntry{
		ID:             id,
		Type:           t,
		SenderName:     "Alice",
		ReceiverName:   "Bob",
		SenderGender:   models.GenderFemale,
		ReceiverGender: models.GenderMale,
		Date:           date,
		Time:           "12:00:00",
		Content:        content,
		IsSuspicious:   suspicious,
	}
}

func ids(t *testing.T, logs []models.LogEntry, c Criteria) []string {
	t.Helper()
	seq, err := Query(logs, c)
	require.NoError(t, err)
	var out []string
	for e := range seq {
		out = append(out, e.ID)
	}
	return out
}

func TestQuerySuspicious(t *testing.T) {
	logs := []models.LogEntry{
		entry("1", models.TypeText, "01-04-2024", "the bomb is ready", true),
		entry("2", models.TypeText, "02-04-2024", "see you at dinner", false),
		entry("3", models.TypeCall, "03-04-2024", "45", false),
	}

	assert.Equal(t, []string{"1"}, ids(t, logs, Criteria{Type: "Text", Suspicious: FlagSuspicious}))
	assert.Equal(t, []string{"2"}, ids(t, logs, Criteria{Type: "Text", Suspicious: FlagNormal}))
	assert.Equal(t, []string{"1", "2", "3"}, ids(t, logs, Criteria{Type: All, Suspicious: All}))
	assert.Equal(t, []string{"1", "2", "3"}, ids(t, logs, Criteria{}))
}

func TestQueryCallDuration(t *testing.T) {
	logs := []models.LogEntry{
		entry("short", models.TypeCall, "01-04-2024", "45", false),
		entry("long", models.TypeCall, "01-04-2024", "150", false),
		entry("text", models.TypeText, "01-04-2024", "ok", false),
	}

	assert.Equal(t, []string{"long"}, ids(t, logs, Criteria{MinLength: "100"}))
	assert.Equal(t, []string{"short", "long"}, ids(t, logs, Criteria{Type: "Call", MinLength: "45"}))
}

func TestQueryMinLengthCharacters(t *testing.T) {
	logs := []models.LogEntry{
		entry("short", models.TypeText, "01-04-2024", "hi", false),
		entry("long", models.TypeText, "01-04-2024", "hello there", false),
		// Non-numeric call content is measured in characters
		entry("call", models.TypeCall, "01-04-2024", "unknown", false),
	}

	assert.Equal(t, []string{"long", "call"}, ids(t, logs, Criteria{MinLength: "5"}))
	assert.Equal(t, []string{"short", "long", "call"}, ids(t, logs, Criteria{MinLength: "0"}))
	assert.Equal(t, []string{"short", "long", "call"}, ids(t, logs, Criteria{MinLength: "-3"}))
}

func TestQueryMinLengthNotNumeric(t *testing.T) {
	_, err := Query(nil, Criteria{MinLength: "abc"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestQueryDateRange(t *testing.T) {
	logs := []models.LogEntry{
		entry("march", models.TypeText, "31-03-2024", "a", false),
		entry("april1", models.TypeText, "01-04-2024", "b", false),
		entry("april7", models.TypeText, "07-04-2024", "c", false),
		entry("may", models.TypeText, "01-05-2024", "d", false),
		entry("garbled", models.TypeText, "someday", "e", false),
	}

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{name: "inclusive range", criteria: Criteria{DateMin: "2024-04-01", DateMax: "2024-04-07"}, want: []string{"april1", "april7", "garbled"}},
		{name: "min only", criteria: Criteria{DateMin: "2024-04-02"}, want: []string{"april7", "may", "garbled"}},
		{name: "max only", criteria: Criteria{DateMax: "2024-03-31"}, want: []string{"march", "garbled"}},
		{name: "unparsable max ignored", criteria: Criteria{DateMin: "2024-04-01", DateMax: "not-a-date"}, want: []string{"april1", "april7", "may", "garbled"}},
		{name: "unparsable min ignored", criteria: Criteria{DateMin: "01-04-2024", DateMax: "2024-04-01"}, want: []string{"march", "april1", "garbled"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(t, logs, tt.criteria))
		})
	}
}

func TestQueryKeyword(t *testing.T) {
	a := entry("content", models.TypeText, "01-04-2024", "Meet at the DOCK", false)
	b := entry("sender", models.TypeText, "01-04-2024", "hello", false)
	b.SenderName = "Dockworker"
	c := entry("receiver", models.TypeText, "01-04-2024", "hello", false)
	c.ReceiverName = "Mr. Dock"
	d := entry("none", models.TypeText, "01-04-2024", "hello", false)

	assert.Equal(t, []string{"content", "sender", "receiver"}, ids(t, []models.LogEntry{a, b, c, d}, Criteria{Keyword: "dock"}))
}

func TestQuerySenderGender(t *testing.T) {
	a := entry("f", models.TypeText, "01-04-2024", "x", false)
	b := entry("m", models.TypeText, "01-04-2024", "x", false)
	b.SenderGender = models.GenderMale

	logs := []models.LogEntry{a, b}
	assert.Equal(t, []string{"m"}, ids(t, logs, Criteria{SenderGender: "M"}))
	assert.Equal(t, []string{"f", "m"}, ids(t, logs, Criteria{SenderGender: All}))
}

func TestQueryCombinesCriteria(t *testing.T) {
	logs := []models.LogEntry{
		entry("1", models.TypeText, "01-04-2024", "transfer the money", true),
		entry("2", models.TypeText, "01-05-2024", "transfer the money", true),
		entry("3", models.TypeAudio, "01-04-2024", "transfer.mp3", false),
	}

	assert.Equal(t, []string{"1"}, ids(t, logs, Criteria{
		Keyword:    "transfer",
		Type:       "Text",
		DateMax:    "2024-04-30",
		Suspicious: FlagSuspicious,
	}))
}

func TestApplyIsRestartable(t *testing.T) {
	logs := []models.LogEntry{
		entry("1", models.TypeText, "01-04-2024", "a", false),
		entry("2", models.TypeText, "01-04-2024", "b", false),
	}

	seq, err := Query(logs, Criteria{})
	require.NoError(t, err)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestApplyStopsEarly(t *testing.T) {
	logs := []models.LogEntry{
		entry("1", models.TypeText, "01-04-2024", "a", false),
		entry("2", models.TypeText, "01-04-2024", "b", false),
		entry("3", models.TypeText, "01-04-2024", "c", false),
	}

	m, err := Compile(Criteria{})
	require.NoError(t, err)

	var seen []string
	for e := range m.Apply(logs) {
		seen = append(seen, e.ID)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"1", "2"}, seen)
}

func TestApplyDoesNotTruncate(t *testing.T) {
	long := entry("1", models.TypeText, "01-04-2024", "this message is well past the fifty character display limit", false)

	got := slices.Collect(mustQuery(t, []models.LogEntry{long}, Criteria{}))
	require.Len(t, got, 1)
	assert.Equal(t, long.Content, got[0].Content)
}

func mustQuery(t *testing.T, logs []models.LogEntry, c Criteria) iter.Seq[models.LogEntry] {
	t.Helper()
	seq, err := Query(logs, c)
	require.NoError(t, err)
	return seq
}
