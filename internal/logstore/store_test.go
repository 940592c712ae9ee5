package logstore

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidence-log-analyzer/internal/common"
	"evidence-log-analyzer/internal/logging"
	"evidence-log-analyzer/internal/models"
	"evidence-log-analyzer/internal/storage"
)

type allowList map[string]bool

func (a allowList) CheckAccess(username, capability string) bool {
	return a[username]
}

type recorder struct {
	actions []string
}

func (r *recorder) Record(user, action string) models.AuditEntry {
	r.actions = append(r.actions, action)
	return models.AuditEntry{User: user, Action: action}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T) (*Store, *recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "communication_logs.json")
	rec := &recorder{}
	s := NewStore(path, allowList{"admin": true}, rec, logging.Nop(), WithIDGenerator(sequentialIDs()))
	return s, rec, path
}

func textInput(content string) Input {
	return Input{
		Type:           models.TypeText,
		SenderName:     "Alice",
		ReceiverName:   "Bob",
		SenderGender:   "f",
		ReceiverGender: "M",
		Date:           "15-03-2024",
		Time:           "14:30:00",
		Content:        content,
	}
}

func TestValidate(t *testing.T) {
	valid := textInput("hello")

	tests := []struct {
		name    string
		mutate  func(in *Input)
		wantErr bool
	}{
		{name: "valid", mutate: func(in *Input) {}},
		{name: "leap day", mutate: func(in *Input) { in.Date = "29-02-2024" }},
		{name: "not a leap year", mutate: func(in *Input) { in.Date = "29-02-2023" }, wantErr: true},
		{name: "impossible date", mutate: func(in *Input) { in.Date = "30-02-2023" }, wantErr: true},
		{name: "iso date", mutate: func(in *Input) { in.Date = "2024-03-15" }, wantErr: true},
		{name: "bad time", mutate: func(in *Input) { in.Time = "25:00:00" }, wantErr: true},
		{name: "unknown type", mutate: func(in *Input) { in.Type = "Email" }, wantErr: true},
		{name: "empty sender", mutate: func(in *Input) { in.SenderName = "  " }, wantErr: true},
		{name: "empty receiver", mutate: func(in *Input) { in.ReceiverName = "" }, wantErr: true},
		{name: "bad gender", mutate: func(in *Input) { in.SenderGender = "X" }, wantErr: true},
		{name: "empty content", mutate: func(in *Input) { in.Content = " " }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			_, err := Validate(in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNormalizes(t *testing.T) {
	in := textInput("  hello  ")
	in.SenderName = " Alice "
	in.SenderGender = " f "

	entry, err := Validate(in)
	require.NoError(t, err)
	assert.Equal(t, "Alice", entry.SenderName)
	assert.Equal(t, models.GenderFemale, entry.SenderGender)
	assert.Equal(t, "hello", entry.Content)
	assert.Empty(t, entry.ID)
}

func TestAdd(t *testing.T) {
	s, rec, path := newTestStore(t)

	entry, err := s.Add("analyst", textInput("The bomb is ready"))
	require.NoError(t, err)
	assert.Equal(t, "id-1", entry.ID)
	assert.True(t, entry.IsSuspicious)
	assert.Equal(t, []string{"Added new Text log entry with ID: id-1"}, rec.actions)

	got, ok := s.Get("id-1")
	require.True(t, ok)
	assert.Equal(t, entry, got)

	var stored []models.LogEntry
	require.NoError(t, storage.Load(path, &stored))
	assert.Equal(t, []models.LogEntry{entry}, stored)
}

func TestAddOnlyTextIsScanned(t *testing.T) {
	s, _, _ := newTestStore(t)

	for _, logType := range []models.LogType{models.TypeAudio, models.TypeVideo, models.TypeCall} {
		in := textInput("bomb")
		in.Type = logType
		entry, err := s.Add("analyst", in)
		require.NoError(t, err)
		assert.False(t, entry.IsSuspicious, logType)
	}
	assert.Equal(t, 3, s.Len())
}

func TestAddInvalidChangesNothing(t *testing.T) {
	s, rec, path := newTestStore(t)

	in := textInput("hello")
	in.Date = "30-02-2023"
	_, err := s.Add("analyst", in)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, s.Len())
	assert.Empty(t, rec.actions)
	assert.False(t, storage.Exists(path))
}

func TestWithDetector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "communication_logs.json")
	s := NewStore(path, allowList{}, &recorder{}, logging.Nop(), WithDetector(flagAll{}))

	entry, err := s.Add("analyst", textInput("hello"))
	require.NoError(t, err)
	assert.True(t, entry.IsSuspicious)
	assert.NotEmpty(t, entry.ID)
}

type flagAll struct{}

func (flagAll) IsSuspicious(string) bool { return true }

func TestRemove(t *testing.T) {
	s, rec, path := newTestStore(t)

	first, err := s.Add("analyst", textInput("first"))
	require.NoError(t, err)
	before := s.Snapshot()

	second, err := s.Add("analyst", textInput("second"))
	require.NoError(t, err)

	require.NoError(t, s.Remove("admin", second.ID))
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, "Removed log entry with ID: id-2", rec.actions[len(rec.actions)-1])

	var stored []models.LogEntry
	require.NoError(t, storage.Load(path, &stored))
	assert.Equal(t, []models.LogEntry{first}, stored)
}

func TestRemoveErrors(t *testing.T) {
	s, _, _ := newTestStore(t)
	_, err := s.Add("analyst", textInput("first"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Remove("analyst", "id-1"), common.ErrAuthorization)
	assert.ErrorIs(t, s.Remove("admin", ""), common.ErrValidation)
	assert.ErrorIs(t, s.Remove("admin", "missing"), common.ErrNotFound)
	assert.Equal(t, 1, s.Len())
}

func TestRemoveLastWritesEmptyList(t *testing.T) {
	s, _, path := newTestStore(t)
	_, err := s.Add("analyst", textInput("only"))
	require.NoError(t, err)

	require.NoError(t, s.Remove("admin", "id-1"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestNewStoreReloads(t *testing.T) {
	s, _, path := newTestStore(t)
	entry, err := s.Add("analyst", textInput("persisted"))
	require.NoError(t, err)

	reopened := NewStore(path, allowList{}, &recorder{}, logging.Nop())
	assert.Equal(t, []models.LogEntry{entry}, reopened.Snapshot())
}

func TestNewStoreCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "communication_logs.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	s := NewStore(path, allowList{}, &recorder{}, logging.Nop())
	assert.Zero(t, s.Len())
}
