package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears the EVIDENCE_* variables for the duration of the test
func unsetEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvUsersFile, EnvLogsFile, EnvAuditFile, EnvLogLevel} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

// TestConfigConstants tests that the configuration constants are properly defined
func TestConfigConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "users file", value: DefaultUsersFile, expected: "user_credentials.json"},
		{name: "logs file", value: DefaultLogsFile, expected: "communication_logs.json"},
		{name: "audit file", value: DefaultAuditFile, expected: "access_history.json"},
		{name: "database file", value: DefaultDatabaseFile, expected: "evidence.db"},
		{name: "database description", value: DatabaseFileDescription, expected: "Path to SQLite database file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	assert.Equal(t, Config{
		UsersFile: DefaultUsersFile,
		LogsFile:  DefaultLogsFile,
		AuditFile: DefaultAuditFile,
		LogLevel:  DefaultLogLevel,
	}, cfg)
}

func TestLoad(t *testing.T) {
	t.Run("missing dotenv file is ignored", func(t *testing.T) {
		unsetEnv(t)

		cfg, err := Load(filepath.Join(t.TempDir(), ".env"))
		require.NoError(t, err)
		assert.Equal(t, DefaultUsersFile, cfg.UsersFile)
		assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	})

	t.Run("empty path skips dotenv", func(t *testing.T) {
		unsetEnv(t)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultLogsFile, cfg.LogsFile)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		unsetEnv(t)
		t.Setenv(EnvUsersFile, "/data/users.json")
		t.Setenv(EnvLogLevel, "debug")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "/data/users.json", cfg.UsersFile)
		assert.Equal(t, DefaultLogsFile, cfg.LogsFile)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("dotenv file sets values", func(t *testing.T) {
		unsetEnv(t)
		envFile := filepath.Join(t.TempDir(), ".env")
		content := "EVIDENCE_LOGS_FILE=case42_logs.json\nEVIDENCE_AUDIT_FILE=case42_audit.json\n"
		require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
		// godotenv exports into the process environment
		t.Cleanup(func() {
			os.Unsetenv(EnvLogsFile)
			os.Unsetenv(EnvAuditFile)
		})

		cfg, err := Load(envFile)
		require.NoError(t, err)
		assert.Equal(t, "case42_logs.json", cfg.LogsFile)
		assert.Equal(t, "case42_audit.json", cfg.AuditFile)
		assert.Equal(t, DefaultUsersFile, cfg.UsersFile)
	})

	t.Run("environment wins over dotenv", func(t *testing.T) {
		unsetEnv(t)
		t.Setenv(EnvLogsFile, "from_env.json")
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("EVIDENCE_LOGS_FILE=from_dotenv.json\n"), 0o600))

		cfg, err := Load(envFile)
		require.NoError(t, err)
		assert.Equal(t, "from_env.json", cfg.LogsFile)
	})
}
