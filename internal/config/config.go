// Package config provides shared configuration constants and settings
// for the evidence log analyzer
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults)
//  2. An optional dotenv file (default ".env"), loaded with godotenv
//  3. EVIDENCE_* environment variables
//  4. Command-line flags, applied by the commands package
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	// DefaultUsersFile is the credential document, created with the default
	// accounts on first run
	DefaultUsersFile = "user_credentials.json"

	// UsersFileDescription is the help text for the users file flag
	UsersFileDescription = "Path to the user credentials JSON file"

	// DefaultLogsFile is the communication log document
	DefaultLogsFile = "communication_logs.json"

	// LogsFileDescription is the help text for the logs file flag
	LogsFileDescription = "Path to the communication logs JSON file"

	// DefaultAuditFile is the access history document
	DefaultAuditFile = "access_history.json"

	// AuditFileDescription is the help text for the audit file flag
	AuditFileDescription = "Path to the access history JSON file"

	// DefaultDatabaseFile is the SQLite file written by export and read by query
	DefaultDatabaseFile = "evidence.db"

	// DatabaseFileDescription is the help text for the database file flag
	DatabaseFileDescription = "Path to SQLite database file"

	// DefaultEnvFile is the dotenv file read at startup when present
	DefaultEnvFile = ".env"

	// DefaultLogLevel is the level of diagnostic output on stderr
	DefaultLogLevel = "warn"
)

// Environment variable names
const (
	EnvUsersFile = "EVIDENCE_USERS_FILE"
	EnvLogsFile  = "EVIDENCE_LOGS_FILE"
	EnvAuditFile = "EVIDENCE_AUDIT_FILE"
	EnvLogLevel  = "EVIDENCE_LOG_LEVEL"
)

// Config holds the file locations and logging settings of one run
type Config struct {
	UsersFile string
	LogsFile  string
	AuditFile string
	LogLevel  string
}

// LoadDefaults populates c with the default file names
func (c *Config) LoadDefaults() {
	c.UsersFile = DefaultUsersFile
	c.LogsFile = DefaultLogsFile
	c.AuditFile = DefaultAuditFile
	c.LogLevel = DefaultLogLevel
}

// Load builds a Config from defaults, the dotenv file at envFile and the
// environment. A missing dotenv file is not an error.
func Load(envFile string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvUsersFile); v != "" {
		c.UsersFile = v
	}
	if v := os.Getenv(EnvLogsFile); v != "" {
		c.LogsFile = v
	}
	if v := os.Getenv(EnvAuditFile); v != "" {
		c.AuditFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}
