// Package commands implements the CLI commands for the evidence log analyzer
package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"evidence-log-analyzer/internal/config"
	"evidence-log-analyzer/internal/logging"
	"evidence-log-analyzer/internal/session"
)

// Test seams for the terminal password prompt
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// runtime carries the global flags and the lazily opened engine shared by subcommands
type runtime struct {
	envFile   string
	usersFile string
	logsFile  string
	auditFile string
	logLevel  string

	cfg    *config.Config
	logger logging.Logger
	engine *session.Engine
	input  *bufio.Reader
}

// NewRootCommand creates the root command with every subcommand attached
func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:   "evidence-log-analyzer",
		Short: "Record, browse and audit communication-log evidence",
		Long: `Evidence Log Analyzer keeps communication logs (text messages, audio and
video files, calls) for investigators, flags text containing suspicious
keywords, and records every login, change and access denial in an audit trail.

Data lives in three JSON files: user credentials, communication logs and
access history. On first run the credential file is created with two
accounts: admin/password123 (administrator) and analyst/secure456
(restricted analyst). Passwords are stored in clear text.

Most commands need --user; the password is read from --password or
prompted for on the terminal.`,
		SilenceUsage:      true,
		PersistentPreRunE: rt.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&rt.envFile, "env", config.DefaultEnvFile, "Dotenv file with EVIDENCE_* settings")
	flags.StringVar(&rt.usersFile, "users", config.DefaultUsersFile, config.UsersFileDescription)
	flags.StringVar(&rt.logsFile, "logs", config.DefaultLogsFile, config.LogsFileDescription)
	flags.StringVar(&rt.auditFile, "audit", config.DefaultAuditFile, config.AuditFileDescription)
	flags.StringVar(&rt.logLevel, "log-level", config.DefaultLogLevel, "Diagnostic log level (debug, info, warn, error)")

	cmd.AddCommand(newAddLogCommand(rt))
	cmd.AddCommand(newRemoveLogCommand(rt))
	cmd.AddCommand(newListCommand(rt))
	cmd.AddCommand(newImportCommand(rt))
	cmd.AddCommand(newAuditCommand(rt))
	cmd.AddCommand(newAddUserCommand(rt))
	cmd.AddCommand(newExportCommand(rt))
	cmd.AddCommand(NewQueryCommand())

	return cmd
}

// setup resolves configuration: defaults, dotenv, environment, then explicitly set flags
func (rt *runtime) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rt.envFile)
	if err != nil {
		return err
	}

	if flagChanged(cmd, "users") {
		cfg.UsersFile = rt.usersFile
	}
	if flagChanged(cmd, "logs") {
		cfg.LogsFile = rt.logsFile
	}
	if flagChanged(cmd, "audit") {
		cfg.AuditFile = rt.auditFile
	}
	if flagChanged(cmd, "log-level") {
		cfg.LogLevel = rt.logLevel
	}

	logger, err := logging.NewTextLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	rt.cfg = cfg
	rt.logger = logger
	rt.input = bufio.NewReader(cmd.InOrStdin())
	return nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// open creates the engine on first use; commands that never log in do not
// touch the JSON files
func (rt *runtime) open() *session.Engine {
	if rt.engine == nil {
		rt.engine = session.New(rt.cfg, rt.logger)
	}
	return rt.engine
}

// credentialFlags are the login flags shared by commands that need a session
type credentialFlags struct {
	username string
	password string
}

func (c *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.username, "user", "u", "", "Username to log in as (required)")
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "Password (prompted for when omitted)")
	cmd.MarkFlagRequired("user")
}

// login authenticates the command's user and returns the open session
func (rt *runtime) login(cmd *cobra.Command, creds *credentialFlags) (*session.Session, error) {
	password := creds.password
	if !flagChanged(cmd, "password") {
		var err error
		password, err = rt.prompt(cmd, fmt.Sprintf("Password for %s: ", creds.username), true)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
	}

	return rt.open().Login(creds.username, password)
}

// prompt reads one line, without echo when secret is set and stdin is a terminal
func (rt *runtime) prompt(cmd *cobra.Command, label string, secret bool) (string, error) {
	w := cmd.ErrOrStderr()
	fmt.Fprint(w, label)

	if secret && cmd.InOrStdin() == os.Stdin && isTerminal(int(os.Stdin.Fd())) {
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := rt.input.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
