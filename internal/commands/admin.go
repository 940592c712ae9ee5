package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"evidence-log-analyzer/internal/audit"
	"evidence-log-analyzer/internal/credentials"
	"evidence-log-analyzer/internal/models"
)

// newAuditCommand creates the 'audit' subcommand that shows the access history
func newAuditCommand(rt *runtime) *cobra.Command {
	var creds credentialFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the access history, newest first",
		Long: `Show the access history: logins, log additions and removals, user
creation and access denials, newest first. Requires the admin_logs permission.

Example:
  evidence-log-analyzer audit -u admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.login(cmd, &creds)
			if err != nil {
				return err
			}
			defer s.Logout()

			entries, err := s.AuditTrail()
			if err != nil {
				return err
			}

			entries = audit.NewestFirst(entries)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			displayAuditEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	creds.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")

	return cmd
}

// newAddUserCommand creates the 'add-user' subcommand
func newAddUserCommand(rt *runtime) *cobra.Command {
	var creds credentialFlags
	var req credentials.NewUser
	var role string

	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Create a user account (admin verification required)",
		Long: `Create a user account. Requires the user_management permission, and the
credentials of an administrator account must be given again with --admin and
--admin-password. Accounts stored in the legacy bare-password format cannot
authorize user creation.

Role "user" accounts are restricted from admin_logs, user_management and
remove_logs; role "admin" accounts are unrestricted.

Example:
  evidence-log-analyzer add-user -u admin --admin admin --new-user carol --role user`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.login(cmd, &creds)
			if err != nil {
				return err
			}
			defer s.Logout()

			if req.AdminUsername == "" {
				req.AdminUsername = creds.username
			}
			if !flagChanged(cmd, "admin-password") {
				if req.AdminPassword, err = rt.prompt(cmd, fmt.Sprintf("Admin password for %s: ", req.AdminUsername), true); err != nil {
					return fmt.Errorf("failed to read admin password: %w", err)
				}
			}
			if !flagChanged(cmd, "new-password") {
				if req.Password, err = rt.prompt(cmd, fmt.Sprintf("Password for new user %s: ", req.Username), true); err != nil {
					return fmt.Errorf("failed to read new password: %w", err)
				}
			}
			req.Role = models.Role(role)

			if err := s.AddUser(req); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User '%s' added successfully with role '%s'.\n", req.Username, req.Role)
			return nil
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVar(&req.AdminUsername, "admin", "", "Administrator username to verify (defaults to --user)")
	cmd.Flags().StringVar(&req.AdminPassword, "admin-password", "", "Administrator password (prompted for when omitted)")
	cmd.Flags().StringVar(&req.Username, "new-user", "", "Username of the new account (required)")
	cmd.Flags().StringVar(&req.Password, "new-password", "", "Password of the new account (prompted for when omitted)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleUser), "Role of the new account: admin or user")
	cmd.MarkFlagRequired("new-user")

	return cmd
}

// displayAuditEntries prints audit entries as an aligned table
func displayAuditEntries(w io.Writer, entries []models.AuditEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No access history recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Timestamp\tUser\tAction Description")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", orNA(e.Timestamp), orNA(e.User), orNA(e.Action))
	}
	tw.Flush()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
