package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"evidence-log-analyzer/internal/config"
)

// newExportCommand creates the 'export' subcommand for writing the log collection to SQLite
// Usage: evidence-log-analyzer export -u analyst [--db evidence.db] [--append]
func newExportCommand(rt *runtime) *cobra.Command {
	var creds credentialFlags
	var dbFile string
	var appendMode bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export communication logs into a SQLite database",
		Long: `Export the communication log collection into a SQLite database so it can be
explored with the 'query' command.

Rows are written to the communication_logs table. date_iso holds the date as
YYYY-MM-DD for sorting and range queries.

By default, exporting replaces any rows already in the database.
Use the --append flag to keep existing rows; entries already exported are skipped.

Example:
  evidence-log-analyzer export -u analyst --db evidence.db
  evidence-log-analyzer export -u analyst --db evidence.db --append`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if _, err := os.Stat(dbFile); os.IsNotExist(err) && appendMode {
				fmt.Fprintf(out, "Warning: Database file does not exist: %s\n", dbFile)
				fmt.Fprintf(out, "A new database will be created.\n")
			}

			s, err := rt.login(cmd, &creds)
			if err != nil {
				return err
			}
			defer s.Logout()

			count, err := s.ExportSQLite(dbFile, appendMode)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Successfully exported %d entries into %s\n", count, dbFile)
			return nil
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVarP(&dbFile, "db", "d", config.DefaultDatabaseFile, config.DatabaseFileDescription)
	cmd.Flags().BoolVar(&appendMode, "append", false, "Append to existing database (default: replace existing rows)")

	return cmd
}
