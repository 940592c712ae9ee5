package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"evidence-log-analyzer/internal/filter"
	"evidence-log-analyzer/internal/logstore"
	"evidence-log-analyzer/internal/models"
)

// newAddLogCommand creates the 'add-log' subcommand
// Usage: evidence-log-analyzer add-log -u analyst --type Text --sender A --receiver B ...
func newAddLogCommand(rt *runtime) *cobra.Command {
	var creds credentialFlags
	var in logstore.Input
	var logType string

	now := time.Now()

	cmd := &cobra.Command{
		Use:   "add-log",
		Short: "Add a communication log entry",
		Long: `Add a communication log entry.

--content holds the message text for Text entries, the file name for Audio
and Video entries, and the duration in seconds for Call entries. Text
entries are checked against the suspicious keyword list when added.

Date and time default to now.

Example:
  evidence-log-analyzer add-log -u analyst --type Text --sender Alice --sender-gender F \
    --receiver Bob --receiver-gender M --content "meet at the dock"
  evidence-log-analyzer add-log -u analyst --type Call --sender Alice --sender-gender F \
    --receiver Bob --receiver-gender M --date 03-04-2024 --time 21:15:00 --content 120`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.login(cmd, &creds)
			if err != nil {
				return err
			}
			defer s.Logout()

			in.Type = models.LogType(logType)
			entry, err := s.AddLog(in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Log entry added: %s\n", entry.ID)
			if entry.IsSuspicious {
				fmt.Fprintln(out, "Content matched the suspicious keyword list")
			}
			return nil
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVar(&logType, "type", string(models.TypeText), "Entry type: Text, Audio, Video or Call")
	cmd.Flags().StringVar(&in.SenderName, "sender", "", "Sender name")
	cmd.Flags().StringVar(&in.ReceiverName, "receiver", "", "Receiver name")
	cmd.Flags().StringVar(&in.SenderGender, "sender-gender", "", "Sender gender: M, F or O")
	cmd.Flags().StringVar(&in.ReceiverGender, "receiver-gender", "", "Receiver gender: M, F or O")
	cmd.Flags().StringVar(&in.Date, "date", now.Format(models.DateLayout), "Date as DD-MM-YYYY")
	cmd.Flags().StringVar(&in.Time, "time", now.Format(models.TimeLayout), "Time as HH:MM:SS")
	cmd.Flags().StringVar(&in.Content, "content", "", "Message text, file name, or call duration in seconds")

	return cmd
}

// newRemoveLogCommand creates the 'remove-log' subcommand
func newRemoveLogCommand(rt *runtime) *cobra.Command {
	var creds credentialFlags
	var id string

	cmd := &cobra.Command{
		Use:   "remove-log",
		Short: "Remove a communication log entry by ID",
		Long: `Remove a communication log entry by ID. Requires the remove_logs permission.

Example:
  evidence-log-analyzer remove-log -u admin --id 6f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.login(cmd, &creds)
			if err != nil {
				return err
			}
			defer s.Logout()

			if err := s.RemoveLog(id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Log ID %s removed.\n", id)
			return nil
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVar(&id, "id", "", "ID of the log entry to remove (required)")
	cmd.MarkFlagRequired("id")

	return cmd
}

// newListCommand creates the 'list' subcommand for searching and filtering log entries
func newListCommand(rt *runtime) *cobra.Command {
	var creds credentialFlags
	var criteria filter.Criteria
	var full, asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List and filter communication log entries",
		Long: `List communication log entries, optionally filtered. All filters combine.

  --keyword     case-insensitive match in content, sender or receiver
  --type        Text, Audio, Video, Call or All
  --date-min    earliest date, YYYY-MM-DD (ignored if it does not parse)
  --date-max    latest date, YYYY-MM-DD (ignored if it does not parse)
  --gender      sender gender M, F, O or All
  --min-length  minimum content length; for Call entries the duration in seconds
  --suspicious  Suspicious, Normal or All

Content longer than 50 characters is shortened unless --full is given.

Example:
  evidence-log-analyzer list -u analyst --type Text --suspicious Suspicious
  evidence-log-analyzer list -u analyst --type Call --min-length 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.login(cmd, &creds)
			if err != nil {
				return err
			}
			defer s.Logout()

			results, err := s.Query(criteria)
			if err != nil {
				return err
			}

			entries := []models.LogEntry{}
			for e := range results {
				entries = append(entries, e)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			displayLogEntries(cmd.OutOrStdout(), entries, full)
			return nil
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVar(&criteria.Keyword, "keyword", "", "Keyword to search for")
	cmd.Flags().StringVar(&criteria.Type, "type", filter.All, "Entry type filter")
	cmd.Flags().StringVar(&criteria.DateMin, "date-min", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&criteria.DateMax, "date-max", "", "Latest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&criteria.SenderGender, "gender", filter.All, "Sender gender filter")
	cmd.Flags().StringVar(&criteria.MinLength, "min-length", "", "Minimum length/duration")
	cmd.Flags().StringVar(&criteria.Suspicious, "suspicious", filter.All, "Suspicious flag filter")
	cmd.Flags().BoolVar(&full, "full", false, "Show full content")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print matching entries as JSON")

	return cmd
}

// newImportCommand creates the 'import' subcommand for bulk CSV import
func newImportCommand(rt *runtime) *cobra.Command {
	var creds credentialFlags
	var csvFile string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import communication log entries from a CSV file",
		Long: `Import communication log entries from a CSV file.

The CSV file should have columns in this order:
  type, sender_name, receiver_name, sender_gender, receiver_gender, date, time, content_or_duration

A header row is detected and skipped. Every row is validated before any is
added, so a file with an invalid row changes nothing.

Example:
  evidence-log-analyzer import -u analyst --file seized_phone.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.login(cmd, &creds)
			if err != nil {
				return err
			}
			defer s.Logout()

			added, err := s.ImportCSV(csvFile)
			if err != nil {
				return err
			}

			suspicious := 0
			for _, e := range added {
				if e.IsSuspicious {
					suspicious++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d log entries (%d suspicious)\n", len(added), suspicious)
			return nil
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVarP(&csvFile, "file", "f", "", "Path to CSV file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

// displayLogEntries prints entries as an aligned table
func displayLogEntries(w io.Writer, entries []models.LogEntry, full bool) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tType\tSender\tReceiver\tDate\tTime\tContent/Duration\tSuspicious")
	for _, e := range entries {
		content := e.Content
		if !full {
			content = models.Truncate(content, models.DisplayContentLimit)
		}
		suspicious := "NO"
		if e.IsSuspicious {
			suspicious = "YES"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s (%s)\t%s (%s)\t%s\t%s\t%s\t%s\n",
			e.ID, e.Type,
			e.SenderName, e.SenderGender,
			e.ReceiverName, e.ReceiverGender,
			e.Date, e.Time, content, suspicious)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n(%d rows)\n", len(entries))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
