package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"evidence-log-analyzer/internal/config"
	"evidence-log-analyzer/internal/database"
)

// NewQueryCommand creates the 'query' subcommand for executing SQL queries
// Usage: evidence-log-analyzer query [--db evidence.db] [--sql "SELECT * FROM communication_logs"]
func NewQueryCommand() *cobra.Command {
	var dbFile string
	var sqlQuery string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Execute SQL queries against an exported log database",
		Long: `Execute SQL queries against a SQLite database written by the 'export' command.

You can either provide a query directly via the --sql flag or enter interactive mode
to execute multiple queries.

SECURITY: Only read-only queries are allowed. Write operations (INSERT, UPDATE, DELETE,
CREATE, DROP, etc.) are blocked for data protection.

Common example queries:
  # Suspicious messages per sender
  SELECT sender_name, COUNT(*) as flagged FROM communication_logs
  WHERE is_suspicious = 1 GROUP BY sender_name ORDER BY flagged DESC;

  # Calls longer than two minutes
  SELECT * FROM communication_logs
  WHERE type = 'Call' AND CAST(content_or_duration AS INTEGER) > 120;

  # Everything exchanged during one week
  SELECT * FROM communication_logs
  WHERE date_iso BETWEEN '2024-04-01' AND '2024-04-07' ORDER BY date_iso, time;

Interactive mode:
  evidence-log-analyzer query --db evidence.db

Direct query:
  evidence-log-analyzer query --db evidence.db --sql "SELECT COUNT(*) FROM communication_logs"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryCommand(cmd.InOrStdin(), cmd.OutOrStdout(), dbFile, sqlQuery)
		},
	}

	// Define command flags
	cmd.Flags().StringVarP(&dbFile, "db", "d", config.DefaultDatabaseFile, config.DatabaseFileDescription)
	cmd.Flags().StringVarP(&sqlQuery, "sql", "s", "", "SQL query to execute (if not provided, enters interactive mode)")

	return cmd
}

// runQueryCommand executes the query logic
func runQueryCommand(in io.Reader, out io.Writer, dbFile, sqlQuery string) error {
	// Validate database file exists
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s\nPlease run 'export' command first", dbFile)
	}

	db, err := database.Initialize(dbFile)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Execute single query or enter interactive mode
	if sqlQuery != "" {
		return executeSingleQuery(out, db, sqlQuery)
	}

	return enterInteractiveMode(in, out, db, dbFile)
}

// executeSingleQuery runs a single SQL query and displays results
func executeSingleQuery(out io.Writer, db database.DB, query string) error {
	fmt.Fprintf(out, "Executing query: %s\n\n", query)

	// Validate that query is read-only
	if err := ValidateReadOnlyQuery(query); err != nil {
		return fmt.Errorf("query validation failed: %w", err)
	}

	results, err := database.ExecuteQuery(db, query)
	if err != nil {
		return fmt.Errorf("query execution failed: %w", err)
	}

	displayResults(out, results)
	return nil
}

// enterInteractiveMode provides an interactive SQL query interface
func enterInteractiveMode(in io.Reader, out io.Writer, db database.DB, dbFile string) error {
	fmt.Fprintf(out, "Connected to database: %s\n", dbFile)
	fmt.Fprintln(out, "Interactive SQL query mode. Type 'exit' or 'quit' to exit.")
	fmt.Fprintln(out, "SECURITY: Only read-only queries (SELECT, WITH, EXPLAIN) are allowed.")
	fmt.Fprintln(out, "Example queries:")
	fmt.Fprintln(out, "  SELECT COUNT(*) FROM communication_logs WHERE is_suspicious = 1;")
	fmt.Fprintln(out, "  SELECT type, COUNT(*) FROM communication_logs GROUP BY type;")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "sql> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		// Handle exit commands
		if input == "exit" || input == "quit" {
			fmt.Fprintln(out, "Goodbye!")
			break
		}

		if input == "" {
			continue
		}

		if err := ValidateReadOnlyQuery(input); err != nil {
			fmt.Fprintf(out, "Error: %v\n\n", err)
			continue
		}

		results, err := database.ExecuteQuery(db, input)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n\n", err)
			continue
		}

		displayResults(out, results)
		fmt.Fprintln(out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

// displayResults formats and prints query results
// Columns are printed in alphabetical order
func displayResults(out io.Writer, results []map[string]interface{}) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return
	}

	var columns []string
	for column := range results[0] {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	// Print header
	for i, column := range columns {
		if i > 0 {
			fmt.Fprint(out, " | ")
		}
		fmt.Fprintf(out, "%-15s", column)
	}
	fmt.Fprintln(out)

	// Print separator
	for i := range columns {
		if i > 0 {
			fmt.Fprint(out, " | ")
		}
		fmt.Fprint(out, strings.Repeat("-", 15))
	}
	fmt.Fprintln(out)

	// Print rows
	for _, row := range results {
		for i, column := range columns {
			if i > 0 {
				fmt.Fprint(out, " | ")
			}
			fmt.Fprintf(out, "%-15v", row[column])
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\n(%d rows)\n", len(results))
}

// ValidateReadOnlyQuery ensures the SQL query is read-only and safe to execute
// Prevents data modification, schema changes, and other potentially harmful operations
func ValidateReadOnlyQuery(query string) error {
	// Normalize query: trim whitespace and convert to lowercase
	normalizedQuery := strings.TrimSpace(strings.ToLower(query))

	// Remove comments (basic comment removal)
	// Remove single-line comments (-- comment)
	commentRegex := regexp.MustCompile(`--.*`)
	normalizedQuery = commentRegex.ReplaceAllString(normalizedQuery, "")

	// Remove multi-line comments (/* comment */)
	multiCommentRegex := regexp.MustCompile(`/\*.*?\*/`)
	normalizedQuery = multiCommentRegex.ReplaceAllString(normalizedQuery, "")

	// Trim again after comment removal
	normalizedQuery = strings.TrimSpace(normalizedQuery)

	if normalizedQuery == "" {
		return fmt.Errorf("empty query")
	}

	// Define allowed read-only operations
	allowedPrefixes := []string{
		"select",    // SELECT queries
		"with",      // Common Table Expressions (CTEs)
		"explain",   // Query execution plans
	}

	// Check if query starts with an allowed operation
	queryStartsWithAllowed := false
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(normalizedQuery, prefix) {
			queryStartsWithAllowed = true
			break
		}
	}

	// Allow specific PRAGMA queries that are read-only
	if strings.HasPrefix(normalizedQuery, "pragma") {
		allowedPragmas := []string{
			"pragma table_info(",
			"pragma index_list(",
			"pragma index_info(",
			"pragma foreign_key_list(",
			"pragma schema_version",
			"pragma user_version",
			"pragma database_list",
			"pragma compile_options",
		}

		pragmaAllowed := false
		for _, allowedPragma := range allowedPragmas {
			if strings.HasPrefix(normalizedQuery, allowedPragma) {
				pragmaAllowed = true
				break
			}
		}

		if !pragmaAllowed {
			return fmt.Errorf("PRAGMA statement not allowed. Only read-only PRAGMA statements are permitted")
		}
		queryStartsWithAllowed = true
	}

	if !queryStartsWithAllowed {
		return fmt.Errorf("only read-only queries are allowed (SELECT, WITH, EXPLAIN, and read-only PRAGMA)")
	}

	// Define forbidden keywords that indicate write operations
	forbiddenKeywords := []string{
		"insert", "update", "delete", "drop", "create", "alter",
		"truncate", "replace", "merge", "upsert",
		"attach", "detach", "vacuum", "reindex",
		"begin", "commit", "rollback", "savepoint",
	}

	// Check for forbidden keywords anywhere in the query
	for _, keyword := range forbiddenKeywords {
		// Use word boundary regex to match whole words only
		keywordRegex := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		if keywordRegex.MatchString(normalizedQuery) {
			return fmt.Errorf("forbidden keyword '%s' detected. Only read-only operations are allowed", strings.ToUpper(keyword))
		}
	}

	// Additional safety: check for semicolon-separated statements
	statements := strings.Split(normalizedQuery, ";")
	if len(statements) > 2 { // Allow one statement + empty string after final semicolon
		return fmt.Errorf("multiple statements not allowed. Please execute one query at a time")
	}

	// Validate that we don't have nested forbidden operations in subqueries
	if strings.Contains(normalizedQuery, "(") && strings.Contains(normalizedQuery, ")") {
		// Extract content within parentheses and validate recursively
		// This is a simple check - a more sophisticated parser might be needed for complex cases
		for _, keyword := range forbiddenKeywords {
			keywordRegex := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
			if keywordRegex.MatchString(normalizedQuery) {
				return fmt.Errorf("forbidden keyword '%s' detected in subquery. Only read-only operations are allowed", strings.ToUpper(keyword))
			}
		}
	}

	return nil
}
