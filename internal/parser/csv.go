// Package parser provides CSV parsing for bulk import of communication logs
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"evidence-log-analyzer/internal/logstore"
	"evidence-log-analyzer/internal/models"
)

// Columns is the expected CSV column order
var Columns = []string{
	"type", "sender_name", "receiver_name", "sender_gender",
	"receiver_gender", "date", "time", "content_or_duration",
}

// ParseCSV reads and parses a CSV file of communication log entries
// Expected CSV format: type, sender_name, receiver_name, sender_gender,
// receiver_gender, date, time, content_or_duration
// - type: Text, Audio, Video or Call
// - sender_gender / receiver_gender: M, F or O (any case)
// - date: DD-MM-YYYY
// - time: HH:MM:SS
// - content_or_duration: message text, file name, or duration in seconds
//
// Every row is validated; the first invalid row fails the whole file so a
// caller can import all rows or none
func ParseCSV(filePath string) ([]logstore.Input, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads CSV records from r, see ParseCSV
func Parse(r io.Reader) ([]logstore.Input, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Columns)
	reader.TrimLeadingSpace = true

	var inputs []logstore.Input
	lineNumber := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNumber+1, err)
		}

		lineNumber++

		// Skip header row if it exists
		if lineNumber == 1 && isHeaderRow(record) {
			continue
		}

		input, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("error parsing line %d: %w", lineNumber, err)
		}

		inputs = append(inputs, input)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no valid log entries found in CSV file")
	}

	return inputs, nil
}

// parseRecord converts a CSV record into a logstore.Input and validates it
func parseRecord(record []string) (logstore.Input, error) {
	if len(record) != len(Columns) {
		return logstore.Input{}, fmt.Errorf("expected %d fields, got %d", len(Columns), len(record))
	}

	input := logstore.Input{
		Type:           models.LogType(strings.TrimSpace(record[0])),
		SenderName:     record[1],
		ReceiverName:   record[2],
		SenderGender:   record[3],
		ReceiverGender: record[4],
		Date:           record[5],
		Time:           record[6],
		Content:        record[7],
	}

	if _, err := logstore.Validate(input); err != nil {
		return logstore.Input{}, err
	}

	return input, nil
}

// isHeaderRow checks if the given record appears to be a header row
// At least half of the fields must name a known column
func isHeaderRow(record []string) bool {
	if len(record) == 0 {
		return false
	}

	matches := 0
	for _, field := range record {
		if isColumnName(field) {
			matches++
		}
	}
	return matches*2 >= len(record)
}

// isColumnName matches column names loosely: case, spaces and the
// "content"/"duration" shorthand are accepted
func isColumnName(field string) bool {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(field)), " ", "_")
	switch normalized {
	case "content", "duration", "content/duration":
		return true
	}
	for _, column := range Columns {
		if normalized == column {
			return true
		}
	}
	return false
}
