package quizzes

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// csvColumns defines the column order for the performance export. The
// layout matches the spreadsheet teachers download from the dashboard.
var csvColumns = []string{
	"Student Email",
	"Score (%)",
	"Status",
	"Date Attempted",
}

// CSVExporter writes quiz performance data as a CSV spreadsheet.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes attempts to the given writer in CSV format.
func (e *CSVExporter) Export(w io.Writer, attempts []Attempt) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, attempt := range attempts {
		if err := writer.Write(e.attemptToRow(attempt)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return writer.Error()
}

// attemptResult is the subset of the stored payload the spreadsheet needs.
type attemptResult struct {
	Score  float64 `json:"score"`
	Status string  `json:"status"`
}

// attemptToRow converts an attempt to a CSV row following the column order.
func (e *CSVExporter) attemptToRow(attempt Attempt) []string {
	result := attemptResult{Status: "Completed"}
	if len(attempt.Payload) > 0 {
		// A payload that fails to decode still exports with defaults.
		_ = json.Unmarshal(attempt.Payload, &result)
	}
	if result.Status == "" {
		result.Status = "Completed"
	}

	email := attempt.Email
	if email == "" {
		email = "Anonymous"
	}

	row := make([]string, len(csvColumns))
	row[0] = email
	row[1] = strconv.FormatFloat(result.Score, 'f', -1, 64)
	row[2] = result.Status
	row[3] = attempt.AttemptedAt.UTC().Format(time.RFC3339)
	return row
}
