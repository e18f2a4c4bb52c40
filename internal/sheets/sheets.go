// Package sheets mirrors decisions into a Google Sheet for manual review.
// The mirror is optional and failure-tolerant: sync errors are reported but
// never stop a cycle.
package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const decisionsRange = "Decisions!A:H"

// DecisionRow is one mirrored decision.
type DecisionRow struct {
	Platform   string
	Title      string
	Company    string
	Link       string
	Decision   string
	SkillMatch float64
	Reason     string
}

// Mirror appends decision rows to a spreadsheet.
type Mirror struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *zap.Logger
}

// New builds a Mirror authenticated with a service-account key file.
func New(ctx context.Context, credentialsFile, spreadsheetID string, logger *zap.Logger) (*Mirror, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Mirror{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// AppendDecisions appends the rows to the Decisions sheet.
func (m *Mirror) AppendDecisions(ctx context.Context, rows []DecisionRow) error {
	if m == nil || len(rows) == 0 {
		return nil
	}

	values := make([][]any, 0, len(rows))
	timestamp := time.Now().UTC().Format(time.RFC3339)
	for _, row := range rows {
		values = append(values, []any{
			timestamp,
			row.Platform,
			row.Title,
			row.Company,
			row.Link,
			row.Decision,
			row.SkillMatch,
			row.Reason,
		})
	}

	_, err := m.service.Spreadsheets.Values.
		Append(m.spreadsheetID, decisionsRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append decision rows: %w", err)
	}

	m.logger.Info("mirrored decisions to spreadsheet", zap.Int("rows", len(rows)))
	return nil
}
