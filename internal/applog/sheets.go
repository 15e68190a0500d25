package applog

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"applyflow/internal/config"
	"applyflow/internal/logging"
	"applyflow/pkg/models"
	"applyflow/pkg/utils"
)

// outcomeHeaders is the header row written once per tab
var outcomeHeaders = []interface{}{
	"Timestamp", "URL", "Site", "Status", "Reason", "Filled", "Skipped", "Failed", "Duration",
}

// SheetWriter records application outcomes as rows in a Google Sheet tab.
// The header row is written the first time the tab is used.
type SheetWriter struct {
	service       *sheets.Service
	spreadsheetID string
	tab           string
}

// NewSheetWriter authenticates with a service account credentials file and
// opens the configured spreadsheet
func NewSheetWriter(ctx context.Context, cfg *config.Config) (*SheetWriter, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetWriter{
		service:       service,
		spreadsheetID: cfg.Sheets.SpreadsheetID,
		tab:           cfg.Sheets.Tab,
	}, nil
}

// RecordOutcome appends one outcome row, bootstrapping the header if the tab
// is empty. Logging failures are reported but never abort the run that
// produced the outcome.
func (w *SheetWriter) RecordOutcome(ctx context.Context, outcome *models.ApplyOutcome) error {
	if err := w.ensureHeader(ctx); err != nil {
		return err
	}

	var filled, skipped, failed int
	if outcome.Report != nil {
		filled = outcome.Report.Count(models.FieldFilled)
		skipped = outcome.Report.Count(models.FieldSkipped)
		failed = outcome.Report.Count(models.FieldFailed)
	}

	row := []interface{}{
		time.Now().Format(time.RFC3339),
		outcome.URL,
		outcome.SiteKey,
		string(outcome.Status),
		utils.GetStringOrDefault(outcome.Reason, "-"),
		filled,
		skipped,
		failed,
		utils.FormatDuration(outcome.Duration),
	}

	return w.appendRow(ctx, row)
}

// ensureHeader writes the header row if cell A1 of the tab is empty
func (w *SheetWriter) ensureHeader(ctx context.Context) error {
	readRange := fmt.Sprintf("%s!A1", w.tab)
	resp, err := w.service.Spreadsheets.Values.Get(w.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read sheet header: %w", err)
	}

	if len(resp.Values) > 0 {
		return nil
	}

	logging.GetGlobalLogger().Info("Writing header row to sheet tab", map[string]interface{}{
		"tab": w.tab,
	})

	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, readRange, &sheets.ValueRange{
		Values: [][]interface{}{outcomeHeaders},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write sheet header: %w", err)
	}

	return nil
}

func (w *SheetWriter) appendRow(ctx context.Context, row []interface{}) error {
	appendRange := fmt.Sprintf("%s!A1", w.tab)
	_, err := w.service.Spreadsheets.Values.Append(w.spreadsheetID, appendRange, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row to sheet: %w", err)
	}
	return nil
}
