// Package export writes transaction sets to CSV for spreadsheets and other
// tools. It consumes the filter pipeline's output; it never queries the
// store itself.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"moneta/internal/core"

	"github.com/gocarina/gocsv"
)

// Row is one exported CSV record; the field order fixes the header.
// Account and category ids are resolved to names before writing.
type Row struct {
	Date               string `csv:"Date"`
	Type               string `csv:"Type"`
	Amount             string `csv:"Amount"`
	SourceAccount      string `csv:"Source Account"`
	DestinationAccount string `csv:"Destination Account"`
	Category           string `csv:"Category"`
	Note               string `csv:"Note"`
}

const dateLayout = "2006-01-02 15:04"

// WriteCSV writes one header row plus one row per transaction to path,
// creating parent directories as needed. Timestamps are rendered in the
// display location; amounts with two decimal places. Ids that no longer
// resolve (or empty transfer/category slots) render as empty cells.
func WriteCSV(transactions []core.Transaction, accounts []core.Account, categories []core.Category, loc *time.Location, path string) error {
	accountNames := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		accountNames[a.ID] = a.Name
	}
	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	rows := make([]Row, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, Row{
			Date:               t.DateTime.In(loc).Format(dateLayout),
			Type:               string(t.Type),
			Amount:             t.Amount.StringFixed(2),
			SourceAccount:      accountNames[t.SourceAccount],
			DestinationAccount: accountNames[t.DestinationAccount],
			Category:           categoryNames[t.Category],
			Note:               t.Note,
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	slog.Info("transactions exported", "file", path, "count", len(rows))
	return nil
}
