// internal/helper/excel.go
package helper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SebasMa24/Backend-BotWhatsApp/internal/model"

	"github.com/xuri/excelize/v2"
)

var ErrNoRecipients = errors.New("recipient table contains no data rows")

// ParseRecipientTable reads the first sheet of an Excel file. The first row
// is the header; column names are lowercased so they double as template
// variables. Cell values are trimmed, short rows are padded with empty cells
// and fully empty rows are skipped.
func ParseRecipientTable(path string) ([]model.RecipientRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipient table: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRecipients
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRecipients
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	var recipients []model.RecipientRow
	for _, cells := range rows[1:] {
		row := make(model.RecipientRow, len(header))
		empty := true

		for i, name := range header {
			if name == "" {
				continue
			}
			value := ""
			if i < len(cells) {
				value = strings.TrimSpace(cells[i])
			}
			if value != "" {
				empty = false
			}
			row[name] = value
		}

		if !empty {
			recipients = append(recipients, row)
		}
	}

	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	return recipients, nil
}
