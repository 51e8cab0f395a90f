package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/xuri/excelize/v2"
)

type table struct {
	header []string
	rows   [][]string
}

// loadFirstSheet reads the first worksheet with its first row as the header.
// Ragged rows are padded with empty strings and placeholder headers are
// replaced with positional "Column N" labels.
func loadFirstSheet(path string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &table{}, nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	t := &table{header: make([]string, width)}
	for i := 0; i < width; i++ {
		var name string
		if i < len(rows[0]) {
			name = strings.TrimSpace(rows[0][i])
		}
		if isPlaceholderHeader(name) {
			name = fmt.Sprintf("Column %d", i+1)
		}
		t.header[i] = name
	}
	for _, row := range rows[1:] {
		padded := make([]string, width)
		copy(padded, row)
		t.rows = append(t.rows, padded)
	}
	return t, nil
}

// isPlaceholderHeader reports header cells that no person named: blanks and
// anything carrying the "Unnamed" label other spreadsheet tools write for them.
func isPlaceholderHeader(name string) bool {
	return name == "" || strings.Contains(name, "Unnamed")
}

func extractSpreadsheet(path string) (string, error) {
	t, err := loadFirstSheet(path)
	if err != nil {
		return "", err
	}
	if len(t.header) == 0 {
		return "", nil
	}

	var b strings.Builder
	tw := tablewriter.NewWriter(&b)
	tw.SetHeader(t.header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetBorder(false)
	tw.SetHeaderLine(false)
	tw.SetColumnSeparator("")
	tw.SetCenterSeparator("")
	tw.SetRowSeparator("")
	tw.SetTablePadding("  ")
	tw.SetNoWhiteSpace(true)
	tw.AppendBulk(t.rows)
	tw.Render()
	return b.String(), nil
}
