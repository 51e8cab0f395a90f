package extract

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"os"

	"gopherai-docqa/internal/apperror"
	"gopherai-docqa/internal/model"
)

var sheetTemplate = template.Must(template.New("sheet").Parse(
	`<table class="table table-striped">` +
		`<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>` +
		`<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>` +
		`</table>`))

// Render returns the viewer representation of a stored file: base64 bytes
// for PDF, an HTML table for spreadsheets, indented JSON and raw text.
func (e *Extractor) Render(path string, fileType model.FileType) (string, error) {
	var (
		content string
		err     error
	)
	switch fileType {
	case model.FileTypePDF:
		content, err = renderPDF(path)
	case model.FileTypeXLSX:
		content, err = renderSpreadsheet(path)
	case model.FileTypeJSON:
		content, err = renderJSON(path)
	case model.FileTypeTXT:
		content, err = readText(path)
	default:
		return "", apperror.New(apperror.Validation, fmt.Sprintf("file type %q not allowed", fileType))
	}
	if err != nil {
		return "", apperror.Processing(fileType.String(), err)
	}
	return content, nil
}

func renderPDF(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func renderSpreadsheet(path string) (string, error) {
	t, err := loadFirstSheet(path)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	data := struct {
		Header []string
		Rows   [][]string
	}{Header: t.header, Rows: t.rows}
	if err := sheetTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderJSON(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
