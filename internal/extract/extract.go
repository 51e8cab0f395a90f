// Package extract turns stored document files into plain text for the AI
// clients and into display content for the document viewer.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopherai-docqa/internal/apperror"
	"gopherai-docqa/internal/model"
)

// LineBreak replaces every newline of extracted text so the result can be
// embedded directly in HTML.
const LineBreak = "<br>"

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of the file at path. Any read or parse
// failure is reported as an apperror.DocumentProcessing error and no text.
func (e *Extractor) Extract(path string, fileType model.FileType) (string, error) {
	var (
		text string
		err  error
	)
	switch fileType {
	case model.FileTypePDF:
		text, err = extractPDF(path)
	case model.FileTypeXLSX:
		text, err = extractSpreadsheet(path)
	case model.FileTypeJSON:
		text, err = readJSON(path)
	case model.FileTypeTXT:
		text, err = readText(path)
	default:
		return "", apperror.New(apperror.Validation, fmt.Sprintf("file type %q not allowed", fileType))
	}
	if err != nil {
		return "", apperror.Processing(fileType.String(), err)
	}
	return formatForDisplay(text), nil
}

// formatForDisplay trims surrounding whitespace first so a trailing newline
// does not survive as a dangling line break.
func formatForDisplay(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	return strings.ReplaceAll(text, "\n", LineBreak)
}

func readText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", errors.New("file is not valid UTF-8 text")
	}
	return string(raw), nil
}

// readJSON returns the file verbatim once it is known to be well-formed JSON.
func readJSON(path string) (string, error) {
	text, err := readText(path)
	if err != nil {
		return "", err
	}
	if !json.Valid([]byte(text)) {
		return "", errors.New("file is not valid JSON")
	}
	return text, nil
}
