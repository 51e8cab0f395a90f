package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF joins the text of every page, one newline after each page.
// A page whose content cannot be decoded contributes an empty string.
func extractPDF(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		b.WriteString(pageText(reader.Page(i)))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func pageText(p pdf.Page) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	if p.V.IsNull() {
		return ""
	}
	out, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return out
}
