package storage

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces name to a flat ASCII filename that is safe to store
// and display: accents are folded, path separators become word breaks,
// whitespace runs become "_", anything outside [A-Za-z0-9_.-] is dropped and
// leading/trailing dots and underscores are trimmed. It may return "".
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	ascii := b.String()

	ascii = strings.NewReplacer("/", " ", "\\", " ").Replace(ascii)
	joined := strings.Join(strings.Fields(ascii), "_")
	return strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")
}
