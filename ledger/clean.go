package ledger

import (
	"path/filepath"
	"strings"
	"unicode"
)

// CleanName turns a raw uploaded filename into a display name:
// extension stripped, underscores to spaces, title-cased.
// "JOHN_DOE_report.pdf" -> "John Doe Report"
func CleanName(raw string) string {
	base := filepath.Base(strings.TrimSpace(raw))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.ReplaceAll(stem, "_", " ")
	return titleCase(stem)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
