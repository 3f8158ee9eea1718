package ledger

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ordinals = strings.NewReplacer("º", "o", "ª", "a", "°", "o")

// NormalizeText strips accents, lower-cases and turns every run of
// non-alphanumeric characters into a single space, so "Pix - Enviado" and
// "PIX ENVIADO" compare equal.
func NormalizeText(s string) string {
	s = ordinals.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// containsWords reports whether keyword occurs in text on word boundaries.
// Both arguments must already be normalized.
func containsWords(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+keyword+" ")
}

func containsAny(text string, keywords []string) (string, bool) {
	for _, k := range keywords {
		if containsWords(text, k) {
			return k, true
		}
	}
	return "", false
}
