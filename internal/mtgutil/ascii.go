package mtgutil

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ASCIIFold transliterates a card or flavor name down to ASCII, e.g. "Ærenvrack"
// -> "Aerenvrack" or "Lim-Dûl's Hex" -> "Lim-Dul's Hex". Æ/æ are folded to
// "Ae"/"ae" first; unidecode handles the remaining ligatures and non-Latin
// scripts that plain Unicode decomposition can't (NFD strips combining
// marks but leaves Æ untouched).
func ASCIIFold(name string) string {
	return unidecode.Unidecode(strings.NewReplacer("Æ", "Ae", "æ", "ae").Replace(name))
}

// NormalizeNFC applies Unicode NFC normalization, used for foreign-language
// card and flavor text that must compare equal regardless of input
// composition (precomposed vs. combining-mark sequences).
func NormalizeNFC(s string) string {
	out, _, err := transform.String(norm.NFC, s)
	if err != nil {
		return s
	}
	return out
}
