package normalizer

import "strings"

var separatorReplacer = strings.NewReplacer(",", " ", ".", " ")

// Key canonicalizes address text for duplicate detection: trimmed,
// lower-cased, diacritics stripped, commas and periods turned into spaces,
// whitespace collapsed. Two addresses are the same stop iff their keys match.
func Key(address string) string {
	s := Fold(strings.TrimSpace(address))
	s = separatorReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
