package achievements

import (
	"strings"
	"unicode"
)

// Slugify derives a stable achievement key from a free-text title. Letters
// and digits (any script) are lowercased, everything else collapses into a
// single dash. Photo-bound achievements with the same title map to the same
// slug, which is what makes the one-grant-per-player rule work across photos.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(unicode.ToLower(r))
		} else {
			dash = true
		}
	}
	return b.String()
}
