// Package security holds helpers for handling untrusted names.
package security

import (
	"strings"
	"unicode"
)

// maxFilenameBytes bounds sanitised names so headers and zip entries stay short.
const maxFilenameBytes = 128

// SanitizeFilename makes a safe filename from an uploaded name. Letters and
// digits of any script are kept, as are '.', '_' and '-'; every other run of
// characters becomes one underscore. Leading and trailing dots and
// underscores are trimmed. An empty result yields "unknown".
func SanitizeFilename(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		var next rune
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r), r == '.', r == '-':
			next = r
		case r == '_':
			if lastUnderscore {
				continue
			}
			next = r
		default:
			if lastUnderscore {
				continue
			}
			next = '_'
		}
		if b.Len()+len(string(next)) > maxFilenameBytes {
			break
		}
		b.WriteRune(next)
		lastUnderscore = next == '_'
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
