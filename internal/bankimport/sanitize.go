package bankimport

import (
	"strings"
	"unicode/utf8"
)

// sanitizeUTF8 drops invalid UTF-8 bytes and NUL characters. Bank exports
// are occasionally saved in a legacy code page and PostgreSQL rejects both
// in TEXT and JSONB.
func sanitizeUTF8(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	if utf8.ValidString(s) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return result.String()
}

// sanitizeRaw returns a copy of the source record safe to store as JSONB.
func sanitizeRaw(row map[string]string) map[string]string {
	clean := make(map[string]string, len(row))
	for k, v := range row {
		clean[sanitizeUTF8(k)] = sanitizeUTF8(v)
	}
	return clean
}
