package models

import "strings"

// DefaultCurrency applies when a row, invoice or expense names none.
const DefaultCurrency = "GEL"

// NormalizeCurrency upper-cases and trims c. It reports false unless the
// result is a three-letter code, which is what the CHAR(3) columns hold.
func NormalizeCurrency(c string) (string, bool) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if len(c) != 3 {
		return "", false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return "", false
		}
	}
	return c, true
}
