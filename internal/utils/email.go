package utils

import "strings"

// NormalizeEmail lower-cases and trims the login key so lookups and the
// unique index agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
