package utils

import "strings"

// NormalizeRegistration strips spaces and dashes from a vehicle registration
// number and uppercases it so lookups are format-insensitive.
func NormalizeRegistration(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}
