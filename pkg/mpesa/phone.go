package mpesa

import "strings"

// SanitizePhone normalizes a payer phone into the 2547XXXXXXXX subscriber
// form the API expects: leading "+" stripped, local "07..." rewritten with
// the country prefix.
func SanitizePhone(phone string) string {
	trimmed := strings.TrimSpace(phone)
	if strings.HasPrefix(trimmed, "+") {
		return trimmed[1:]
	}
	if strings.HasPrefix(trimmed, "0") {
		return "254" + trimmed[1:]
	}
	return trimmed
}
