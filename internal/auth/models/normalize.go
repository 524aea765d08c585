package models

import (
	"regexp"
	"strings"
)

// Normalization lives on the contract types rather than at call sites so
// every entry point accepts the same input format. The MFA-login and
// reauth-MFA paths in particular must treat "abcd-efgh 1234" and
// "ABCDEFGH1234" as the same recovery code.

var codeSeparators = strings.NewReplacer(" ", "", "-", "", "\t", "")

var (
	emailPattern        = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	totpCodePattern     = regexp.MustCompile(`^[0-9]{6,8}$`)
	recoveryCodePattern = regexp.MustCompile(`^[A-Z0-9]{8,20}$`)
)

// NormalizeEmail trims surrounding whitespace and lowercases.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeCode strips whitespace and dashes and uppercases. Applied to both
// TOTP codes (uppercasing is a no-op for digits) and recovery codes.
func NormalizeCode(s string) string {
	return strings.ToUpper(codeSeparators.Replace(strings.TrimSpace(s)))
}

// ValidEmail reports whether s looks like an email address. The server owns
// real deliverability checks; this only catches obvious typos before a
// network round trip.
func ValidEmail(s string) bool {
	return len(s) <= 255 && emailPattern.MatchString(s)
}

// ValidTOTPCode reports whether a normalized code is 6-8 digits.
func ValidTOTPCode(s string) bool {
	return totpCodePattern.MatchString(s)
}

// ValidRecoveryCode reports whether a normalized code is 8-20 alphanumerics.
func ValidRecoveryCode(s string) bool {
	return recoveryCodePattern.MatchString(s)
}
