package models

import (
	"unicode"

	dErrors "moviesnow/pkg/domain-errors"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 72
)

// ValidatePassword enforces the account password policy. Each rule carries
// its own message so forms can tell the user exactly what is missing.
// The field parameter addresses the message to the right input
// ("password", "new_password").
func ValidatePassword(field, password string) error {
	if len(password) < PasswordMinLength {
		return dErrors.NewField(dErrors.CodeValidation, field, "must be at least 8 characters")
	}
	if len(password) > PasswordMaxLength {
		return dErrors.NewField(dErrors.CodeValidation, field, "must be at most 72 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return dErrors.NewField(dErrors.CodeValidation, field, "must not contain whitespace")
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if !hasUpper {
		return dErrors.NewField(dErrors.CodeValidation, field, "must contain an uppercase letter")
	}
	if !hasLower {
		return dErrors.NewField(dErrors.CodeValidation, field, "must contain a lowercase letter")
	}
	if !hasDigit {
		return dErrors.NewField(dErrors.CodeValidation, field, "must contain a digit")
	}
	if !hasSymbol {
		return dErrors.NewField(dErrors.CodeValidation, field, "must contain a symbol")
	}
	return nil
}
