package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "moviesnow/pkg/domain-errors"
)

func TestLoginRequest_NormalizeEmail(t *testing.T) {
	req := LoginRequest{Email: " USER@Example.com ", Password: "Str0ng!Pass"}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "user@example.com", req.Email)
}

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       LoginRequest
		wantField string
	}{
		{"missing email", LoginRequest{Password: "x"}, "email"},
		{"malformed email", LoginRequest{Email: "not-an-email", Password: "x"}, "email"},
		{"missing password", LoginRequest{Email: "a@b.co"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize()
			err := tt.req.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.wantField, dErrors.FieldOf(err))
		})
	}
}

func TestPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantMsg  string
	}{
		{"too short", "Ab1!x", "at least 8"},
		{"missing digit", "Abcdefg!", "digit"},
		{"missing symbol", "Abcdefg1", "symbol"},
		{"missing upper", "abcdefg1!", "uppercase"},
		{"missing lower", "ABCDEFG1!", "lowercase"},
		{"contains whitespace", "Abc def1!", "whitespace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword("password", tt.password)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, "password", dErrors.FieldOf(err))
		})
	}

	t.Run("satisfying every rule", func(t *testing.T) {
		assert.NoError(t, ValidatePassword("password", "Str0ng!Pass"))
	})
}

func TestMFALoginRequest_CodeNormalization(t *testing.T) {
	req := MFALoginRequest{MFAToken: "abc123", TOTPCode: "123 456"}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "123456", req.TOTPCode)
}

func TestRecoveryCodeNormalizationIsSharedAcrossEntryPoints(t *testing.T) {
	const input = "abcd-efgh 1234"

	redeem := RedeemRecoveryCodeRequest{Code: input}
	redeem.Normalize()
	require.NoError(t, redeem.Validate())

	reauth := ReauthMFARequest{BackupCode: input}
	reauth.Normalize()
	require.NoError(t, reauth.Validate())

	assert.Equal(t, "ABCDEFGH1234", redeem.Code)
	assert.Equal(t, redeem.Code, reauth.BackupCode)
}

func TestReauthMFARequest_ExactlyOneCode(t *testing.T) {
	t.Run("neither", func(t *testing.T) {
		req := ReauthMFARequest{}
		req.Normalize()
		assert.Error(t, req.Validate())
	})

	t.Run("both", func(t *testing.T) {
		req := ReauthMFARequest{TOTPCode: "123456", BackupCode: "ABCDEFGH1234"}
		req.Normalize()
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("totp only", func(t *testing.T) {
		req := ReauthMFARequest{TOTPCode: "123-456"}
		req.Normalize()
		require.NoError(t, req.Validate())
		assert.Equal(t, "123456", req.TOTPCode)
	})
}

func TestChangePasswordRequest_CrossFieldRules(t *testing.T) {
	t.Run("new must differ from current", func(t *testing.T) {
		req := ChangePasswordRequest{
			CurrentPassword: "Str0ng!Pass",
			NewPassword:     "Str0ng!Pass",
			ConfirmPassword: "Str0ng!Pass",
		}
		err := req.Validate()
		require.Error(t, err)
		assert.Equal(t, "new_password", dErrors.FieldOf(err))
	})

	t.Run("confirm must match", func(t *testing.T) {
		req := ChangePasswordRequest{
			CurrentPassword: "Old0ne!Pass",
			NewPassword:     "Str0ng!Pass",
			ConfirmPassword: "Str0ng!Typo",
		}
		err := req.Validate()
		require.Error(t, err)
		assert.Equal(t, "confirm_password", dErrors.FieldOf(err))
	})
}

func TestChangePasswordRequest_ConfirmNeverOnTheWire(t *testing.T) {
	req := ChangePasswordRequest{
		CurrentPassword: "Old0ne!Pass",
		NewPassword:     "Str0ng!Pass",
		ConfirmPassword: "Str0ng!Pass",
	}
	body, err := json.Marshal(&req)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "confirm")
	assert.NotContains(t, string(body), "Str0ng!Pass\",\"Str0ng!Pass")
}

func TestAlertPrefsUpdate_RejectsUnknownFlags(t *testing.T) {
	assert.NoError(t, AlertPrefsUpdate{"email_login": false}.Validate())

	err := AlertPrefsUpdate{"email_logln": true}.Validate()
	require.Error(t, err)
	assert.Equal(t, "email_logln", dErrors.FieldOf(err))

	assert.Error(t, AlertPrefsUpdate{}.Validate())
}

func TestActivityQuery_Values(t *testing.T) {
	from := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := ActivityQuery{From: &from, Action: "login", Limit: 25, Cursor: "c1"}
	q.Normalize()
	require.NoError(t, q.Validate())

	v := q.Values()
	assert.Equal(t, "2026-01-02T03:04:05Z", v.Get("from"))
	assert.Equal(t, "login", v.Get("action"))
	assert.Equal(t, "25", v.Get("limit"))
	assert.Equal(t, "c1", v.Get("cursor"))
	assert.Empty(t, v.Get("to"))
}

func TestActivityQuery_Validate(t *testing.T) {
	from := time.Now()
	to := from.Add(-time.Hour)
	q := ActivityQuery{From: &from, To: &to}
	assert.Error(t, q.Validate())

	q = ActivityQuery{Limit: 500}
	assert.Error(t, q.Validate())
}

func TestAccountOTPRequest_Normalize(t *testing.T) {
	req := AccountOTPRequest{OTP: " 123-456 "}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "123456", req.OTP)
}
