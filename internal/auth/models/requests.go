// Package models defines the request and response contracts for the
// MoviesNow auth API. Requests are strict: they are normalized and validated
// before anything touches the network, and client-only fields are excluded
// from the wire payload. Responses are permissive: unknown fields from newer
// servers never break decoding.
package models

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	dErrors "moviesnow/pkg/domain-errors"
)

type SignupRequest struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignupRequest) Normalize() {
	if r == nil {
		return
	}
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = NormalizeEmail(r.Email)
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *SignupRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.FullName) > 100 {
		return dErrors.NewField(dErrors.CodeValidation, "full_name", "must be 100 characters or less")
	}
	if r.Email == "" {
		return dErrors.NewField(dErrors.CodeValidation, "email", "is required")
	}
	if !ValidEmail(r.Email) {
		return dErrors.NewField(dErrors.CodeValidation, "email", "is not a valid email address")
	}
	return ValidatePassword("password", r.Password)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Email == "" {
		return dErrors.NewField(dErrors.CodeValidation, "email", "is required")
	}
	if !ValidEmail(r.Email) {
		return dErrors.NewField(dErrors.CodeValidation, "email", "is not a valid email address")
	}
	if r.Password == "" {
		return dErrors.NewField(dErrors.CodeValidation, "password", "is required")
	}
	// Existing passwords are not re-checked against the current policy here;
	// the policy only gates new credentials.
	return nil
}

type MFALoginRequest struct {
	MFAToken string `json:"mfa_token"`
	TOTPCode string `json:"totp_code"`
}

func (r *MFALoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.MFAToken = strings.TrimSpace(r.MFAToken)
	r.TOTPCode = NormalizeCode(r.TOTPCode)
}

func (r *MFALoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.MFAToken == "" {
		return dErrors.NewField(dErrors.CodeValidation, "mfa_token", "is required")
	}
	if r.TOTPCode == "" {
		return dErrors.NewField(dErrors.CodeValidation, "totp_code", "is required")
	}
	if !ValidTOTPCode(r.TOTPCode) {
		return dErrors.NewField(dErrors.CodeValidation, "totp_code", "must be 6-8 digits")
	}
	return nil
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

func (r *PasswordResetRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = NormalizeEmail(r.Email)
}

func (r *PasswordResetRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Email == "" {
		return dErrors.NewField(dErrors.CodeValidation, "email", "is required")
	}
	if !ValidEmail(r.Email) {
		return dErrors.NewField(dErrors.CodeValidation, "email", "is not a valid email address")
	}
	return nil
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
	// ConfirmPassword is a client-side check only and never reaches the wire.
	ConfirmPassword string `json:"-"`
}

func (r *PasswordResetConfirmRequest) Normalize() {
	if r == nil {
		return
	}
	r.Token = strings.TrimSpace(r.Token)
}

func (r *PasswordResetConfirmRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Token == "" {
		return dErrors.NewField(dErrors.CodeValidation, "token", "is required")
	}
	if err := ValidatePassword("new_password", r.NewPassword); err != nil {
		return err
	}
	if r.ConfirmPassword != r.NewPassword {
		return dErrors.NewField(dErrors.CodeValidation, "confirm_password", "must match the new password")
	}
	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	// ConfirmPassword is a client-side check only and never reaches the wire.
	ConfirmPassword string `json:"-"`
}

func (r *ChangePasswordRequest) Normalize() {}

func (r *ChangePasswordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.CurrentPassword == "" {
		return dErrors.NewField(dErrors.CodeValidation, "current_password", "is required")
	}
	if err := ValidatePassword("new_password", r.NewPassword); err != nil {
		return err
	}
	if r.NewPassword == r.CurrentPassword {
		return dErrors.NewField(dErrors.CodeValidation, "new_password", "must differ from the current password")
	}
	if r.ConfirmPassword != r.NewPassword {
		return dErrors.NewField(dErrors.CodeValidation, "confirm_password", "must match the new password")
	}
	return nil
}

type ReauthPasswordRequest struct {
	Password string `json:"password"`
}

func (r *ReauthPasswordRequest) Normalize() {}

func (r *ReauthPasswordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Password == "" {
		return dErrors.NewField(dErrors.CodeValidation, "password", "is required")
	}
	return nil
}

// ReauthMFARequest carries exactly one of a TOTP code or a recovery code.
// The server contract for requests carrying both is unconfirmed, so the
// ambiguous form is rejected locally.
type ReauthMFARequest struct {
	TOTPCode   string `json:"totp_code,omitempty"`
	BackupCode string `json:"backup_code,omitempty"`
}

func (r *ReauthMFARequest) Normalize() {
	if r == nil {
		return
	}
	r.TOTPCode = NormalizeCode(r.TOTPCode)
	r.BackupCode = NormalizeCode(r.BackupCode)
}

func (r *ReauthMFARequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.TOTPCode == "" && r.BackupCode == "" {
		return dErrors.New(dErrors.CodeValidation, "either totp_code or backup_code is required")
	}
	if r.TOTPCode != "" && r.BackupCode != "" {
		return dErrors.New(dErrors.CodeValidation, "totp_code and backup_code are mutually exclusive")
	}
	if r.TOTPCode != "" && !ValidTOTPCode(r.TOTPCode) {
		return dErrors.NewField(dErrors.CodeValidation, "totp_code", "must be 6-8 digits")
	}
	if r.BackupCode != "" && !ValidRecoveryCode(r.BackupCode) {
		return dErrors.NewField(dErrors.CodeValidation, "backup_code", "must be 8-20 letters or digits")
	}
	return nil
}

type MFAVerifyRequest struct {
	TOTPCode string `json:"totp_code"`
}

func (r *MFAVerifyRequest) Normalize() {
	if r == nil {
		return
	}
	r.TOTPCode = NormalizeCode(r.TOTPCode)
}

func (r *MFAVerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.TOTPCode == "" {
		return dErrors.NewField(dErrors.CodeValidation, "totp_code", "is required")
	}
	if !ValidTOTPCode(r.TOTPCode) {
		return dErrors.NewField(dErrors.CodeValidation, "totp_code", "must be 6-8 digits")
	}
	return nil
}

type RedeemRecoveryCodeRequest struct {
	Code string `json:"code"`
}

func (r *RedeemRecoveryCodeRequest) Normalize() {
	if r == nil {
		return
	}
	r.Code = NormalizeCode(r.Code)
}

func (r *RedeemRecoveryCodeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Code == "" {
		return dErrors.NewField(dErrors.CodeValidation, "code", "is required")
	}
	if !ValidRecoveryCode(r.Code) {
		return dErrors.NewField(dErrors.CodeValidation, "code", "must be 8-20 letters or digits")
	}
	return nil
}

type RegisterDeviceRequest struct {
	DeviceLabel string `json:"device_label,omitempty"`
}

func (r *RegisterDeviceRequest) Normalize() {
	if r == nil {
		return
	}
	r.DeviceLabel = strings.TrimSpace(r.DeviceLabel)
}

func (r *RegisterDeviceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.DeviceLabel) > 100 {
		return dErrors.NewField(dErrors.CodeValidation, "device_label", "must be 100 characters or less")
	}
	return nil
}

// ActivityQuery narrows the activity listing. All filters are optional.
type ActivityQuery struct {
	From   *time.Time
	To     *time.Time
	Action string
	Limit  int
	Cursor string
}

func (q *ActivityQuery) Normalize() {
	if q == nil {
		return
	}
	q.Action = strings.TrimSpace(q.Action)
	q.Cursor = strings.TrimSpace(q.Cursor)
}

func (q *ActivityQuery) Validate() error {
	if q == nil {
		return nil
	}
	if q.Limit < 0 || q.Limit > 200 {
		return dErrors.NewField(dErrors.CodeValidation, "limit", "must be between 0 and 200")
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return dErrors.NewField(dErrors.CodeValidation, "to", "must not be before from")
	}
	return nil
}

// Values renders the query as URL parameters. A nil query is an unfiltered
// listing.
func (q *ActivityQuery) Values() url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}
	if q.From != nil {
		v.Set("from", q.From.UTC().Format(time.RFC3339))
	}
	if q.To != nil {
		v.Set("to", q.To.UTC().Format(time.RFC3339))
	}
	if q.Action != "" {
		v.Set("action", q.Action)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Cursor != "" {
		v.Set("cursor", q.Cursor)
	}
	return v
}

// KnownAlertFlags is the closed set of alert subscription flags the client
// will write. Reads tolerate flags outside this set; writes reject them so a
// typo cannot silently create a dead preference.
var KnownAlertFlags = map[string]bool{
	"email_login":           true,
	"email_new_device":      true,
	"email_password_change": true,
	"email_mfa_change":      true,
	"email_recovery_used":   true,
}

// AlertPrefsUpdate is a partial read-modify-write of alert flags.
type AlertPrefsUpdate map[string]bool

func (u AlertPrefsUpdate) Validate() error {
	if len(u) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one alert flag is required")
	}
	for flag := range u {
		if !KnownAlertFlags[flag] {
			return dErrors.NewField(dErrors.CodeValidation, flag, "is not a known alert flag")
		}
	}
	return nil
}

type EmailChangeRequest struct {
	NewEmail    string `json:"new_email"`
	ReauthToken string `json:"reauth_token,omitempty"`
}

func (r *EmailChangeRequest) Normalize() {
	if r == nil {
		return
	}
	r.NewEmail = NormalizeEmail(r.NewEmail)
	r.ReauthToken = strings.TrimSpace(r.ReauthToken)
}

func (r *EmailChangeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.NewEmail == "" {
		return dErrors.NewField(dErrors.CodeValidation, "new_email", "is required")
	}
	if !ValidEmail(r.NewEmail) {
		return dErrors.NewField(dErrors.CodeValidation, "new_email", "is not a valid email address")
	}
	return nil
}

type EmailChangeConfirmRequest struct {
	Token string `json:"token"`
}

func (r *EmailChangeConfirmRequest) Normalize() {
	if r == nil {
		return
	}
	r.Token = strings.TrimSpace(r.Token)
}

func (r *EmailChangeConfirmRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Token == "" {
		return dErrors.NewField(dErrors.CodeValidation, "token", "is required")
	}
	return nil
}

// AccountOTPRequest covers the deactivate/delete/reactivate lifecycle
// operations, all of which confirm via an emailed one-time code. Delete
// additionally carries a reauth token when the server demands step-up.
type AccountOTPRequest struct {
	OTP         string `json:"otp"`
	ReauthToken string `json:"reauth_token,omitempty"`
}

func (r *AccountOTPRequest) Normalize() {
	if r == nil {
		return
	}
	r.OTP = NormalizeCode(r.OTP)
	r.ReauthToken = strings.TrimSpace(r.ReauthToken)
}

func (r *AccountOTPRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.OTP == "" {
		return dErrors.NewField(dErrors.CodeValidation, "otp", "is required")
	}
	if !ValidTOTPCode(r.OTP) {
		return dErrors.NewField(dErrors.CodeValidation, "otp", "must be 6-8 digits")
	}
	return nil
}
