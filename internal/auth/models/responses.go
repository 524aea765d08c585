package models

import (
	"encoding/json"
	"time"

	dErrors "moviesnow/pkg/domain-errors"
)

// TokenBundle is the access/refresh pair issued on successful
// authentication. The access token lives only in the in-memory holder;
// refresh token lifecycle belongs to the server and its cookie machinery.
type TokenBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// MFAChallenge marks a login attempt that needs a second factor. The
// mfa_token is short-lived and opaque; it pairs with a TOTP code to finish
// the login.
type MFAChallenge struct {
	MFAToken    string   `json:"mfa_token"`
	MFARequired bool     `json:"mfa_required,omitempty"`
	Methods     []string `json:"methods,omitempty"`
}

// LoginOutcome is the union a login attempt resolves to: either tokens were
// issued or a second factor is pending. Exactly one of Tokens and Challenge
// is non-nil after a successful decode. Fields the client does not recognize
// are preserved in Extra but never interpreted.
type LoginOutcome struct {
	Tokens    *TokenBundle
	Challenge *MFAChallenge
	Extra     map[string]json.RawMessage
}

// MFARequired reports whether the login is pending a second factor.
func (o *LoginOutcome) MFARequired() bool { return o.Challenge != nil }

func (o *LoginOutcome) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if _, ok := raw["mfa_token"]; ok {
		var ch MFAChallenge
		if err := json.Unmarshal(data, &ch); err != nil {
			return err
		}
		if ch.MFAToken != "" {
			o.Challenge = &ch
			o.Extra = unknownFields(raw, "mfa_token", "mfa_required", "methods")
			return nil
		}
	}

	if _, ok := raw["access_token"]; ok {
		var tb TokenBundle
		if err := json.Unmarshal(data, &tb); err != nil {
			return err
		}
		o.Tokens = &tb
		o.Extra = unknownFields(raw, "access_token", "refresh_token", "token_type", "expires_in")
		return nil
	}

	return dErrors.New(dErrors.CodeBadRequest, "login response carries neither tokens nor an MFA challenge")
}

// TokenOutcome is a token-bundle-or-acknowledgement union. Signup and
// recovery-code redemption both resolve to it: tokens when the server
// issues or rotates a session, or a bare acknowledgement otherwise.
type TokenOutcome struct {
	Tokens *TokenBundle
	Extra  map[string]json.RawMessage
}

func (o *TokenOutcome) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if _, ok := raw["access_token"]; ok {
		var tb TokenBundle
		if err := json.Unmarshal(data, &tb); err != nil {
			return err
		}
		o.Tokens = &tb
		o.Extra = unknownFields(raw, "access_token", "refresh_token", "token_type", "expires_in")
		return nil
	}
	o.Extra = raw
	return nil
}

func unknownFields(raw map[string]json.RawMessage, known ...string) map[string]json.RawMessage {
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// Ack acknowledges a mutation. Servers may respond 204, in which case the
// zero value stands in.
type Ack struct {
	Message string `json:"message,omitempty"`
}

// PasswordResetAck may carry server throttling hints for the next attempt.
type PasswordResetAck struct {
	Message       string     `json:"message,omitempty"`
	RetryAfter    int        `json:"retry_after,omitempty"`
	NextAllowedAt *time.Time `json:"next_allowed_at,omitempty"`
}

// ReauthGrant is the short-lived elevated token obtained by re-confirming
// identity. It must accompany the sensitive mutation before ExpiresIn runs
// out.
type ReauthGrant struct {
	ReauthToken string `json:"reauth_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// MFASetup carries enrollment material. Servers disagree on the field name
// for the provisioning URL; URL() hides that.
type MFASetup struct {
	Secret          string   `json:"secret"`
	OTPAuthURL      string   `json:"otpauth_url,omitempty"`
	ProvisioningURI string   `json:"provisioning_uri,omitempty"`
	RecoveryCodes   []string `json:"recovery_codes,omitempty"`
}

// URL returns the otpauth provisioning URL under either wire name.
func (s *MFASetup) URL() string {
	if s.OTPAuthURL != "" {
		return s.OTPAuthURL
	}
	return s.ProvisioningURI
}

type TrustedDevice struct {
	DeviceID   string     `json:"device_id"`
	Label      string     `json:"label,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	Current    bool       `json:"current,omitempty"`
}

type DevicesResult struct {
	Devices []TrustedDevice `json:"devices"`
}

type Session struct {
	JTI        string     `json:"jti"`
	Current    bool       `json:"current,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	IP         string     `json:"ip,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	Geo        string     `json:"geo,omitempty"`
}

type SessionsResult struct {
	Sessions []Session `json:"sessions"`
}

type RevokeResult struct {
	RevokedCount int `json:"revoked_count,omitempty"`
	FailedCount  int `json:"failed_count,omitempty"`
}

// ActivityEvent is append-only and display-only from the client's
// perspective. Older servers send "type" where newer ones send "action".
type ActivityEvent struct {
	ID        string         `json:"id,omitempty"`
	Action    string         `json:"action,omitempty"`
	Type      string         `json:"type,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Success   bool           `json:"success"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Location  string         `json:"location,omitempty"`
	Device    string         `json:"device,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Kind returns the event's action under either wire name.
func (e *ActivityEvent) Kind() string {
	if e.Action != "" {
		return e.Action
	}
	return e.Type
}

type ActivityResult struct {
	Events     []ActivityEvent `json:"events"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// AlertPrefs is the full server-defined flag map. Reads are permissive:
// flags outside KnownAlertFlags are carried through untouched.
type AlertPrefs map[string]bool

type EmailChangeAck struct {
	Message        string `json:"message,omitempty"`
	PendingEmail   string `json:"pending_email,omitempty"`
	ConfirmedEmail string `json:"confirmed_email,omitempty"`
}
