package devstub

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"moviesnow/internal/auth/models"
	dErrors "moviesnow/pkg/domain-errors"
	"moviesnow/pkg/platform/httputil"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		s.writeError(w, r, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password"))
		return
	}

	a := &account{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		AlertPrefs:   defaultAlertPrefs(),
	}
	if err := s.accounts.Create(a); err != nil {
		s.writeError(w, r, dErrors.New(dErrors.CodeConflict, "email already registered"))
		return
	}
	s.activity.Record(a.ID, "signup", r.RemoteAddr, r.UserAgent())

	bundle, err := s.issueTokens(a, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "account created", "email", a.Email, "account_id", a.ID)
	httputil.WriteJSON(w, http.StatusCreated, bundle)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.tooManyFailures(req.Email) {
		w.Header().Set("Retry-After", "30")
		s.writeError(w, r, dErrors.New(dErrors.CodeRateLimited, "too many login attempts"))
		return
	}

	a, err := s.accounts.FindByEmail(req.Email)
	if err != nil || bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(req.Password)) != nil {
		s.recordFailure(req.Email)
		s.activity.Record(failedAccountID(a), "login_failed", r.RemoteAddr, r.UserAgent())
		s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password"))
		return
	}
	s.clearFailures(req.Email)

	if a.Deactivated {
		s.writeError(w, r, dErrors.New(dErrors.CodeForbidden, "account is deactivated"))
		return
	}

	if a.MFAEnabled {
		mfaToken := "mfa-" + uuid.NewString()
		s.challenges.Issue(mfaToken, a.ID, challengeTTL)
		httputil.WriteJSON(w, http.StatusOK, models.MFAChallenge{
			MFAToken:    mfaToken,
			MFARequired: true,
			Methods:     []string{"totp"},
		})
		return
	}

	s.activity.Record(a.ID, "login", r.RemoteAddr, r.UserAgent())
	bundle, err := s.issueTokens(a, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleMFALogin(w http.ResponseWriter, r *http.Request) {
	var req models.MFALoginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	acctID, err := s.challenges.Redeem(req.MFAToken)
	if err != nil {
		s.writeStoreError(w, r, err, "unknown mfa token")
		return
	}
	a, err := s.accounts.FindByID(acctID)
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}

	if !totp.Validate(req.TOTPCode, a.MFASecret) {
		s.activity.Record(a.ID, "mfa_failed", r.RemoteAddr, r.UserAgent())
		s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid one-time code"))
		return
	}

	s.activity.Record(a.ID, "login", r.RemoteAddr, r.UserAgent())
	bundle, err := s.issueTokens(a, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	_ = s.sessions.Revoke(accountID(r.Context()), sessionJTI(r.Context()))
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	// The response is identical whether or not the account exists, so the
	// endpoint cannot be used to probe for registered emails.
	if a, err := s.accounts.FindByEmail(req.Email); err == nil {
		token := "reset-" + uuid.NewString()
		s.resets.Issue(token, a.ID, resetTTL)
		s.logger.InfoContext(r.Context(), "password reset issued", "email", a.Email, "token", token)
	}
	httputil.WriteJSON(w, http.StatusAccepted, models.PasswordResetAck{
		Message:    "if the address is registered, a reset link has been sent",
		RetryAfter: 60,
	})
}

func (s *Server) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetConfirmRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	acctID, err := s.resets.Redeem(req.Token)
	if err != nil {
		s.writeStoreError(w, r, err, "unknown reset token")
		return
	}
	a, err := s.accounts.FindByID(acctID)
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		s.writeError(w, r, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password"))
		return
	}
	a.PasswordHash = hash

	// A reset invalidates every session; whoever held the old password is out.
	s.sessions.RevokeAll(a.ID, "")
	s.activity.Record(a.ID, "password_reset", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusOK, models.Ack{Message: "password updated"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(req.CurrentPassword)) != nil {
		s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "current password is incorrect"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		s.writeError(w, r, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password"))
		return
	}
	a.PasswordHash = hash

	// Other sessions die with the old password; this one carries on.
	s.sessions.RevokeAll(a.ID, sessionJTI(r.Context()))
	s.activity.Record(a.ID, "password_change", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusOK, models.Ack{Message: "password changed"})
}

func (s *Server) handleReauthPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ReauthPasswordRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(req.Password)) != nil {
		s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "password is incorrect"))
		return
	}
	s.writeGrant(w, r, a.ID)
}

func (s *Server) handleReauthMFA(w http.ResponseWriter, r *http.Request) {
	var req models.ReauthMFARequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}

	switch {
	case req.TOTPCode != "":
		if !a.MFAEnabled || !totp.Validate(req.TOTPCode, a.MFASecret) {
			s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid one-time code"))
			return
		}
	case req.BackupCode != "":
		if !s.consumeRecoveryCode(a, req.BackupCode) {
			s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid backup code"))
			return
		}
		s.activity.Record(a.ID, "recovery_used", r.RemoteAddr, r.UserAgent())
	}
	s.writeGrant(w, r, a.ID)
}

func (s *Server) writeGrant(w http.ResponseWriter, r *http.Request, acctID string) {
	grant := "grant-" + uuid.NewString()
	s.grants.Issue(grant, acctID, grantTTL)
	s.activity.Record(acctID, "reauth", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusOK, models.ReauthGrant{
		ReauthToken: grant,
		ExpiresIn:   int(grantTTL.Seconds()),
	})
}

func (s *Server) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	if a.MFAEnabled {
		s.writeError(w, r, dErrors.New(dErrors.CodeConflict, "mfa is already enabled"))
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "MoviesNow",
		AccountName: a.Email,
	})
	if err != nil {
		s.writeError(w, r, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate totp secret"))
		return
	}

	codes := make([]string, 0, 8)
	pending := make(map[string]bool, 8)
	for i := 0; i < 8; i++ {
		code := recoveryCode()
		codes = append(codes, code)
		pending[code] = false
	}
	a.PendingSecret = key.Secret()
	a.RecoveryCodes = pending

	httputil.WriteJSON(w, http.StatusOK, models.MFASetup{
		Secret:        key.Secret(),
		OTPAuthURL:    key.URL(),
		RecoveryCodes: codes,
	})
}

func (s *Server) handleMFAVerify(w http.ResponseWriter, r *http.Request) {
	var req models.MFAVerifyRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	if a.PendingSecret == "" {
		s.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "no mfa enrollment in progress"))
		return
	}
	if !totp.Validate(req.TOTPCode, a.PendingSecret) {
		s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid one-time code"))
		return
	}

	a.MFASecret = a.PendingSecret
	a.PendingSecret = ""
	a.MFAEnabled = true
	s.activity.Record(a.ID, "mfa_enabled", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusOK, models.Ack{Message: "mfa enabled"})
}

func (s *Server) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	if !a.MFAEnabled {
		s.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "mfa is not enabled"))
		return
	}

	a.MFAEnabled = false
	a.MFASecret = ""
	a.RecoveryCodes = nil
	s.activity.Record(a.ID, "mfa_disabled", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusOK, models.Ack{Message: "mfa disabled"})
}

func (s *Server) handleRecoveryRedeem(w http.ResponseWriter, r *http.Request) {
	var req models.RedeemRecoveryCodeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a := s.findByRecoveryCode(req.Code)
	if a == nil {
		s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid recovery code"))
		return
	}
	s.activity.Record(a.ID, "recovery_used", r.RemoteAddr, r.UserAgent())

	bundle, err := s.issueTokens(a, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	current := sessionJTI(r.Context())
	var out []models.Session
	for _, sess := range s.sessions.List(accountID(r.Context())) {
		created, seen := sess.CreatedAt, sess.LastSeen
		out = append(out, models.Session{
			JTI:        sess.JTI,
			Current:    sess.JTI == current,
			CreatedAt:  &created,
			LastSeenAt: &seen,
			IP:         sess.IP,
			UserAgent:  sess.UserAgent,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, models.SessionsResult{Sessions: out})
}

func (s *Server) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	jti := chi.URLParam(r, "jti")
	if err := s.sessions.Revoke(accountID(r.Context()), jti); err != nil {
		s.writeStoreError(w, r, err, "session not found")
		return
	}
	s.activity.Record(accountID(r.Context()), "session_revoked", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRevokeAllSessions(w http.ResponseWriter, r *http.Request) {
	spare := ""
	if r.URL.Query().Get("except_current") == "true" {
		spare = sessionJTI(r.Context())
	}
	revoked := s.sessions.RevokeAll(accountID(r.Context()), spare)
	s.activity.Record(accountID(r.Context()), "sessions_revoked", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusOK, models.RevokeResult{RevokedCount: revoked})
}

func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterDeviceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	d := &device{
		AccountID: accountID(r.Context()),
		Label:     req.DeviceLabel,
		UserAgent: r.UserAgent(),
		AddedAt:   time.Now().UTC(),
	}
	s.devices.Add(d)
	s.activity.Record(d.AccountID, "device_registered", r.RemoteAddr, r.UserAgent())

	added := d.AddedAt
	httputil.WriteJSON(w, http.StatusCreated, models.TrustedDevice{
		DeviceID:  d.ID,
		Label:     d.Label,
		CreatedAt: &added,
		UserAgent: d.UserAgent,
	})
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	var out []models.TrustedDevice
	for _, d := range s.devices.List(accountID(r.Context())) {
		added := d.AddedAt
		out = append(out, models.TrustedDevice{
			DeviceID:  d.ID,
			Label:     d.Label,
			CreatedAt: &added,
			UserAgent: d.UserAgent,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, models.DevicesResult{Devices: out})
}

func (s *Server) handleRevokeDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.devices.Remove(accountID(r.Context()), id); err != nil {
		s.writeStoreError(w, r, err, "device not found")
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRevokeAllDevices(w http.ResponseWriter, r *http.Request) {
	removed := s.devices.RemoveAll(accountID(r.Context()))
	httputil.WriteJSON(w, http.StatusOK, models.RevokeResult{RevokedCount: removed})
}

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	q := models.ActivityQuery{
		Action: r.URL.Query().Get("action"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, dErrors.NewField(dErrors.CodeValidation, "limit", "must be an integer"))
			return
		}
		q.Limit = n
	}
	q.Normalize()
	if err := q.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	limit := q.Limit
	if limit == 0 {
		limit = 50
	}
	events := s.activity.List(accountID(r.Context()), q.Action, limit)
	httputil.WriteJSON(w, http.StatusOK, models.ActivityResult{Events: events})
}

func (s *Server) handleGetAlerts(w http.ResponseWriter, r *http.Request) {
	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.AlertPrefs(a.AlertPrefs))
}

func (s *Server) handleUpdateAlerts(w http.ResponseWriter, r *http.Request) {
	var update models.AlertPrefsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.writeError(w, r, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := update.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	for flag, on := range update {
		a.AlertPrefs[flag] = on
	}
	httputil.WriteJSON(w, http.StatusOK, models.AlertPrefs(a.AlertPrefs))
}

func (s *Server) handleEmailChange(w http.ResponseWriter, r *http.Request) {
	if err := s.requireStepUp(r, accountID(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req models.EmailChangeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	if _, err := s.accounts.FindByEmail(req.NewEmail); err == nil {
		s.writeError(w, r, dErrors.New(dErrors.CodeConflict, "email already registered"))
		return
	}

	token := "email-" + uuid.NewString()
	a.PendingEmail = req.NewEmail
	s.emailTokens.Issue(token, a.ID, resetTTL)
	s.logger.InfoContext(r.Context(), "email change issued", "pending", req.NewEmail, "token", token)
	s.activity.Record(a.ID, "email_change_started", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusAccepted, models.EmailChangeAck{
		Message:      "confirmation sent to the new address",
		PendingEmail: req.NewEmail,
	})
}

func (s *Server) handleEmailChangeConfirm(w http.ResponseWriter, r *http.Request) {
	var req models.EmailChangeConfirmRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	acctID, err := s.emailTokens.Redeem(req.Token)
	if err != nil {
		s.writeStoreError(w, r, err, "unknown confirmation token")
		return
	}
	a, err := s.accounts.FindByID(acctID)
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}

	if err := s.accounts.Rekey(a, a.PendingEmail); err != nil {
		s.writeError(w, r, dErrors.New(dErrors.CodeConflict, "email already registered"))
		return
	}
	a.PendingEmail = ""
	s.activity.Record(a.ID, "email_changed", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusOK, models.EmailChangeAck{ConfirmedEmail: a.Email})
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	var req models.AccountOTPRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	if !s.validOTP(a, req.OTP) {
		s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid confirmation code"))
		return
	}

	a.Deactivated = true
	s.activity.Record(a.ID, "account_deactivated", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusOK, models.Ack{Message: "account deactivated"})
}

func (s *Server) handleReactivate(w http.ResponseWriter, r *http.Request) {
	var req models.AccountOTPRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	if !s.validOTP(a, req.OTP) {
		s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid confirmation code"))
		return
	}

	a.Deactivated = false
	s.activity.Record(a.ID, "account_reactivated", r.RemoteAddr, r.UserAgent())
	httputil.WriteJSON(w, http.StatusOK, models.Ack{Message: "account reactivated"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.requireStepUp(r, accountID(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req models.AccountOTPRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.accounts.FindByID(accountID(r.Context()))
	if err != nil {
		s.writeStoreError(w, r, err, "account not found")
		return
	}
	if !s.validOTP(a, req.OTP) {
		s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid confirmation code"))
		return
	}

	s.sessions.RevokeAll(a.ID, "")
	s.devices.RemoveAll(a.ID)
	s.accounts.Delete(a)
	httputil.WriteJSON(w, http.StatusOK, models.Ack{Message: "account deleted"})
}

// validOTP accepts the account's live TOTP code, or the fixed development
// code when MFA is not enrolled.
func (s *Server) validOTP(a *account, code string) bool {
	if a.MFAEnabled {
		return totp.Validate(code, a.MFASecret)
	}
	return code == "000000"
}

func (s *Server) consumeRecoveryCode(a *account, code string) bool {
	s.accounts.mu.Lock()
	defer s.accounts.mu.Unlock()
	used, ok := a.RecoveryCodes[code]
	if !ok || used {
		return false
	}
	a.RecoveryCodes[code] = true
	return true
}

func (s *Server) findByRecoveryCode(code string) *account {
	s.accounts.mu.Lock()
	defer s.accounts.mu.Unlock()
	for _, a := range s.accounts.byID {
		if used, ok := a.RecoveryCodes[code]; ok && !used {
			a.RecoveryCodes[code] = true
			return a
		}
	}
	return nil
}

func (s *Server) tooManyFailures(email string) bool {
	if s.loginLimit <= 0 {
		return false
	}
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failed[email] >= s.loginLimit
}

func (s *Server) recordFailure(email string) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failed[email]++
}

func (s *Server) clearFailures(email string) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	delete(s.failed, email)
}

func failedAccountID(a *account) string {
	if a == nil {
		return "unknown"
	}
	return a.ID
}

func defaultAlertPrefs() map[string]bool {
	prefs := make(map[string]bool, len(models.KnownAlertFlags))
	for flag := range models.KnownAlertFlags {
		prefs[flag] = true
	}
	return prefs
}

func recoveryCode() string {
	// 16 hex chars of a uuid, uppercased, inside the accepted alphabet.
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}
