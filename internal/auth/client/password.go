package client

import (
	"context"
	"net/http"

	"moviesnow/internal/auth/models"
	"moviesnow/internal/transport"
)

// RequestPasswordReset asks the server to email a reset link. The ack may
// carry throttling hints (retry_after, next_allowed_at) for the next
// attempt.
func (c *Client) RequestPasswordReset(ctx context.Context, req *models.PasswordResetRequest) (*models.PasswordResetAck, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var ack models.PasswordResetAck
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.password_reset.request",
		Method: http.MethodPost,
		Path:   "/auth/password-reset/request",
		Body:   req,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// ConfirmPasswordReset redeems an emailed reset token for a new password.
func (c *Client) ConfirmPasswordReset(ctx context.Context, req *models.PasswordResetConfirmRequest) (*models.Ack, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var ack models.Ack
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.password_reset.confirm",
		Method: http.MethodPost,
		Path:   "/auth/password-reset/confirm",
		Body:   req,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// ChangePassword rotates the password of the authenticated account.
func (c *Client) ChangePassword(ctx context.Context, req *models.ChangePasswordRequest) (*models.Ack, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var ack models.Ack
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.password.change",
		Method: http.MethodPost,
		Path:   "/auth/password/change",
		Body:   req,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// ReauthPassword re-confirms identity with the account password and returns
// a short-lived elevated grant for sensitive mutations.
func (c *Client) ReauthPassword(ctx context.Context, req *models.ReauthPasswordRequest) (*models.ReauthGrant, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var grant models.ReauthGrant
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.reauth.password",
		Method: http.MethodPost,
		Path:   "/auth/reauth/password",
		Body:   req,
	}, &grant)
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// ReauthMFA re-confirms identity with a TOTP or recovery code. The same
// normalization as the login paths applies, so a code is accepted here in
// whatever format it is accepted there.
func (c *Client) ReauthMFA(ctx context.Context, req *models.ReauthMFARequest) (*models.ReauthGrant, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var grant models.ReauthGrant
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.reauth.mfa",
		Method: http.MethodPost,
		Path:   "/auth/reauth/mfa",
		Body:   req,
	}, &grant)
	if err != nil {
		return nil, err
	}
	return &grant, nil
}
