package client

import (
	"context"
	"net/http"

	"moviesnow/internal/auth/models"
	"moviesnow/internal/transport"
)

// SetupMFA starts TOTP enrollment and returns the shared secret plus
// provisioning URL for the authenticator app.
func (c *Client) SetupMFA(ctx context.Context) (*models.MFASetup, error) {
	var setup models.MFASetup
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.mfa.setup",
		Method: http.MethodPost,
		Path:   "/auth/mfa/setup",
	}, &setup)
	if err != nil {
		return nil, err
	}
	return &setup, nil
}

// VerifyMFA proves possession of the enrolled authenticator, activating MFA.
func (c *Client) VerifyMFA(ctx context.Context, req *models.MFAVerifyRequest) (*models.Ack, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var ack models.Ack
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.mfa.verify",
		Method: http.MethodPost,
		Path:   "/auth/mfa/verify",
		Body:   req,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// DisableMFA turns the second factor off.
func (c *Client) DisableMFA(ctx context.Context) (*models.Ack, error) {
	var ack models.Ack
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.mfa.disable",
		Method: http.MethodPost,
		Path:   "/auth/mfa/disable",
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// RedeemRecoveryCode burns a single-use recovery code. When the server
// rotates the session the outcome carries fresh tokens, which replace the
// held bundle and drop cached reads.
func (c *Client) RedeemRecoveryCode(ctx context.Context, req *models.RedeemRecoveryCodeRequest) (*models.TokenOutcome, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out models.TokenOutcome
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.mfa.recovery_redeem",
		Method: http.MethodPost,
		Path:   "/auth/mfa/recovery-codes/redeem",
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.adoptTokens(out.Tokens)
	return &out, nil
}
