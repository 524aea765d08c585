package client

import (
	"context"
	"net/http"

	"moviesnow/internal/auth/models"
	"moviesnow/internal/transport"
)

// StartEmailChange begins moving the account to a new address. Servers
// typically gate this behind step-up; callers run it through the reauth
// coordinator, which retries once with the grant attached.
func (c *Client) StartEmailChange(ctx context.Context, req *models.EmailChangeRequest) (*models.EmailChangeAck, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var ack models.EmailChangeAck
	err := c.transport.Do(ctx, transport.Request{
		Op:          "auth.email.change",
		Method:      http.MethodPost,
		Path:        "/auth/email/change",
		Body:        req,
		ReauthToken: req.ReauthToken,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// ConfirmEmailChange redeems the token mailed to the new address.
func (c *Client) ConfirmEmailChange(ctx context.Context, req *models.EmailChangeConfirmRequest) (*models.EmailChangeAck, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var ack models.EmailChangeAck
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.email.confirm",
		Method: http.MethodPost,
		Path:   "/auth/email/change/confirm",
		Body:   req,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// DeactivateAccount suspends the account after OTP confirmation.
func (c *Client) DeactivateAccount(ctx context.Context, req *models.AccountOTPRequest) (*models.Ack, error) {
	return c.accountLifecycle(ctx, "auth.account.deactivate", "/auth/account/deactivate", req)
}

// DeleteAccount permanently removes the account. Servers gate this behind
// step-up in addition to the OTP.
func (c *Client) DeleteAccount(ctx context.Context, req *models.AccountOTPRequest) (*models.Ack, error) {
	return c.accountLifecycle(ctx, "auth.account.delete", "/auth/account/delete", req)
}

// ReactivateAccount restores a deactivated account.
func (c *Client) ReactivateAccount(ctx context.Context, req *models.AccountOTPRequest) (*models.Ack, error) {
	return c.accountLifecycle(ctx, "auth.account.reactivate", "/auth/account/reactivate", req)
}

func (c *Client) accountLifecycle(ctx context.Context, op, path string, req *models.AccountOTPRequest) (*models.Ack, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var ack models.Ack
	err := c.transport.Do(ctx, transport.Request{
		Op:          op,
		Method:      http.MethodPost,
		Path:        path,
		Body:        req,
		ReauthToken: req.ReauthToken,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}
