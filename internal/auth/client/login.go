package client

import (
	"context"
	"net/http"

	"moviesnow/internal/auth/models"
	"moviesnow/internal/transport"
)

// Signup registers a new account. Some deployments log the user straight
// in, in which case the outcome carries a token bundle and the client
// becomes authenticated.
func (c *Client) Signup(ctx context.Context, req *models.SignupRequest) (*models.TokenOutcome, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out models.TokenOutcome
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.signup",
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.adoptTokens(out.Tokens)
	return &out, nil
}

// Login submits credentials. The outcome is either a token bundle (the
// client is now authenticated) or an MFA challenge whose mfa_token must be
// paired with a one-time code via MFALogin.
func (c *Client) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginOutcome, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out models.LoginOutcome
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.login",
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.adoptTokens(out.Tokens)
	return &out, nil
}

// MFALogin completes a challenged login with a TOTP code.
func (c *Client) MFALogin(ctx context.Context, req *models.MFALoginRequest) (*models.TokenBundle, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var bundle models.TokenBundle
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.mfa_login",
		Method: http.MethodPost,
		Path:   "/auth/mfa-login",
		Body:   req,
	}, &bundle)
	if err != nil {
		return nil, err
	}
	c.adoptTokens(&bundle)
	return &bundle, nil
}

// Logout ends the session server-side. Local credentials are dropped even
// when the server call fails; a dead session is not worth keeping tokens
// around for.
func (c *Client) Logout(ctx context.Context) error {
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.logout",
		Method: http.MethodPost,
		Path:   "/auth/logout",
	}, nil)

	c.tokens.Clear()
	c.cache.Clear()
	return err
}

// adoptTokens installs a freshly issued bundle and drops every cached read,
// since they were fetched under the previous identity.
func (c *Client) adoptTokens(bundle *models.TokenBundle) {
	if bundle == nil || bundle.AccessToken == "" {
		return
	}
	c.tokens.Set(bundle)
	c.cache.Clear()
}
