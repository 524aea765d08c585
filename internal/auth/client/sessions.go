package client

import (
	"context"
	"net/http"
	"net/url"

	"moviesnow/internal/auth/models"
	"moviesnow/internal/querycache"
	"moviesnow/internal/transport"
)

// ListSessions returns every active session for the account. Concurrent
// identical reads share one network call.
func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	v, err := c.cache.Fetch(ctx, querycache.Key(cacheSessions), func(ctx context.Context) (any, error) {
		var res models.SessionsResult
		err := c.transport.Do(ctx, transport.Request{
			Op:         "auth.sessions.list",
			Method:     http.MethodGet,
			Path:       "/auth/sessions",
			Idempotent: true,
		}, &res)
		if err != nil {
			return nil, err
		}
		return res.Sessions, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Session), nil
}

// RevokeSession revokes one session by its token identifier.
func (c *Client) RevokeSession(ctx context.Context, jti string) error {
	err := c.transport.Do(ctx, transport.Request{
		Op:         "auth.sessions.revoke",
		Method:     http.MethodDelete,
		Path:       "/auth/sessions/" + url.PathEscape(jti),
		Idempotent: true,
	}, nil)
	if err != nil {
		return err
	}
	c.cache.Invalidate(cacheSessions)
	return nil
}

// RevokeAllSessions revokes every session, optionally sparing the one
// making this call.
func (c *Client) RevokeAllSessions(ctx context.Context, exceptCurrent bool) (*models.RevokeResult, error) {
	query := url.Values{}
	if exceptCurrent {
		query.Set("except_current", "true")
	}

	var res models.RevokeResult
	err := c.transport.Do(ctx, transport.Request{
		Op:         "auth.sessions.revoke_all",
		Method:     http.MethodDelete,
		Path:       "/auth/sessions",
		Query:      query,
		Idempotent: true,
	}, &res)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cacheSessions)
	return &res, nil
}
