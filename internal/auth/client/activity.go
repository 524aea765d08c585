package client

import (
	"context"
	"net/http"

	"moviesnow/internal/auth/models"
	"moviesnow/internal/querycache"
	"moviesnow/internal/transport"
)

// ListActivity returns the account's security activity log. The log is
// append-only and read-only from here; filters narrow what comes back.
func (c *Client) ListActivity(ctx context.Context, q *models.ActivityQuery) (*models.ActivityResult, error) {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	values := q.Values()
	key := querycache.Key(cacheActivity, values.Encode())
	v, err := c.cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		var res models.ActivityResult
		err := c.transport.Do(ctx, transport.Request{
			Op:         "auth.activity.list",
			Method:     http.MethodGet,
			Path:       "/auth/activity",
			Query:      values,
			Idempotent: true,
		}, &res)
		if err != nil {
			return nil, err
		}
		return &res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ActivityResult), nil
}

// GetAlertPrefs reads the full alert subscription flag map, including flags
// this client version does not know about.
func (c *Client) GetAlertPrefs(ctx context.Context) (models.AlertPrefs, error) {
	v, err := c.cache.Fetch(ctx, querycache.Key(cacheAlerts), func(ctx context.Context) (any, error) {
		var prefs models.AlertPrefs
		err := c.transport.Do(ctx, transport.Request{
			Op:         "auth.alerts.get",
			Method:     http.MethodGet,
			Path:       "/auth/alerts/subscription",
			Idempotent: true,
		}, &prefs)
		if err != nil {
			return nil, err
		}
		return prefs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(models.AlertPrefs), nil
}

// UpdateAlertPrefs applies a partial flag update. Unknown flags are rejected
// locally; the server returns the full resulting map.
func (c *Client) UpdateAlertPrefs(ctx context.Context, update models.AlertPrefsUpdate) (models.AlertPrefs, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	var prefs models.AlertPrefs
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.alerts.update",
		Method: http.MethodPatch,
		Path:   "/auth/alerts/subscription",
		Body:   update,
	}, &prefs)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cacheAlerts)
	return prefs, nil
}
