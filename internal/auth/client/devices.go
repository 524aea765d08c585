package client

import (
	"context"
	"net/http"
	"net/url"

	"moviesnow/internal/auth/models"
	"moviesnow/internal/querycache"
	"moviesnow/internal/transport"
)

// RegisterTrustedDevice marks this device as trusted for reduced login
// friction. Registration is explicit; the server decides what "trusted"
// buys.
func (c *Client) RegisterTrustedDevice(ctx context.Context, req *models.RegisterDeviceRequest) (*models.TrustedDevice, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var device models.TrustedDevice
	err := c.transport.Do(ctx, transport.Request{
		Op:     "auth.devices.register",
		Method: http.MethodPost,
		Path:   "/auth/devices",
		Body:   req,
	}, &device)
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate(cacheDevices)
	return &device, nil
}

// ListTrustedDevices returns the registered devices.
func (c *Client) ListTrustedDevices(ctx context.Context) ([]models.TrustedDevice, error) {
	v, err := c.cache.Fetch(ctx, querycache.Key(cacheDevices), func(ctx context.Context) (any, error) {
		var res models.DevicesResult
		err := c.transport.Do(ctx, transport.Request{
			Op:         "auth.devices.list",
			Method:     http.MethodGet,
			Path:       "/auth/devices",
			Idempotent: true,
		}, &res)
		if err != nil {
			return nil, err
		}
		return res.Devices, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.TrustedDevice), nil
}

// RevokeTrustedDevice withdraws trust from one device.
func (c *Client) RevokeTrustedDevice(ctx context.Context, deviceID string) error {
	err := c.transport.Do(ctx, transport.Request{
		Op:         "auth.devices.revoke",
		Method:     http.MethodDelete,
		Path:       "/auth/devices/" + url.PathEscape(deviceID),
		Idempotent: true,
	}, nil)
	if err != nil {
		return err
	}
	c.cache.Invalidate(cacheDevices)
	return nil
}

// RevokeAllTrustedDevices withdraws trust from every device at once.
func (c *Client) RevokeAllTrustedDevices(ctx context.Context) error {
	err := c.transport.Do(ctx, transport.Request{
		Op:         "auth.devices.revoke_all",
		Method:     http.MethodDelete,
		Path:       "/auth/devices",
		Idempotent: true,
	}, nil)
	if err != nil {
		return err
	}
	c.cache.Invalidate(cacheDevices)
	return nil
}
