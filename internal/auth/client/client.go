// Package client exposes one method per MoviesNow auth operation. Every
// method follows the same shape: normalize and validate the request locally,
// execute it through the shared transport, and keep the token holder and
// read cache coherent with the result.
package client

import (
	"log/slog"
	"time"

	"moviesnow/internal/auth/token"
	"moviesnow/internal/querycache"
	"moviesnow/internal/transport"
)

// Cache key prefixes. Mutations invalidate the prefixes they affect.
const (
	cacheSessions = "sessions"
	cacheDevices  = "devices"
	cacheActivity = "activity"
	cacheAlerts   = "alerts"
)

type Client struct {
	transport *transport.Client
	tokens    *token.Holder
	cache     *querycache.Cache
	logger    *slog.Logger
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = querycache.New(ttl) }
}

func New(t *transport.Client, tokens *token.Holder, opts ...Option) *Client {
	c := &Client{
		transport: t,
		tokens:    tokens,
		cache:     querycache.New(30 * time.Second),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens exposes the holder so callers can wire it as the transport's
// token source and inspect login state.
func (c *Client) Tokens() *token.Holder { return c.tokens }
