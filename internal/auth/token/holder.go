// Package token owns the single in-memory access-token slot. The token is
// set on login and refresh, cleared on logout, and never written to durable
// storage. Last writer wins; there is no further arbitration because callers
// only ever swap the whole bundle.
package token

import (
	"sync"

	"moviesnow/internal/auth/models"
)

// Holder is the module's one shared mutable slot.
type Holder struct {
	mu     sync.RWMutex
	bundle *models.TokenBundle
}

func NewHolder() *Holder {
	return &Holder{}
}

// Set replaces the held bundle. A nil bundle is ignored; use Clear to drop
// credentials.
func (h *Holder) Set(bundle *models.TokenBundle) {
	if bundle == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	b := *bundle
	h.bundle = &b
}

// AccessToken returns the current access token, or "" when logged out.
func (h *Holder) AccessToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.bundle == nil {
		return ""
	}
	return h.bundle.AccessToken
}

// Bundle returns a copy of the held bundle, or nil when logged out.
func (h *Holder) Bundle() *models.TokenBundle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.bundle == nil {
		return nil
	}
	b := *h.bundle
	return &b
}

// Clear drops the held credentials.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bundle = nil
}
