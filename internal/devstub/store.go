package devstub

import (
	"strconv"
	"sync"
	"time"

	"moviesnow/internal/auth/models"
	"moviesnow/pkg/platform/sentinel"
)

// In-memory stores keep the stub lightweight and testable. They intentionally
// favor clarity over performance.

type account struct {
	ID            string
	Email         string
	FullName      string
	PasswordHash  []byte
	MFAEnabled    bool
	MFASecret     string
	PendingSecret string
	RecoveryCodes map[string]bool // code -> consumed
	AlertPrefs    map[string]bool
	Deactivated   bool
	PendingEmail  string
	EmailToken    string
}

type accountStore struct {
	mu       sync.RWMutex
	byEmail  map[string]*account
	byID     map[string]*account
	sequence int
}

func newAccountStore() *accountStore {
	return &accountStore{
		byEmail: make(map[string]*account),
		byID:    make(map[string]*account),
	}
}

func (s *accountStore) Create(a *account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[a.Email]; ok {
		return sentinel.ErrConflict
	}
	s.sequence++
	a.ID = "acct-" + strconv.Itoa(s.sequence)
	s.byEmail[a.Email] = a
	s.byID[a.ID] = a
	return nil
}

func (s *accountStore) FindByEmail(email string) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.byEmail[email]; ok {
		return a, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *accountStore) FindByID(id string) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *accountStore) Delete(a *account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byEmail, a.Email)
	delete(s.byID, a.ID)
}

// Rekey moves an account to a new email address.
func (s *accountStore) Rekey(a *account, newEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[newEmail]; ok {
		return sentinel.ErrConflict
	}
	delete(s.byEmail, a.Email)
	a.Email = newEmail
	s.byEmail[newEmail] = a
	return nil
}

type session struct {
	JTI       string
	AccountID string
	CreatedAt time.Time
	LastSeen  time.Time
	UserAgent string
	IP        string
	Revoked   bool
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) Save(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.JTI] = sess
}

func (s *sessionStore) Find(jti string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[jti]
	if !ok || sess.Revoked {
		return nil, sentinel.ErrNotFound
	}
	return sess, nil
}

func (s *sessionStore) List(accountID string) []*session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*session
	for _, sess := range s.sessions {
		if sess.AccountID == accountID && !sess.Revoked {
			out = append(out, sess)
		}
	}
	return out
}

func (s *sessionStore) Revoke(accountID, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[jti]
	if !ok || sess.AccountID != accountID || sess.Revoked {
		return sentinel.ErrNotFound
	}
	sess.Revoked = true
	return nil
}

// RevokeAll revokes every live session for the account, optionally sparing
// one. It returns how many it revoked.
func (s *sessionStore) RevokeAll(accountID, spareJTI string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	revoked := 0
	for _, sess := range s.sessions {
		if sess.AccountID != accountID || sess.Revoked || sess.JTI == spareJTI {
			continue
		}
		sess.Revoked = true
		revoked++
	}
	return revoked
}

type device struct {
	ID        string
	AccountID string
	Label     string
	UserAgent string
	AddedAt   time.Time
}

type deviceStore struct {
	mu       sync.RWMutex
	devices  map[string]*device
	sequence int
}

func newDeviceStore() *deviceStore {
	return &deviceStore{devices: make(map[string]*device)}
}

func (s *deviceStore) Add(d *device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	d.ID = "dev-" + strconv.Itoa(s.sequence)
	s.devices[d.ID] = d
}

func (s *deviceStore) List(accountID string) []*device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*device
	for _, d := range s.devices {
		if d.AccountID == accountID {
			out = append(out, d)
		}
	}
	return out
}

func (s *deviceStore) Remove(accountID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok || d.AccountID != accountID {
		return sentinel.ErrNotFound
	}
	delete(s.devices, id)
	return nil
}

func (s *deviceStore) RemoveAll(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, d := range s.devices {
		if d.AccountID == accountID {
			delete(s.devices, id)
			removed++
		}
	}
	return removed
}

type activityStore struct {
	mu     sync.RWMutex
	events map[string][]models.ActivityEvent
}

func newActivityStore() *activityStore {
	return &activityStore{events: make(map[string][]models.ActivityEvent)}
}

func (s *activityStore) Record(accountID, action, ip, ua string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[accountID] = append(s.events[accountID], models.ActivityEvent{
		ID:        strconv.Itoa(len(s.events[accountID]) + 1),
		Action:    action,
		Timestamp: time.Now().UTC(),
		Success:   true,
		IP:        ip,
		UserAgent: ua,
	})
}

func (s *activityStore) List(accountID, action string, limit int) []models.ActivityEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.events[accountID]
	// Newest first.
	var out []models.ActivityEvent
	for i := len(all) - 1; i >= 0; i-- {
		if action != "" && all[i].Action != action {
			continue
		}
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// oneShotStore hands out single-use tokens: password reset tokens, MFA
// challenge tokens, reauth grants, email confirmation tokens. A token maps
// to the account it was minted for and burns on redemption.
type oneShotStore struct {
	mu     sync.Mutex
	tokens map[string]oneShot
}

type oneShot struct {
	AccountID string
	ExpiresAt time.Time
	Used      bool
}

func newOneShotStore() *oneShotStore {
	return &oneShotStore{tokens: make(map[string]oneShot)}
}

func (s *oneShotStore) Issue(token, accountID string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = oneShot{AccountID: accountID, ExpiresAt: time.Now().Add(ttl)}
}

func (s *oneShotStore) Redeem(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	switch {
	case !ok:
		return "", sentinel.ErrNotFound
	case t.Used:
		return "", sentinel.ErrAlreadyUsed
	case time.Now().After(t.ExpiresAt):
		return "", sentinel.ErrExpired
	}
	t.Used = true
	s.tokens[token] = t
	return t.AccountID, nil
}

// Peek validates without burning, for grants that may back several checks
// inside one request.
func (s *oneShotStore) Peek(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	switch {
	case !ok:
		return "", sentinel.ErrNotFound
	case t.Used:
		return "", sentinel.ErrAlreadyUsed
	case time.Now().After(t.ExpiresAt):
		return "", sentinel.ErrExpired
	}
	return t.AccountID, nil
}

// replayStore remembers responses by idempotency key so an automatic retry
// of the same submission observes the first outcome instead of re-running
// the mutation.
type replayStore struct {
	mu        sync.Mutex
	responses map[string]replayEntry
}

type replayEntry struct {
	Status int
	Body   []byte
}

func newReplayStore() *replayStore {
	return &replayStore{responses: make(map[string]replayEntry)}
}

func (s *replayStore) Get(key string) (replayEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.responses[key]
	return e, ok
}

func (s *replayStore) Put(key string, status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = replayEntry{Status: status, Body: body}
}
