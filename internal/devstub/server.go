// Package devstub is an in-memory fake of the MoviesNow auth API for local
// development and end-to-end style tests. It speaks the same wire contract
// the client expects, including the error envelope, idempotency replay and
// step-up enforcement, but keeps everything in process. It is a test double,
// not a product server.
package devstub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"moviesnow/internal/auth/models"
	dErrors "moviesnow/pkg/domain-errors"
	"moviesnow/pkg/platform/httputil"
	"moviesnow/pkg/platform/sentinel"
	"moviesnow/pkg/requestcontext"
)

const (
	grantTTL     = 5 * time.Minute
	resetTTL     = 15 * time.Minute
	challengeTTL = 5 * time.Minute
	accessTTL    = 15 * time.Minute
)

type Server struct {
	logger *slog.Logger

	accounts    *accountStore
	sessions    *sessionStore
	devices     *deviceStore
	activity    *activityStore
	challenges  *oneShotStore // mfa_token from a challenged login
	resets      *oneShotStore // password reset tokens
	grants      *oneShotStore // step-up reauth grants
	emailTokens *oneShotStore // email change confirmations
	replay      *replayStore

	jwtSecret []byte

	loginLimit int // consecutive failed logins before 429, 0 disables
	failMu     sync.Mutex
	failed     map[string]int
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithLoginRateLimit trips a 429 after n consecutive failed logins for the
// same email. A successful login resets the count.
func WithLoginRateLimit(n int) Option {
	return func(s *Server) { s.loginLimit = n }
}

func New(opts ...Option) *Server {
	s := &Server{
		logger:      slog.Default(),
		accounts:    newAccountStore(),
		sessions:    newSessionStore(),
		devices:     newDeviceStore(),
		activity:    newActivityStore(),
		challenges:  newOneShotStore(),
		resets:      newOneShotStore(),
		grants:      newOneShotStore(),
		emailTokens: newOneShotStore(),
		replay:      newReplayStore(),
		jwtSecret:   []byte("moviesnow-devstub-" + uuid.NewString()),
		failed:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestScope)
	r.Use(s.idempotencyReplay)

	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/mfa-login", s.handleMFALogin)
	r.Post("/auth/password-reset/request", s.handlePasswordResetRequest)
	r.Post("/auth/password-reset/confirm", s.handlePasswordResetConfirm)
	r.Post("/auth/email/change/confirm", s.handleEmailChangeConfirm)
	r.Post("/auth/mfa/recovery-codes/redeem", s.handleRecoveryRedeem)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Post("/auth/logout", s.handleLogout)
		r.Post("/auth/password/change", s.handleChangePassword)
		r.Post("/auth/reauth/password", s.handleReauthPassword)
		r.Post("/auth/reauth/mfa", s.handleReauthMFA)
		r.Post("/auth/mfa/setup", s.handleMFASetup)
		r.Post("/auth/mfa/verify", s.handleMFAVerify)
		r.Post("/auth/mfa/disable", s.handleMFADisable)
		r.Get("/auth/sessions", s.handleListSessions)
		r.Delete("/auth/sessions", s.handleRevokeAllSessions)
		r.Delete("/auth/sessions/{jti}", s.handleRevokeSession)
		r.Post("/auth/devices", s.handleRegisterDevice)
		r.Get("/auth/devices", s.handleListDevices)
		r.Delete("/auth/devices", s.handleRevokeAllDevices)
		r.Delete("/auth/devices/{id}", s.handleRevokeDevice)
		r.Get("/auth/activity", s.handleListActivity)
		r.Get("/auth/alerts/subscription", s.handleGetAlerts)
		r.Patch("/auth/alerts/subscription", s.handleUpdateAlerts)
		r.Post("/auth/email/change", s.handleEmailChange)
		r.Post("/auth/account/deactivate", s.handleDeactivate)
		r.Post("/auth/account/reactivate", s.handleReactivate)
		r.Post("/auth/account/delete", s.handleDelete)
	})

	return r
}

// requestScope stashes the caller's request id and client details so any
// handler depth can reach them without threading parameters.
func requestScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), id)
		ctx = requestcontext.WithClientIP(ctx, r.RemoteAddr)
		ctx = requestcontext.WithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ctxKey int

const (
	ctxAccountID ctxKey = iota
	ctxSessionJTI
)

// requireSession authenticates the bearer token and resolves its live
// session. Revoked sessions are as good as absent.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
			return
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.jwtSecret, nil
		})
		if err != nil || !tok.Valid {
			s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid access token"))
			return
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "invalid access token"))
			return
		}
		jti, _ := claims["jti"].(string)

		sess, err := s.sessions.Find(jti)
		if err != nil {
			s.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "session revoked or expired"))
			return
		}
		sess.LastSeen = time.Now().UTC()

		ctx := context.WithValue(r.Context(), ctxAccountID, sess.AccountID)
		ctx = context.WithValue(ctx, ctxSessionJTI, jti)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accountID(ctx context.Context) string {
	id, _ := ctx.Value(ctxAccountID).(string)
	return id
}

func sessionJTI(ctx context.Context) string {
	jti, _ := ctx.Value(ctxSessionJTI).(string)
	return jti
}

// idempotencyReplay serves a recorded response for a repeated
// Idempotency-Key, so automatic retries of the same submission observe the
// first outcome instead of re-running the mutation.
func (s *Server) idempotencyReplay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" || r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		if e, ok := s.replay.Get(key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotency-Replayed", "true")
			w.WriteHeader(e.Status)
			_, _ = w.Write(e.Body)
			return
		}

		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.replay.Put(key, rec.status, rec.body.Bytes())
	})
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// decode reads a strict request body. Unknown fields are rejected so a
// misspelled field fails loudly in development instead of being ignored.
func decode[T interface {
	Normalize()
	Validate() error
}](r *http.Request, req T) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	req.Normalize()
	return req.Validate()
}

// requireStepUp enforces a fresh reauth grant on sensitive operations.
func (s *Server) requireStepUp(r *http.Request, wantAccountID string) error {
	grant := r.Header.Get("X-Reauth-Token")
	if grant == "" {
		return dErrors.New(dErrors.CodeStepUpRequired, "recent authentication required")
	}
	id, err := s.grants.Peek(grant)
	if err != nil || id != wantAccountID {
		return dErrors.New(dErrors.CodeStepUpRequired, "reauthentication grant invalid or expired")
	}
	return nil
}

// issueTokens mints a signed access token bound to a fresh session.
func (s *Server) issueTokens(a *account, r *http.Request) (*models.TokenBundle, error) {
	jti := uuid.NewString()
	now := time.Now().UTC()

	claims := jwt.MapClaims{
		"sub": a.ID,
		"jti": jti,
		"sid": jti,
		"iat": now.Unix(),
		"exp": now.Add(accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}

	s.sessions.Save(&session{
		JTI:       jti,
		AccountID: a.ID,
		CreatedAt: now,
		LastSeen:  now,
		UserAgent: r.UserAgent(),
		IP:        r.RemoteAddr,
	})

	return &models.TokenBundle{
		AccessToken:  access,
		RefreshToken: "refresh-" + uuid.NewString(),
		TokenType:    "Bearer",
		ExpiresIn:    int(accessTTL.Seconds()),
	}, nil
}

// writeError renders err as the wire envelope, stamping the request id from
// context when the error does not already carry one.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if reqID := requestcontext.RequestID(r.Context()); reqID != "" && dErrors.RequestIDOf(err) == "" {
		var e *dErrors.Error
		if errors.As(err, &e) {
			err = e.WithRequestID(reqID)
		}
	}
	httputil.WriteError(w, err)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.writeError(w, r, dErrors.New(dErrors.CodeNotFound, notFoundMsg))
	case errors.Is(err, sentinel.ErrConflict):
		s.writeError(w, r, dErrors.New(dErrors.CodeConflict, "resource already exists"))
	case errors.Is(err, sentinel.ErrExpired):
		s.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "token expired"))
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		s.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "token already used"))
	default:
		s.writeError(w, r, dErrors.Wrap(err, dErrors.CodeInternal, "store failure"))
	}
}
