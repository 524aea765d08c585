package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviesnow/internal/auth/client"
	"moviesnow/internal/auth/models"
	"moviesnow/internal/auth/reauth"
	"moviesnow/internal/auth/token"
	"moviesnow/internal/transport"
	dErrors "moviesnow/pkg/domain-errors"
)

func newClient(t *testing.T, srv *httptest.Server, opts ...client.Option) *client.Client {
	t.Helper()
	holder := &token.Holder{}
	tr, err := transport.New(srv.URL,
		transport.WithHTTPClient(srv.Client()),
		transport.WithTokenSource(holder),
		transport.WithRetryWait(time.Millisecond),
	)
	require.NoError(t, err)
	return client.New(tr, holder, opts...)
}

func TestLogin_DirectTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// Email arrives normalized regardless of how the caller typed it.
		assert.Equal(t, "user@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"token_type":    "Bearer",
			"expires_in":    900,
		})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	out, err := c.Login(context.Background(), &models.LoginRequest{
		Email:    "  USER@Example.com ",
		Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Tokens)
	assert.Nil(t, out.Challenge)
	assert.Equal(t, "at-1", c.Tokens().AccessToken())
}

func TestLogin_MFAChallengeThenComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(map[string]any{
				"mfa_token":    "mfa-abc",
				"mfa_required": true,
				"methods":      []string{"totp"},
			})
		case "/auth/mfa-login":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "mfa-abc", body["mfa_token"])
			// Spaces stripped from the code before it hits the wire.
			assert.Equal(t, "123456", body["totp_code"])
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "at-2",
				"refresh_token": "rt-2",
				"token_type":    "Bearer",
				"expires_in":    900,
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newClient(t, srv)

	out, err := c.Login(context.Background(), &models.LoginRequest{
		Email:    "user@example.com",
		Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Challenge)
	assert.Nil(t, out.Tokens)
	// Challenged login must not install anything.
	assert.Empty(t, c.Tokens().AccessToken())

	bundle, err := c.MFALogin(context.Background(), &models.MFALoginRequest{
		MFAToken: out.Challenge.MFAToken,
		TOTPCode: "123 456",
	})
	require.NoError(t, err)
	assert.Equal(t, "at-2", bundle.AccessToken)
	assert.Equal(t, "at-2", c.Tokens().AccessToken())
}

func TestLogin_ValidationShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server")
	}))
	defer srv.Close()

	c := newClient(t, srv)
	_, err := c.Login(context.Background(), &models.LoginRequest{Email: "not-an-email", Password: "x"})
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, "email", dErrors.FieldOf(err))
}

func TestLogout_ClearsTokensEvenOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"error": "unauthorized"})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	c.Tokens().Set(&models.TokenBundle{AccessToken: "at-old", TokenType: "Bearer"})

	err := c.Logout(context.Background())
	require.Error(t, err)
	assert.Empty(t, c.Tokens().AccessToken())
}

func TestListSessions_CachedAcrossCalls(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"sessions": []map[string]any{
				{"jti": "s-1", "current": true},
				{"jti": "s-2"},
			},
		})
	}))
	defer srv.Close()

	c := newClient(t, srv, client.WithCacheTTL(time.Minute))

	first, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, first[0].Current)

	_, err = c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRevokeSession_InvalidatesSessionCache(t *testing.T) {
	var listHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			listHits.Add(1)
			json.NewEncoder(w).Encode(map[string]any{"sessions": []map[string]any{{"jti": "s-1"}}})
		case http.MethodDelete:
			assert.Equal(t, "/auth/sessions/s-1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := newClient(t, srv, client.WithCacheTTL(time.Minute))

	_, err := c.ListSessions(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.RevokeSession(context.Background(), "s-1"))

	_, err = c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), listHits.Load(), "revoke must drop the cached list")
}

func TestRevokeAllSessions_ExceptCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "true", r.URL.Query().Get("except_current"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"revoked_count": 3, "failed_count": 1})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	res, err := c.RevokeAllSessions(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 3, res.RevokedCount)
	assert.Equal(t, 1, res.FailedCount)
}

func TestAdoptTokens_ClearsReadCache(t *testing.T) {
	var listHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/sessions":
			listHits.Add(1)
			json.NewEncoder(w).Encode(map[string]any{"sessions": []map[string]any{}})
		case "/auth/login":
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "at-new", "token_type": "Bearer", "expires_in": 900,
			})
		}
	}))
	defer srv.Close()

	c := newClient(t, srv, client.WithCacheTTL(time.Minute))

	_, err := c.ListSessions(context.Background())
	require.NoError(t, err)

	_, err = c.Login(context.Background(), &models.LoginRequest{Email: "user@example.com", Password: "Str0ng!pass"})
	require.NoError(t, err)

	// A new identity means every cached read is stale.
	_, err = c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), listHits.Load())
}

func TestUpdateAlertPrefs_RejectsUnknownFlagLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server")
	}))
	defer srv.Close()

	c := newClient(t, srv)
	_, err := c.UpdateAlertPrefs(context.Background(), models.AlertPrefsUpdate{"email_mystery": true})
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestGetAlertPrefs_PreservesUnknownServerFlags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{
			"email_login":       true,
			"email_next_season": false,
		})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	prefs, err := c.GetAlertPrefs(context.Background())
	require.NoError(t, err)
	assert.True(t, prefs["email_login"])
	// Flags minted after this client shipped still come through.
	v, ok := prefs["email_next_season"]
	require.True(t, ok)
	assert.False(t, v)
}

type grantPrompter struct {
	grant models.ReauthGrant
	calls int
}

func (p *grantPrompter) Prompt(ctx context.Context) (*models.ReauthGrant, error) {
	p.calls++
	g := p.grant
	return &g, nil
}

func TestStartEmailChange_StepUpRoundTrip(t *testing.T) {
	var attempts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/email/change":
			grant := r.Header.Get("X-Reauth-Token")
			attempts = append(attempts, grant)
			if grant == "" {
				w.Header().Set("X-Reauth-Required", "true")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]any{
					"error":             "reauth_required",
					"error_description": "recent authentication required",
				})
				return
			}

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "new@example.com", body["new_email"])
			json.NewEncoder(w).Encode(map[string]any{"message": "confirmation sent"})
		case "/auth/reauth/password":
			json.NewEncoder(w).Encode(map[string]any{"reauth_token": "grant-9", "expires_in": 300})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newClient(t, srv)
	prompter := &grantPrompter{grant: models.ReauthGrant{ReauthToken: "grant-9"}}
	coord := reauth.NewCoordinator(prompter, nil)

	var ack *models.EmailChangeAck
	err := coord.Do(context.Background(), func(ctx context.Context, reauthToken string) error {
		var opErr error
		ack, opErr = c.StartEmailChange(ctx, &models.EmailChangeRequest{
			NewEmail:    "New@Example.com",
			ReauthToken: reauthToken,
		})
		return opErr
	})
	require.NoError(t, err)
	require.NotNil(t, ack)
	assert.Equal(t, 1, prompter.calls)
	assert.Equal(t, []string{"", "grant-9"}, attempts)
}
