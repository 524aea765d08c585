package devstub_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviesnow/internal/devstub"
	"moviesnow/pkg/testutil"
)

func TestHandlers_StrictDecode(t *testing.T) {
	router := devstub.New().Router()

	testutil.Given(t, "a signup payload with an unknown field", func(t *testing.T) {
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/auth/signup",
			`{"email":"a@example.com","password":"Str0ng!pass","favourite_movie":"Heat"}`)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	testutil.Given(t, "a signup payload failing local validation rules", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/signup", map[string]string{
			"email":    "a@example.com",
			"password": "short",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}

func TestHandlers_ErrorEnvelopeEchoesRequestID(t *testing.T) {
	router := devstub.New().Router()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "Str0ng!pass",
	})
	req.Header.Set("X-Request-ID", "req-test-1")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	body := testutil.UnmarshalErrorResponse(t, rr)
	assert.Equal(t, "unauthorized", body.Error)
	assert.Equal(t, "req-test-1", body.RequestID)
}

func TestHandlers_StepUpSignalsBothChannels(t *testing.T) {
	router := devstub.New().Router()

	// Create an account and grab its access token.
	signupReq := testutil.NewJSONRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"email":    "a@example.com",
		"password": "Str0ng!pass",
	})
	signupRR := testutil.DoRequest(router, signupReq)
	testutil.AssertStatus(t, signupRR, http.StatusCreated)
	tokens := testutil.UnmarshalResponse[struct {
		AccessToken string `json:"access_token"`
	}](t, signupRR)
	require.NotEmpty(t, tokens.AccessToken)

	// Email change without a grant must fail with the wire code and the
	// header, so clients can detect step-up either way.
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/email/change", map[string]string{
		"new_email": "b@example.com",
	})
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "reauth_required")
	assert.NotEmpty(t, rr.Header().Get("X-Reauth-Required"))
}

func TestHandlers_MissingBearer(t *testing.T) {
	router := devstub.New().Router()
	req := testutil.NewRequest(t, http.MethodGet, "/auth/sessions")
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}
