// Package httputil writes the JSON wire envelope shared by the stub server
// and understood by the transport's error decoder.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "moviesnow/pkg/domain-errors"
)

// ErrorBody is the wire shape of an API error.
type ErrorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status. A nil v writes 204 No Content.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders a coded error as the standard envelope. Internal errors
// omit the description so server details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := ErrorBody{
		Error:     string(code),
		RequestID: dErrors.RequestIDOf(err),
	}
	if code != dErrors.CodeInternal {
		var e *dErrors.Error
		if errors.As(err, &e) {
			body.Description = e.Message
		}
	}
	if code == dErrors.CodeStepUpRequired {
		w.Header().Set("X-Reauth-Required", "1")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.HTTPStatus(code))
	_ = json.NewEncoder(w).Encode(body)
}
