// Package httpx provides the flat JSON response envelope used by the
// lunch-vote API: successes are {ok:true, ...} and every error becomes
// {ok:false, error, code} regardless of where it originated.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the uniform error envelope.
type ErrorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK sends a success payload with status 200. The payload carries its
// own ok:true field.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Fail sends the error envelope. The HTTP status and the embedded code
// are always the same value.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg, Code: status})
}
