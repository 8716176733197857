package response

import (
	"encoding/json"
	"net/http"

	"github.com/danslapman/stubbery/internal/apperr"
)

// ErrorResponse is the standard error format
type ErrorResponse struct {
	Errors []Error `json:"errors"`
}

// Error represents a single error
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes matching mountebank
const (
	ErrCodeBadData          = "bad data"
	ErrCodeResourceConflict = "resource conflict"
	ErrCodeNoSuchResource   = "no such resource"
	ErrCodeInvalidJSON      = "invalid JSON"
	ErrCodeInvalidInjection = "invalid injection"
)

// WriteError writes an error response
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Errors: []Error{{Code: code, Message: message}},
	}

	json.NewEncoder(w).Encode(resp)
}

// WriteAppError writes err using the HTTP status and wire code apperr.Kind
// maps onto, falling back to a generic 500 for errors that aren't
// *apperr.Error (e.g. an unexpected panic recovery).
func WriteAppError(w http.ResponseWriter, err error) {
	if ae, ok := err.(*apperr.Error); ok {
		WriteError(w, ae.Kind.HTTPStatus(), ae.Kind.Code(), ae.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, ErrCodeBadData, err.Error())
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}
