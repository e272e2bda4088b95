package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse is the standard error body returned by all gateway routes.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// WriteError writes a standardized JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, code, message, traceID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
		TraceID: traceID,
	})
}

// WriteSuccess writes a standardized JSON success response.
func WriteSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// chainErrorStatus maps the error-kind prefix rendered by the chaincode into
// an HTTP status. Unknown kinds (infrastructure failures, SDK errors) map to
// 500.
var chainErrorStatus = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"UNAUTHORIZED":         http.StatusForbidden,
	"DUPLICATE_KEY":        http.StatusConflict,
	"INVALID_ROLE":         http.StatusBadRequest,
	"INVALID_FIELD":        http.StatusBadRequest,
	"INSUFFICIENT_BALANCE": http.StatusBadRequest,
	"SELF_TRADE":           http.StatusBadRequest,
}

// WriteChainError translates a chaincode invocation error into an HTTP
// response, recovering the error kind from the message prefix.
func WriteChainError(w http.ResponseWriter, err error) {
	message := err.Error()

	// Fabric wraps the chaincode response; the kind prefix survives inside
	// the message.
	for kind, status := range chainErrorStatus {
		if strings.Contains(message, kind+": ") {
			WriteError(w, status, strings.ToLower(kind), message, "")
			return
		}
	}
	WriteError(w, http.StatusInternalServerError, "chain_error", message, "")
}
