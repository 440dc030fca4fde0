package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-designer/internal/design"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/redislock"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest        = "bad_request"
	ErrCodeNotFound          = "not_found"
	ErrCodeUnauthorized      = "unauthorised"
	ErrCodeForbidden         = "forbidden"
	ErrCodeConflict          = "conflict"
	ErrCodeInternal          = "internal_error"
	ErrCodeValidation        = "validation_error"
	ErrCodeTooLarge          = "request_too_large"
	ErrCodeBusy              = "busy"
	ErrCodeDuplicateAddress  = "duplicate_address"
	ErrCodeAddressExhausted  = "address_exhausted"
	ErrCodeCapacityExceeded  = "capacity_exceeded"
	ErrCodeIncompatibleKind  = "incompatible_kind"
	ErrCodeDanglingReference = "dangling_reference"
	ErrCodeMalformedDocument = "malformed_document"
	ErrCodeModuleInUse       = "module_in_use"
)

// errorMapping maps a sentinel error to its HTTP status and code.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{design.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{design.ErrInvalid, http.StatusBadRequest, ErrCodeValidation},
	{design.ErrMalformedDocument, http.StatusBadRequest, ErrCodeMalformedDocument},
	{design.ErrDuplicateName, http.StatusConflict, ErrCodeConflict},
	{design.ErrDuplicateAddress, http.StatusConflict, ErrCodeDuplicateAddress},
	{design.ErrAddressExhausted, http.StatusConflict, ErrCodeAddressExhausted},
	{design.ErrCapacityExceeded, http.StatusConflict, ErrCodeCapacityExceeded},
	{design.ErrModuleInUse, http.StatusConflict, ErrCodeModuleInUse},
	{design.ErrIncompatibleKind, http.StatusUnprocessableEntity, ErrCodeIncompatibleKind},
	{design.ErrDanglingReference, http.StatusUnprocessableEntity, ErrCodeDanglingReference},
	{redislock.ErrBusy, http.StatusServiceUnavailable, ErrCodeBusy},
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeServiceError maps an error from the project service to a response.
// Unknown errors become a 500 without detail.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
		return
	}
	writeInternalError(w, "internal server error")
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// decodeJSON reads the request body into v. It writes the error response
// and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
			return false
		}
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}
