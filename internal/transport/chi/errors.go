package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrsync/internal/domain"
)

// ErrorCode is a machine-readable error code in API responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeForbidden        ErrorCode = "forbidden"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeIndexNotFound    ErrorCode = "index_not_found"
	CodeInvalidQuery     ErrorCode = "invalid_query"
	CodeSolrError        ErrorCode = "solr_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrUnknownIndex, http.StatusNotFound, CodeIndexNotFound),
	sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
	sentinelHandler(domain.ErrNoItems, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrInvalidObject, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrInvalidOperation, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrRemoteSync, http.StatusBadGateway, CodeSolrError),
	sentinelHandler(domain.ErrRemoteQuery, http.StatusBadGateway, CodeSolrError),
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Caller mistakes keep their
// detail; remote failures collapse to the sentinel text.
func safeDomainMessage(err error) string {
	clientErrors := []error{
		domain.ErrUnknownIndex,
		domain.ErrInvalidQuery,
		domain.ErrNoItems,
		domain.ErrInvalidObject,
		domain.ErrInvalidOperation,
	}
	for _, s := range clientErrors {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	for _, s := range []error{domain.ErrRemoteSync, domain.ErrRemoteQuery} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func handleDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
