package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/service"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

type MessageResponse struct {
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// writeError maps service errors onto the API's status codes. notFound is
// the message used for domain.ErrNotFound, which depends on the resource.
func writeError(w http.ResponseWriter, log *zap.Logger, err error, notFound string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Message: validationErr.Message,
			Errors:  validationErr.Errors,
		})
	case errors.Is(err, errInvalidBody):
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnprocessableEntity, "Invalid credentials")
	case errors.Is(err, domain.ErrDuplicateUsername):
		writeMessage(w, http.StatusConflict, "Username already exists")
	case errors.Is(err, domain.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrUpstream):
		log.Warn("upstream failure", zap.Error(err))
		writeMessage(w, http.StatusBadGateway, "Book search unavailable")
	default:
		log.Error("unhandled error", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads the request body into v. An empty body decodes as {} so
// that missing fields are reported by validation. Malformed JSON yields
// errInvalidBody and a wrong value type yields a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return service.DecodeError(err)
	}
	return errInvalidBody
}
