package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"customer-service/internal/api/handler/dto"
	"customer-service/internal/pkg/apperrors"
)

const (
	MsgNotFound          = "The requested URL was not found on the server. If you entered the URL manually please check your spelling and try again."
	MsgMethodNotAllowed  = "The method is not allowed for the requested URL."
	MsgUnsupportedMedia  = "Content-Type must be application/json"
	msgInternalError     = "An unexpected error occurred."
	msgResourceNotFound  = "Resource not found."
	maxRequestBodyBytes  = 1 << 20
	contentTypeJSON      = "application/json"
	headerContentType    = "Content-Type"
	headerLocation       = "Location"
	headerForwardedProto = "X-Forwarded-Proto"
)

// decodeJSON decodes the body into a generic JSON value. Validation of its shape belongs to the
// domain, so the caller only learns whether the body parsed at all.
func decodeJSON(r *http.Request) (any, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("no request body")
	}
	defer r.Body.Close()

	var v any
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(&v); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		WriteError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	w.Write(response)
}

// WriteError writes the standard error body.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.NewErrorResponse(status, message))
}

func respondError(w http.ResponseWriter, err error) {
	status, message := http.StatusInternalServerError, msgInternalError
	var validationError *apperrors.ValidationError
	var notFoundError *apperrors.NotFoundError

	switch {
	case errors.As(err, &validationError):
		status, message = http.StatusBadRequest, validationError.Message
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &notFoundError):
		status, message = http.StatusNotFound, notFoundError.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, msgResourceNotFound
	case errors.Is(err, apperrors.ErrUnsupportedMediaType):
		status, message = http.StatusUnsupportedMediaType, MsgUnsupportedMedia
	case errors.Is(err, apperrors.ErrMethodNotAllowed):
		status, message = http.StatusMethodNotAllowed, MsgMethodNotAllowed
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	WriteError(w, status, message)
}

// baseURL is the absolute scheme and host the client used, honouring a TLS-terminating proxy.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get(headerForwardedProto); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// NotFound answers unknown paths, including customer paths whose id is not an integer.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, MsgNotFound)
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, apperrors.ErrMethodNotAllowed)
}

// UnsupportedMediaType answers write requests whose body is not declared as JSON.
func UnsupportedMediaType(w http.ResponseWriter, r *http.Request) {
	respondError(w, apperrors.ErrUnsupportedMediaType)
}
