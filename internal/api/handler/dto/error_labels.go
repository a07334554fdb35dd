package dto

import "net/http"

var errorLabels = map[int]string{
	http.StatusBadRequest:           "Bad Request",
	http.StatusNotFound:             "Not Found",
	http.StatusMethodNotAllowed:     "Method not Allowed",
	http.StatusUnsupportedMediaType: "Unsupported media type",
	http.StatusTooManyRequests:      "Too Many Requests",
	http.StatusInternalServerError:  "Internal Server Error",
}

// NewErrorResponse builds the error body for status. Unlisted statuses fall back to the standard
// reason phrase.
func NewErrorResponse(status int, message string) ErrorResponse {
	label, ok := errorLabels[status]
	if !ok {
		label = http.StatusText(status)
	}
	return ErrorResponse{Status: status, Error: label, Message: message}
}
