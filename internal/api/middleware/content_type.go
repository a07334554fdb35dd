package middleware

import (
	"log/slog"
	"mime"
	"net/http"

	"customer-service/internal/api/handler"
)

const (
	mediaTypeJSON     = "application/json"
	headerContentType = "Content-Type"
)

// RequireJSON rejects requests whose media type is not application/json before the body is read.
// Parameters such as charset are accepted.
func RequireJSON(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType := r.Header.Get(headerContentType)
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != mediaTypeJSON {
				logger.WarnContext(r.Context(), "Rejected request with unsupported media type",
					"content_type", contentType, "path", r.URL.Path)
				handler.UnsupportedMediaType(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
