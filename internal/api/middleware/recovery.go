package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/roomrank/internal/api/apierr"
	"github.com/mcoot/roomrank/internal/middleware"
)

// Recovery is panic recovery that answers with the API's JSON error body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
