package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/danscan/githubdownfall.com/internal/pkg/ctxlog"
)

// ErrorMapping pairs a sentinel error with the HTTP status it should
// produce on the read API.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, uses err.Error()
}

// HandleError writes the mapped response for err. Unmapped errors are
// logged with the request-scoped logger and answered with a generic 500
// so internal details never leak to clients.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Error) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			Error(w, m.Status, msg)
			return
		}
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
