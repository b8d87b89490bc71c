package server

import (
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/go-chi/chi/v5"

	apperrors "github.com/claimlens/claimlens/internal/errors"
)

// HandleError writes err as a JSON error envelope. Analysis failures are
// classified by apperrors.EnvelopeFor, and the matched chi route pattern is
// recorded so logs for /v1/analyses/{id} group under one endpoint.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	envelope := apperrors.EnvelopeFor(r, err)
	if route := routePattern(r); route != "" {
		envelope = withRoute(envelope, route)
	}
	apperrors.RespondWithEnvelope(w, r, envelope)
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

func withRoute(envelope *errors.ErrorEnvelope, route string) *errors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}
	merged := make(map[string]interface{}, len(envelope.Context)+1)
	for k, v := range envelope.Context {
		merged[k] = v
	}
	merged["route"] = route
	if updated, err := envelope.WithContext(merged); err == nil {
		return updated
	}
	return envelope
}
