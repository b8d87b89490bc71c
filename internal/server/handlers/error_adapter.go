package handlers

import (
	"net/http"

	apperrors "github.com/claimlens/claimlens/internal/errors"
)

// Handlers pass engine errors through as-is; the responder classifies them.
var defaultHTTPErrorResponder = apperrors.RespondWithAnalysisError

var httpErrorResponder = defaultHTTPErrorResponder

// SetHTTPErrorResponder lets the server package inject its error handler.
// A nil responder restores the default.
func SetHTTPErrorResponder(responder func(http.ResponseWriter, *http.Request, error)) {
	if responder == nil {
		httpErrorResponder = defaultHTTPErrorResponder
		return
	}
	httpErrorResponder = responder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}
