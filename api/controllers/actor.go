package controllers

import (
	"net/http"

	"github.com/triplethreads/hubstock-backend/api/middleware"
	"github.com/triplethreads/hubstock-backend/api/responses"
	pkgAuth "github.com/triplethreads/hubstock-backend/pkg/auth"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"github.com/triplethreads/hubstock-backend/pkg/logger"
)

// requireActor pulls the authenticated identity seeded by the auth
// middleware, writing a 401 when the route was mounted without it.
func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (pkgAuth.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return pkgAuth.Actor{}, false
	}
	return actor, true
}
