package controllers

import (
	"net/http"

	"github.com/angelmondragon/pawfinderz-backend/api/middleware"
	"github.com/angelmondragon/pawfinderz-backend/api/responses"
	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
)

// requireActor resolves the authenticated caller or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (pkgAuth.Actor, bool) {
	actor := middleware.ActorFromContext(r.Context())
	if !actor.Authenticated() {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return pkgAuth.Actor{}, false
	}
	return actor, true
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

// actorOf returns the caller, anonymous when no token was presented.
func actorOf(r *http.Request) pkgAuth.Actor {
	return middleware.ActorFromContext(r.Context())
}
