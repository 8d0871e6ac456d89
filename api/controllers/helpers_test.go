package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/pawfinderz-backend/api/middleware"
	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
	"github.com/angelmondragon/pawfinderz-backend/pkg/types"
)

func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func asUser(req *http.Request, id uuid.UUID) *http.Request {
	actor := pkgAuth.Actor{UserID: id, Role: enums.UserRoleUser}
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var body types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return body
}
