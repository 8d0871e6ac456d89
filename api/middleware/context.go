package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	"github.com/angelmondragon/pawfinderz-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxRole      contextKey = "actor_role"
	ctxAccessID  contextKey = "access_id"
	ctxRequestID contextKey = "request_id"
	ctxTrace     contextKey = "request_trace"
)

// requestTrace is installed by Logging and filled by inner middleware, whose
// context changes are not visible to the outer handler.
type requestTrace struct {
	userID string
}

func traceFrom(ctx context.Context) *requestTrace {
	t, _ := ctx.Value(ctxTrace).(*requestTrace)
	return t
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the jti of the verified access token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext resolves the caller. Anonymous requests yield the zero Actor.
func ActorFromContext(ctx context.Context) pkgAuth.Actor {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return pkgAuth.Actor{}
	}
	return pkgAuth.Actor{UserID: id, Role: enums.UserRole(RoleFromContext(ctx))}
}

// WithActor injects the caller identity into the context.
func WithActor(ctx context.Context, actor pkgAuth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if t := traceFrom(ctx); t != nil {
		t.userID = actor.UserID.String()
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.UserID.String())
	return context.WithValue(ctx, ctxRole, string(actor.Role))
}
