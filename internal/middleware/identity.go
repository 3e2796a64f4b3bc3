package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/model"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

type actorKey struct{}

// Identity attaches the caller forwarded by the gateway to the request
// context. A request without X-User-ID is a guest regardless of its role header.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := model.GuestActor()
		if userID := strings.TrimSpace(r.Header.Get(headerUserID)); userID != "" {
			actor = model.Actor{
				UserID: userID,
				Role:   model.ParseRole(strings.TrimSpace(r.Header.Get(headerUserRole))),
			}
			// an authenticated caller without a role header is a customer
			if actor.Role == model.RoleGuest {
				actor.Role = model.RoleCustomer
			}
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the caller attached by Identity, or a guest.
func ActorFromContext(ctx context.Context) model.Actor {
	if actor, ok := ctx.Value(actorKey{}).(model.Actor); ok {
		return actor
	}
	return model.GuestActor()
}
