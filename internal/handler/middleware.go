package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/pkg/response"
)

// Authenticator turns a bearer token into the calling actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
}

type actorKey struct{}

// RequireAuth rejects requests without a valid bearer token and stores the actor in the request context.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				response.Unauthorized(w, "missing bearer token")
				return
			}

			actor, err := auth.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				response.FromError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by RequireAuth.
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// actor fetches the caller, writing a 401 when the route was mounted without RequireAuth.
func actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	a, ok := ActorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
	}
	return a, ok
}
