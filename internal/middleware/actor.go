package middleware

import (
	"context"
	"net/http"

	"portal/internal/domain"
)

// ActorInfo identifies the authenticated user acting on a request.
// Authentication itself happens upstream (gateway/session layer); this
// middleware only trusts the identity headers that layer injects.
type ActorInfo struct {
	ID          string
	Role        domain.Role
	DisplayName string
}

type actorContextKey struct{}

// Actor extracts the acting user from the X-Actor-* headers. Requests without
// a valid role still pass through; role-gated handlers reject them.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := ActorInfo{
			ID:          r.Header.Get("X-Actor-Id"),
			DisplayName: r.Header.Get("X-Actor-Name"),
		}
		if role, ok := domain.ParseRole(r.Header.Get("X-Actor-Role")); ok {
			info.Role = role
		}
		ctx := context.WithValue(r.Context(), actorContextKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext returns the acting user recorded by Actor. The boolean is
// false when the request carried no usable identity.
func ActorFromContext(ctx context.Context) (ActorInfo, bool) {
	info, ok := ctx.Value(actorContextKey{}).(ActorInfo)
	if !ok || info.ID == "" || info.Role == "" {
		return ActorInfo{}, false
	}
	return info, true
}
