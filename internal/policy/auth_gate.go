package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/httpx"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"gorm.io/gorm"
)

// AuthGate is the central authorization point: it resolves sessions to
// identities and checks them against the role gate.
type AuthGate struct {
	Gate          *gate.HybridGate[lifecycle.Identity]
	CacheResolver *gate.CachedResolver[uint]
	Sessions      *SessionGate
}

// NewAuthGate wires the users table, a role cache of cacheTTL and the
// ownership policies.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[uint](NewUserRoleResolver(db), cacheTTL)
	return &AuthGate{
		Gate:          NewGate(),
		CacheResolver: cached,
		Sessions:      NewSessionGate(cached),
	}
}

// Identity resolves the caller of the request.
func (ag *AuthGate) Identity(ctx context.Context) (lifecycle.Identity, bool) {
	return ag.Sessions.Resolve(ctx)
}

// UserExists reports whether uid still maps to an account. It backs
// auth.Manager's user verifier.
func (ag *AuthGate) UserExists(ctx context.Context, uid uint) bool {
	p, err := ag.CacheResolver.Resolve(ctx, uid)
	return err == nil && p != nil
}

// RequirePermission returns middleware that checks a profile permission.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := ag.Identity(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if !ag.Gate.CanProfile(r.Context(), id, action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that only allows the super permission.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := ag.Identity(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			profile := ProfileForRole(id.Role)
			if profile == nil || !profile.HasPermission(gate.PermissionSuperAdmin) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
