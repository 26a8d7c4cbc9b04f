package policy

import (
	"context"

	"github.com/diewo77/jurigo/auth"
	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/models"
)

// SessionGate resolves the session user put in the context by
// auth.Manager.Middleware to an identity with its current role.
type SessionGate struct {
	profiles gate.ProfileResolver[uint]
}

func NewSessionGate(profiles gate.ProfileResolver[uint]) *SessionGate {
	return &SessionGate{profiles: profiles}
}

func (g *SessionGate) Resolve(ctx context.Context) (lifecycle.Identity, bool) {
	uid, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return lifecycle.Identity{}, false
	}
	profile, err := g.profiles.Resolve(ctx, uid)
	if err != nil || profile == nil {
		return lifecycle.Identity{}, false
	}
	return lifecycle.Identity{UserID: uid, Role: models.Role(profile.Name())}, true
}
