package policy

import (
	"context"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/internal/lifecycle"
)

// Ownable is implemented by resources that have an owner.
// Documents are checked through their parent company.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows the owner of a resource.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can checks if the user owns the resource. A nil resource (list, create)
// is left to the profile permissions. Resources that are not Ownable are
// denied, and so are unowned ones.
func (p *OwnershipPolicy) Can(_ context.Context, id lifecycle.Identity, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	owner := ownable.GetUserID()
	return owner != 0 && owner == id.UserID
}

// AdminBypassPolicy wraps another policy and always allows admins.
type AdminBypassPolicy struct {
	inner gate.Policy[lifecycle.Identity]
}

func NewAdminBypassPolicy(inner gate.Policy[lifecycle.Identity]) *AdminBypassPolicy {
	return &AdminBypassPolicy{inner: inner}
}

func (p *AdminBypassPolicy) Can(ctx context.Context, id lifecycle.Identity, action gate.Action, resource any) bool {
	if id.IsAdmin() {
		return true
	}
	return p.inner.Can(ctx, id, action, resource)
}
