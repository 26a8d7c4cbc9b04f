package policy

import (
	"context"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/models"
)

// Profiles granted to each role. Admins hold the super permission; clients
// work on their own companies and documents, which the ownership policy
// narrows down per resource.
var (
	AdminProfile = gate.NewStaticProfile(1, string(models.RoleAdmin), gate.PermissionSuperAdmin)

	ClientProfile = gate.NewStaticProfile(2, string(models.RoleClient),
		gate.NewPermission(lifecycle.ResourceCompany, gate.ActionView),
		gate.NewPermission(lifecycle.ResourceCompany, gate.ActionUpdate),
		gate.NewPermission(lifecycle.ResourceCompany, gate.ActionList),
		gate.NewPermission(lifecycle.ResourceCompany, gate.ActionLink),
		gate.NewPermission(lifecycle.ResourceDocument, gate.ActionUpload),
		gate.NewPermission(lifecycle.ResourceDocument, gate.ActionCreate),
		gate.NewPermission(lifecycle.ResourceDocument, gate.ActionList),
		gate.NewPermission(lifecycle.ResourceDocument, gate.ActionView),
		gate.NewPermission(lifecycle.ResourceDocument, gate.ActionDelete),
	)
)

// ProfileForRole maps a role to its profile. Unknown roles get none.
func ProfileForRole(role models.Role) gate.Profile {
	switch role {
	case models.RoleAdmin:
		return AdminProfile
	case models.RoleClient:
		return ClientProfile
	default:
		return nil
	}
}

// RoleResolver resolves an identity to the profile of its role.
type RoleResolver struct{}

func (RoleResolver) Resolve(_ context.Context, id lifecycle.Identity) (gate.Profile, error) {
	return ProfileForRole(id.Role), nil
}

// NewGate builds the authorization gate used by the lifecycle controller:
// role permissions first, then ownership of companies and documents with an
// admin bypass.
func NewGate() *gate.HybridGate[lifecycle.Identity] {
	g := gate.NewHybridGate[lifecycle.Identity](RoleResolver{})
	owned := NewAdminBypassPolicy(NewOwnershipPolicy())
	g.Register(lifecycle.ResourceCompany, owned)
	g.Register(lifecycle.ResourceDocument, owned)
	return g
}
