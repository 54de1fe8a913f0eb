package domain

// Role is the closed set of actor roles on the platform.
type Role string

const (
	RolePlatformOwner Role = "platform_owner"
	RoleTenantAdmin   Role = "tenant_admin"
	RoleBranchManager Role = "branch_manager"
	RoleCashier       Role = "cashier"
)

// PortalRole reports whether the role is served by the POS portal pipeline.
// Platform owners and tenant admins go through the admin endpoints instead.
func (r Role) PortalRole() bool {
	return r == RoleBranchManager || r == RoleCashier
}

// Claims is the verified identity bundle carried by a bearer token.
type Claims struct {
	Role      Role
	TenantID  string
	BranchID  string
	DeviceIDs []string
}

// ActorContext is the immutable scoping context resolved from claims. It is
// built fresh per request and never persisted.
type ActorContext struct {
	Role            Role
	TenantID        string
	BranchID        string
	AssignedDevices DeviceSet
}

// NewActorContext validates the claim bundle and freezes it into an
// ActorContext. Admin roles are rejected with an AuthorizationError: the
// portal pipeline never scopes for them. Branch-bound roles without a branch
// claim are rejected with a ValidationError.
func NewActorContext(c Claims) (*ActorContext, error) {
	switch c.Role {
	case RolePlatformOwner, RoleTenantAdmin:
		return nil, &AuthorizationError{Reason: "role " + string(c.Role) + " uses the admin endpoints, not the POS portal"}
	case RoleBranchManager, RoleCashier:
		// branch-bound roles, validated below
	default:
		return nil, &AuthorizationError{Reason: "unknown role"}
	}

	if c.TenantID == "" {
		return nil, &ValidationError{Reason: "missing tenant claim"}
	}
	if c.BranchID == "" {
		return nil, &ValidationError{Reason: "role " + string(c.Role) + " requires a branch claim"}
	}

	return &ActorContext{
		Role:            c.Role,
		TenantID:        c.TenantID,
		BranchID:        c.BranchID,
		AssignedDevices: NewDeviceSet(c.DeviceIDs...),
	}, nil
}
