package service

import "github.com/tableserve/pos-portal/internal/core/domain"

// unrestricted is the sentinel case: an empty restriction set means the
// entity is available on every device, never "restricted to nothing". Named
// explicitly so the empty set is not misread as an implicit falsy check.
func unrestricted(restrictions []string) bool {
	return len(restrictions) == 0
}

// CategoryVisible decides whether a category is shown to the actor given the
// effective device set. Pure and total: no I/O, no error paths.
func CategoryVisible(cat domain.Category, actor *domain.ActorContext, devices domain.DeviceSet) bool {
	if cat.TenantID != actor.TenantID || cat.BranchID != actor.BranchID {
		return false
	}
	if !cat.IsActive {
		return false
	}
	return unrestricted(cat.DeviceRestrictions) || devices.Intersects(cat.DeviceRestrictions)
}

// ProductVisible decides whether a product is shown to the actor. Branch
// scoping is transitive: a product is only evaluated inside a category that
// already passed CategoryVisible, so no branch check happens here.
func ProductVisible(p domain.Product, actor *domain.ActorContext, devices domain.DeviceSet) bool {
	if p.TenantID != actor.TenantID {
		return false
	}
	if !p.IsActive || !p.IsAvailable {
		return false
	}
	return unrestricted(p.DeviceRestrictions) || devices.Intersects(p.DeviceRestrictions)
}
