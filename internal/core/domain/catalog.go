package domain

import "sort"

// DeviceSet is an immutable-by-convention set of device identifiers. The
// effective device set an actor's queries are scoped to is computed once per
// request as a concrete value, never as a lazily joined relation.
type DeviceSet map[string]struct{}

// NewDeviceSet builds a DeviceSet from the given ids, dropping duplicates.
func NewDeviceSet(ids ...string) DeviceSet {
	s := make(DeviceSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s DeviceSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Intersects reports whether any of the given ids is in the set.
func (s DeviceSet) Intersects(ids []string) bool {
	for _, id := range ids {
		if s.Has(id) {
			return true
		}
	}
	return false
}

func (s DeviceSet) Len() int { return len(s) }

// IDs returns the members in sorted order.
func (s DeviceSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Category groups products on the menu of one branch.
//
// DeviceRestrictions lists the POS devices the category is available on. An
// empty list is the "unrestricted" sentinel: available on every device in the
// branch, never "restricted to nothing".
type Category struct {
	ID                 string   `json:"id" bson:"_id"`
	TenantID           string   `json:"tenant_id" bson:"tenant_id"`
	BranchID           string   `json:"branch_id" bson:"branch_id"`
	Name               string   `json:"name" bson:"name"`
	Description        string   `json:"description,omitempty" bson:"description,omitempty"`
	DisplayOrder       int      `json:"display_order" bson:"display_order"`
	Icon               string   `json:"icon,omitempty" bson:"icon,omitempty"`
	DeviceRestrictions []string `json:"device_restrictions,omitempty" bson:"device_restrictions,omitempty"`
	IsActive           bool     `json:"is_active" bson:"is_active"`
}

// Product is a sellable menu item. It carries no branch reference of its own:
// branch scope is inherited through its category, and the product is only
// ever evaluated inside a category that already passed the category predicate.
type Product struct {
	ID                 string   `json:"id" bson:"_id"`
	TenantID           string   `json:"tenant_id" bson:"tenant_id"`
	CategoryID         string   `json:"category_id" bson:"category_id"`
	Name               string   `json:"name" bson:"name"`
	SKU                string   `json:"sku" bson:"sku"`
	Description        string   `json:"description,omitempty" bson:"description,omitempty"`
	Price              float64  `json:"price" bson:"price"`
	DeviceRestrictions []string `json:"device_restrictions,omitempty" bson:"device_restrictions,omitempty"`
	IsActive           bool     `json:"is_active" bson:"is_active"`
	IsAvailable        bool     `json:"is_available" bson:"is_available"`
}
