package ports

import (
	"context"

	"github.com/tableserve/pos-portal/internal/core/domain"
)

// CategoryView is the category projection served by the portal.
type CategoryView struct {
	ID           string
	Name         string
	Description  string
	DisplayOrder int
	Icon         string
	// ProductCount counts only the products visible to the requesting actor,
	// not the raw total.
	ProductCount int
}

// ProductView is the product projection served by the portal.
type ProductView struct {
	ID          string
	CategoryID  string
	Name        string
	SKU         string
	Description string
	Price       float64
	IsAvailable bool
}

// MenuSection is one category of the full menu with its visible products.
type MenuSection struct {
	Category     CategoryView
	Products     []ProductView
	ProductCount int
}

// MenuResult is returned by GetMenu.
type MenuResult struct {
	DeviceCount   int
	CategoryCount int
	Sections      []MenuSection
}

// CategoriesResult is returned by GetCategories.
type CategoriesResult struct {
	Count      int
	Categories []CategoryView
}

// ProductsResult is returned by GetProducts.
type ProductsResult struct {
	Count    int
	Products []ProductView
}

// DevicesResult is returned by GetDevices.
type DevicesResult struct {
	Count   int
	Devices []DeviceSnapshot
}

// SearchResult is returned by Search.
type SearchResult struct {
	Query    string
	Count    int
	Products []ProductView
}

// PortalService serves the menu slice an actor is entitled to see. Every
// operation resolves the effective device set fresh from the claims so that
// concurrent heartbeat and activation changes are observed immediately.
type PortalService interface {
	GetMenu(ctx context.Context, claims domain.Claims) (*MenuResult, error)
	GetCategories(ctx context.Context, claims domain.Claims) (*CategoriesResult, error)
	// GetProducts optionally narrows to one category. A category that exists
	// but is not visible to the actor yields an empty result, not an error.
	GetProducts(ctx context.Context, claims domain.Claims, categoryID string) (*ProductsResult, error)
	GetDevices(ctx context.Context, claims domain.Claims) (*DevicesResult, error)
	// Search matches the trimmed query case-insensitively against product
	// name or SKU. Queries shorter than two characters fail validation.
	Search(ctx context.Context, claims domain.Claims, query string) (*SearchResult, error)
}
