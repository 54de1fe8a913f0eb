package ports

import (
	"context"

	"github.com/tableserve/pos-portal/internal/core/domain"
)

// CatalogRepository reads per-request snapshots of the menu catalog. The
// catalog itself (tenants, branches, categories, products) is owned by the
// admin CRUD surface; the portal only ever reads it.
type CatalogRepository interface {
	// ListCategories returns all categories of the branch, active or not;
	// visibility filtering happens in the service layer.
	ListCategories(ctx context.Context, tenantID, branchID string) ([]domain.Category, error)

	// ListProducts returns the tenant's full product collection.
	ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error)

	// FindCategory retrieves one category scoped to the tenant. Returns
	// domain.ErrCategoryNotFound when absent.
	FindCategory(ctx context.Context, tenantID, categoryID string) (*domain.Category, error)
}
