package ports

import (
	"context"

	"github.com/tableserve/pos-portal/internal/core/domain"
)

// DeviceRepository defines persistence operations for POS devices.
type DeviceRepository interface {
	// Get retrieves a device by id. When tenantID is non-empty the query is
	// additionally filtered by tenant (admin-track scoping).
	Get(ctx context.Context, id string, tenantID string) (*domain.Device, error)

	// FindByIDs returns the devices among ids that belong to the tenant.
	// Missing ids are silently skipped.
	FindByIDs(ctx context.Context, tenantID string, ids []string) ([]domain.Device, error)

	// FindByBranch returns devices registered to the branch. With activeOnly
	// set, inactive devices are filtered out by the query.
	FindByBranch(ctx context.Context, tenantID, branchID string, activeOnly bool) ([]domain.Device, error)

	// List returns all devices visible to the tenant filter (empty = all
	// tenants), optionally narrowed by stored status.
	List(ctx context.Context, tenantID string, status domain.DeviceStatus) ([]domain.Device, error)

	// Update persists the device with an optimistic version check: the write
	// only applies if the stored version still matches d.Version, and bumps
	// the version. Returns domain.ErrVersionConflict when the check fails.
	Update(ctx context.Context, d *domain.Device) error
}
