package ports

import (
	"context"
	"time"

	"github.com/tableserve/pos-portal/internal/core/domain"
)

// AdminScope carries the tenant filter for admin-track device operations.
// TenantID is empty for platform owners (unscoped) and set to the caller's
// tenant for tenant admins.
type AdminScope struct {
	Role     domain.Role
	TenantID string
}

// DeviceSnapshot is the device view returned by lifecycle actions and device
// listings. IsOnline is derived from the stored status and last heartbeat age
// at response time.
type DeviceSnapshot struct {
	ID        string
	Name      string
	BranchID  string
	Status    domain.DeviceStatus
	IsActive  bool
	IsOnline  bool
	LastSeen  *time.Time
	IPAddress string
}

// HeartbeatPing is a single device ping from the batch ingestion endpoint.
type HeartbeatPing struct {
	DeviceID  string
	IPAddress string
}

// DeviceService owns device activation state and heartbeat timestamps.
type DeviceService interface {
	// Activate brings the device online from any status. Idempotent.
	Activate(ctx context.Context, scope AdminScope, deviceID string) (*DeviceSnapshot, error)
	// Deactivate takes the device offline and rejects further heartbeats
	// until reactivated. Idempotent.
	Deactivate(ctx context.Context, scope AdminScope, deviceID string) (*DeviceSnapshot, error)
	// Heartbeat records that the device is reachable. Fails with a ScopeError
	// when the device is inactive. Safe under concurrent calls; a lost race
	// is absorbed, never surfaced. Pings may be coalesced over a short
	// throttle window (1s, far below any liveness window): a coalesced ping
	// is answered from the stored snapshot without moving last-seen.
	Heartbeat(ctx context.Context, scope AdminScope, deviceID, ip string) (*DeviceSnapshot, error)
	// Maintenance and Suspend park the device; both behave like Deactivate
	// for scoping purposes.
	Maintenance(ctx context.Context, scope AdminScope, deviceID string) (*DeviceSnapshot, error)
	Suspend(ctx context.Context, scope AdminScope, deviceID string) (*DeviceSnapshot, error)
	// List returns device snapshots, optionally narrowed by stored status.
	List(ctx context.Context, scope AdminScope, status domain.DeviceStatus) ([]DeviceSnapshot, error)
}
