package domain

import "time"

// DeviceStatus represents the lifecycle state of a POS terminal.
type DeviceStatus string

const (
	StatusOffline     DeviceStatus = "offline"
	StatusOnline      DeviceStatus = "online"
	StatusMaintenance DeviceStatus = "maintenance"
	StatusSuspended   DeviceStatus = "suspended"
)

// Device is a physical POS terminal registered to a branch.
//
// Invariant: Status == online requires IsActive == true. Transitions are
// applied through the device service with an optimistic version check, so a
// heartbeat racing a deactivate can never leave the document in an
// online-but-inactive state.
type Device struct {
	ID        string       `json:"id" bson:"_id"`
	TenantID  string       `json:"tenant_id" bson:"tenant_id"`
	BranchID  string       `json:"branch_id" bson:"branch_id"`
	Name      string       `json:"name" bson:"name"`
	Status    DeviceStatus `json:"status" bson:"status"`
	IsActive  bool         `json:"is_active" bson:"is_active"`
	LastSeen  *time.Time   `json:"last_seen,omitempty" bson:"last_seen,omitempty"`
	IPAddress string       `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	// Version backs the compare-and-set update; bumped on every write.
	Version int64 `json:"-" bson:"version"`
}

// IsOnline reports derived liveness: the stored status must be online and the
// last heartbeat younger than the liveness window. Staleness is detected
// lazily at read time; no background sweep rewrites the stored status, so a
// silent device simply stops reporting online once the window elapses.
func (d *Device) IsOnline(now time.Time, window time.Duration) bool {
	if d.Status != StatusOnline || d.LastSeen == nil {
		return false
	}
	return now.Sub(*d.LastSeen) < window
}
