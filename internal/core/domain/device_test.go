package domain

import (
	"testing"
	"time"
)

func TestDevice_IsOnline_WithinWindow(t *testing.T) {
	now := time.Now().UTC()
	seen := now.Add(-2 * time.Minute)
	d := Device{Status: StatusOnline, IsActive: true, LastSeen: &seen}

	if !d.IsOnline(now, 5*time.Minute) {
		t.Fatalf("expected device to be online")
	}
}

func TestDevice_IsOnline_DecaysWithoutWrite(t *testing.T) {
	now := time.Now().UTC()
	window := 5 * time.Minute
	seen := now.Add(-(window + time.Second))
	// Stored status still reads online; liveness is derived, not stored.
	d := Device{Status: StatusOnline, IsActive: true, LastSeen: &seen}

	if d.IsOnline(now, window) {
		t.Fatalf("expected stale device to report offline")
	}
}

func TestDevice_IsOnline_RequiresOnlineStatus(t *testing.T) {
	now := time.Now().UTC()
	seen := now.Add(-time.Second)

	for _, status := range []DeviceStatus{StatusOffline, StatusMaintenance, StatusSuspended} {
		d := Device{Status: status, LastSeen: &seen}
		if d.IsOnline(now, 5*time.Minute) {
			t.Fatalf("status %s should never report online", status)
		}
	}
}

func TestDevice_IsOnline_NeverSeen(t *testing.T) {
	d := Device{Status: StatusOnline, IsActive: true}
	if d.IsOnline(time.Now().UTC(), 5*time.Minute) {
		t.Fatalf("device with no heartbeat should report offline")
	}
}
