package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tableserve/pos-portal/internal/core/domain"
	"github.com/tableserve/pos-portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository with real compare-and-set semantics
// ---------------------------------------------------------------------------

type stubDeviceRepo struct {
	mu      sync.Mutex
	devices map[string]*domain.Device
	// forcedConflicts makes the next N Update calls lose the version race,
	// simulating a concurrent writer.
	forcedConflicts int
}

func newStubDeviceRepo(devices ...domain.Device) *stubDeviceRepo {
	r := &stubDeviceRepo{devices: make(map[string]*domain.Device)}
	for _, d := range devices {
		clone := d
		r.devices[d.ID] = &clone
	}
	return r
}

func (r *stubDeviceRepo) Get(_ context.Context, id, tenantID string) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	if tenantID != "" && d.TenantID != tenantID {
		return nil, domain.ErrDeviceNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDeviceRepo) FindByIDs(_ context.Context, tenantID string, ids []string) ([]domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Device
	for _, id := range ids {
		if d, ok := r.devices[id]; ok && d.TenantID == tenantID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubDeviceRepo) FindByBranch(_ context.Context, tenantID, branchID string, activeOnly bool) ([]domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Device
	for _, d := range r.devices {
		if d.TenantID != tenantID || d.BranchID != branchID {
			continue
		}
		if activeOnly && !d.IsActive {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (r *stubDeviceRepo) List(_ context.Context, tenantID string, status domain.DeviceStatus) ([]domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Device
	for _, d := range r.devices {
		if tenantID != "" && d.TenantID != tenantID {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (r *stubDeviceRepo) Update(_ context.Context, d *domain.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.devices[d.ID]
	if !ok {
		return domain.ErrDeviceNotFound
	}
	if r.forcedConflicts > 0 {
		r.forcedConflicts--
		cur.Version++ // the simulated concurrent writer bumps the version
		return domain.ErrVersionConflict
	}
	if cur.Version != d.Version {
		return domain.ErrVersionConflict
	}
	clone := *d
	clone.Version++
	r.devices[d.ID] = &clone
	return nil
}

type stubThrottle struct {
	allow bool
	err   error
}

func (t *stubThrottle) Allow(context.Context, string) (bool, error) { return t.allow, t.err }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var nopLogger = zerolog.Nop()

func inactiveDevice(id string) domain.Device {
	return domain.Device{
		ID:       id,
		TenantID: "t1",
		BranchID: "b1",
		Name:     "Counter 1",
		Status:   domain.StatusOffline,
		IsActive: false,
	}
}

func activeDevice(id string) domain.Device {
	now := time.Now().UTC()
	return domain.Device{
		ID:       id,
		TenantID: "t1",
		BranchID: "b1",
		Name:     "Counter 1",
		Status:   domain.StatusOnline,
		IsActive: true,
		LastSeen: &now,
	}
}

func newDeviceService(repo *stubDeviceRepo) *DeviceService {
	return NewDeviceService(repo, &stubThrottle{allow: true}, 5*time.Minute, nopLogger)
}

var adminScope = ports.AdminScope{Role: domain.RoleTenantAdmin, TenantID: "t1"}

// ---------------------------------------------------------------------------
// Lifecycle tests
// ---------------------------------------------------------------------------

func TestDeviceService_Activate(t *testing.T) {
	repo := newStubDeviceRepo(inactiveDevice("d1"))
	svc := newDeviceService(repo)

	snap, err := svc.Activate(context.Background(), adminScope, "d1")
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if snap.Status != domain.StatusOnline || !snap.IsActive {
		t.Fatalf("expected online+active, got %s active=%v", snap.Status, snap.IsActive)
	}
	if snap.LastSeen == nil {
		t.Fatalf("activate should stamp last_seen")
	}
	if !snap.IsOnline {
		t.Fatalf("freshly activated device should report online")
	}
}

func TestDeviceService_Activate_Idempotent(t *testing.T) {
	repo := newStubDeviceRepo(inactiveDevice("d1"))
	svc := newDeviceService(repo)

	first, err := svc.Activate(context.Background(), adminScope, "d1")
	if err != nil {
		t.Fatalf("first activate failed: %v", err)
	}
	second, err := svc.Activate(context.Background(), adminScope, "d1")
	if err != nil {
		t.Fatalf("second activate failed: %v", err)
	}
	if first.Status != second.Status || first.IsActive != second.IsActive || first.IsOnline != second.IsOnline {
		t.Fatalf("activate is not idempotent: %+v vs %+v", first, second)
	}
}

func TestDeviceService_Deactivate(t *testing.T) {
	repo := newStubDeviceRepo(activeDevice("d1"))
	svc := newDeviceService(repo)

	snap, err := svc.Deactivate(context.Background(), adminScope, "d1")
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if snap.Status != domain.StatusOffline || snap.IsActive {
		t.Fatalf("expected offline+inactive, got %s active=%v", snap.Status, snap.IsActive)
	}
}

func TestDeviceService_MaintenanceAndSuspend(t *testing.T) {
	repo := newStubDeviceRepo(activeDevice("d1"), activeDevice("d2"))
	svc := newDeviceService(repo)

	snap, err := svc.Maintenance(context.Background(), adminScope, "d1")
	if err != nil {
		t.Fatalf("maintenance failed: %v", err)
	}
	if snap.Status != domain.StatusMaintenance || snap.IsActive {
		t.Fatalf("maintenance should park the device as inactive, got %+v", snap)
	}

	snap, err = svc.Suspend(context.Background(), adminScope, "d2")
	if err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if snap.Status != domain.StatusSuspended || snap.IsActive {
		t.Fatalf("suspend should park the device as inactive, got %+v", snap)
	}
}

func TestDeviceService_TenantScoping(t *testing.T) {
	repo := newStubDeviceRepo(activeDevice("d1"))
	svc := newDeviceService(repo)

	otherTenant := ports.AdminScope{Role: domain.RoleTenantAdmin, TenantID: "t2"}
	if _, err := svc.Activate(context.Background(), otherTenant, "d1"); !errors.Is(err, domain.ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound across tenants, got %v", err)
	}

	// Platform owner scope is unfiltered.
	owner := ports.AdminScope{Role: domain.RolePlatformOwner}
	if _, err := svc.Activate(context.Background(), owner, "d1"); err != nil {
		t.Fatalf("platform owner activate failed: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Heartbeat tests
// ---------------------------------------------------------------------------

func TestDeviceService_Heartbeat(t *testing.T) {
	repo := newStubDeviceRepo(activeDevice("d1"))
	svc := newDeviceService(repo)

	snap, err := svc.Heartbeat(context.Background(), adminScope, "d1", "10.0.0.7")
	if err != nil {
		t.Fatalf("heartbeat failed: %v", err)
	}
	if snap.Status != domain.StatusOnline || !snap.IsOnline {
		t.Fatalf("heartbeat should leave the device online, got %+v", snap)
	}
	if snap.IPAddress != "10.0.0.7" {
		t.Fatalf("heartbeat should record the ip, got %q", snap.IPAddress)
	}
}

func TestDeviceService_Heartbeat_InactiveRejected(t *testing.T) {
	repo := newStubDeviceRepo(inactiveDevice("d1"))
	svc := newDeviceService(repo)

	_, err := svc.Heartbeat(context.Background(), adminScope, "d1", "")
	var scopeErr *domain.ScopeError
	if !errors.As(err, &scopeErr) {
		t.Fatalf("expected ScopeError for inactive device, got %v", err)
	}
}

func TestDeviceService_Heartbeat_ThrottledAnswersFromSnapshot(t *testing.T) {
	dev := activeDevice("d1")
	repo := newStubDeviceRepo(dev)
	svc := NewDeviceService(repo, &stubThrottle{allow: false}, 5*time.Minute, nopLogger)

	snap, err := svc.Heartbeat(context.Background(), adminScope, "d1", "")
	if err != nil {
		t.Fatalf("throttled heartbeat failed: %v", err)
	}
	if !snap.LastSeen.Equal(*dev.LastSeen) {
		t.Fatalf("throttled heartbeat must not move last_seen")
	}

	// The inactive check still applies when throttled.
	repo2 := newStubDeviceRepo(inactiveDevice("d2"))
	svc2 := NewDeviceService(repo2, &stubThrottle{allow: false}, 5*time.Minute, nopLogger)
	_, err = svc2.Heartbeat(context.Background(), adminScope, "d2", "")
	var scopeErr *domain.ScopeError
	if !errors.As(err, &scopeErr) {
		t.Fatalf("expected ScopeError, got %v", err)
	}
}

func TestDeviceService_Heartbeat_RetriesConflicts(t *testing.T) {
	repo := newStubDeviceRepo(activeDevice("d1"))
	repo.forcedConflicts = 2 // lose twice, then win
	svc := newDeviceService(repo)

	snap, err := svc.Heartbeat(context.Background(), adminScope, "d1", "")
	if err != nil {
		t.Fatalf("heartbeat should retry through conflicts: %v", err)
	}
	if snap.Status != domain.StatusOnline {
		t.Fatalf("expected online after retry, got %s", snap.Status)
	}
}

func TestDeviceService_Heartbeat_ExhaustedConflictsNeverError(t *testing.T) {
	repo := newStubDeviceRepo(activeDevice("d1"))
	repo.forcedConflicts = casAttempts + 1 // lose every attempt
	svc := newDeviceService(repo)

	snap, err := svc.Heartbeat(context.Background(), adminScope, "d1", "")
	if err != nil {
		t.Fatalf("lost heartbeat must not surface an error: %v", err)
	}
	if snap == nil {
		t.Fatalf("expected stored snapshot after lost write")
	}
}

func TestDeviceService_ConcurrentHeartbeatDeactivate(t *testing.T) {
	repo := newStubDeviceRepo(activeDevice("d1"))
	svc := newDeviceService(repo)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Heartbeat(context.Background(), adminScope, "d1", "")
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Deactivate(context.Background(), adminScope, "d1")
		}()
		wg.Wait()

		d, err := repo.Get(context.Background(), "d1", "t1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		// The invariant the CAS protects: never online while inactive.
		if d.Status == domain.StatusOnline && !d.IsActive {
			t.Fatalf("device left online while inactive")
		}

		if _, err := svc.Activate(context.Background(), adminScope, "d1"); err != nil {
			t.Fatalf("re-activate failed: %v", err)
		}
	}
}

func TestDeviceService_List(t *testing.T) {
	online := activeDevice("d1")
	parked := inactiveDevice("d2")
	parked.Status = domain.StatusMaintenance
	repo := newStubDeviceRepo(online, parked)
	svc := newDeviceService(repo)

	all, err := svc.List(context.Background(), adminScope, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(all))
	}

	maint, err := svc.List(context.Background(), adminScope, domain.StatusMaintenance)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(maint) != 1 || maint[0].ID != "d2" {
		t.Fatalf("status filter broken: %+v", maint)
	}
	if maint[0].IsOnline {
		t.Fatalf("maintenance device must not report online")
	}
}
