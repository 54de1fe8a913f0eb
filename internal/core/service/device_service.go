package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tableserve/pos-portal/internal/api/metrics"
	"github.com/tableserve/pos-portal/internal/core/domain"
	"github.com/tableserve/pos-portal/internal/core/ports"
)

// casAttempts bounds the retry loop on version conflicts. Exhaustion is
// resolved as last-write-wins, never as a caller-visible error.
const casAttempts = 3

// HeartbeatThrottle coalesces heartbeat writes (Redis). Allow reports whether
// a persisted heartbeat for the device is due; a denied ping is answered from
// the stored snapshot without touching the database.
type HeartbeatThrottle interface {
	Allow(ctx context.Context, deviceID string) (bool, error)
}

// DeviceService owns device activation state and heartbeat timestamps.
type DeviceService struct {
	repo     ports.DeviceRepository
	throttle HeartbeatThrottle
	window   time.Duration
	log      zerolog.Logger
}

func NewDeviceService(repo ports.DeviceRepository, throttle HeartbeatThrottle, livenessWindow time.Duration, log zerolog.Logger) *DeviceService {
	if livenessWindow <= 0 {
		livenessWindow = 5 * time.Minute
	}
	return &DeviceService{repo: repo, throttle: throttle, window: livenessWindow, log: log}
}

// Activate brings the device online from any status and stamps a heartbeat.
func (s *DeviceService) Activate(ctx context.Context, scope ports.AdminScope, deviceID string) (*ports.DeviceSnapshot, error) {
	return s.transition(ctx, scope, deviceID, "activate", func(d *domain.Device) error {
		now := time.Now().UTC()
		d.IsActive = true
		d.Status = domain.StatusOnline
		d.LastSeen = &now
		return nil
	})
}

// Deactivate takes the device offline. Heartbeats are rejected until the
// device is reactivated.
func (s *DeviceService) Deactivate(ctx context.Context, scope ports.AdminScope, deviceID string) (*ports.DeviceSnapshot, error) {
	return s.transition(ctx, scope, deviceID, "deactivate", func(d *domain.Device) error {
		d.IsActive = false
		d.Status = domain.StatusOffline
		return nil
	})
}

// Maintenance parks the device for servicing. Scoping treats it as inactive.
func (s *DeviceService) Maintenance(ctx context.Context, scope ports.AdminScope, deviceID string) (*ports.DeviceSnapshot, error) {
	return s.transition(ctx, scope, deviceID, "maintenance", func(d *domain.Device) error {
		d.IsActive = false
		d.Status = domain.StatusMaintenance
		return nil
	})
}

// Suspend blocks the device. Scoping treats it as inactive.
func (s *DeviceService) Suspend(ctx context.Context, scope ports.AdminScope, deviceID string) (*ports.DeviceSnapshot, error) {
	return s.transition(ctx, scope, deviceID, "suspend", func(d *domain.Device) error {
		d.IsActive = false
		d.Status = domain.StatusSuspended
		return nil
	})
}

// Heartbeat records that the device is reachable, refreshing status and
// last-seen. An inactive device rejects the ping with a ScopeError.
func (s *DeviceService) Heartbeat(ctx context.Context, scope ports.AdminScope, deviceID, ip string) (*ports.DeviceSnapshot, error) {
	allowed := true
	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, deviceID)
		if err != nil {
			s.log.Warn().Err(err).Str("device_id", deviceID).Msg("heartbeat throttle check failed, writing anyway")
		} else {
			allowed = ok
		}
	}

	if !allowed {
		d, err := s.repo.Get(ctx, deviceID, scope.TenantID)
		if err != nil {
			return nil, err
		}
		if !d.IsActive {
			metrics.HeartbeatsTotal.WithLabelValues("rejected").Inc()
			return nil, &domain.ScopeError{Reason: "device inactive"}
		}
		metrics.HeartbeatsTotal.WithLabelValues("throttled").Inc()
		return s.snapshot(d), nil
	}

	snap, err := s.transition(ctx, scope, deviceID, "heartbeat", func(d *domain.Device) error {
		if !d.IsActive {
			return &domain.ScopeError{Reason: "device inactive"}
		}
		now := time.Now().UTC()
		d.Status = domain.StatusOnline
		d.LastSeen = &now
		if ip != "" {
			d.IPAddress = ip
		}
		return nil
	})
	if err != nil {
		var scopeErr *domain.ScopeError
		if errors.As(err, &scopeErr) {
			metrics.HeartbeatsTotal.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	metrics.HeartbeatsTotal.WithLabelValues("applied").Inc()
	return snap, nil
}

// List returns device snapshots for the admin scope, optionally narrowed by
// stored status. Liveness is derived per device at response time.
func (s *DeviceService) List(ctx context.Context, scope ports.AdminScope, status domain.DeviceStatus) ([]ports.DeviceSnapshot, error) {
	devices, err := s.repo.List(ctx, scope.TenantID, status)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	snapshots := make([]ports.DeviceSnapshot, 0, len(devices))
	for i := range devices {
		snapshots = append(snapshots, *s.snapshot(&devices[i]))
	}
	return snapshots, nil
}

// transition applies mutate to the device under a bounded compare-and-set
// loop. A mutate error aborts immediately (precondition failure, e.g.
// heartbeat on an inactive device). When all attempts lose the version race
// the write is dropped as last-write-wins and the stored state is returned.
func (s *DeviceService) transition(ctx context.Context, scope ports.AdminScope, deviceID, action string, mutate func(*domain.Device) error) (*ports.DeviceSnapshot, error) {
	for attempt := 0; attempt < casAttempts; attempt++ {
		d, err := s.repo.Get(ctx, deviceID, scope.TenantID)
		if err != nil {
			return nil, err
		}

		if err := mutate(d); err != nil {
			return nil, err
		}

		err = s.repo.Update(ctx, d)
		if err == nil {
			metrics.DeviceTransitionsTotal.WithLabelValues(action).Inc()
			s.log.Info().
				Str("device_id", deviceID).
				Str("action", action).
				Str("status", string(d.Status)).
				Bool("is_active", d.IsActive).
				Msg("device transition applied")
			return s.snapshot(d), nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("%s device: %w", action, err)
		}
		metrics.CASConflictsTotal.WithLabelValues(action).Inc()
	}

	// Lost every race: another writer is actively transitioning the device.
	// Last write wins; answer from whatever state that writer left behind.
	if action == "heartbeat" {
		metrics.HeartbeatsTotal.WithLabelValues("lost").Inc()
	}
	s.log.Warn().Str("device_id", deviceID).Str("action", action).Msg("device write lost to concurrent transition")

	d, err := s.repo.Get(ctx, deviceID, scope.TenantID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(d), nil
}

func (s *DeviceService) snapshot(d *domain.Device) *ports.DeviceSnapshot {
	return &ports.DeviceSnapshot{
		ID:        d.ID,
		Name:      d.Name,
		BranchID:  d.BranchID,
		Status:    d.Status,
		IsActive:  d.IsActive,
		IsOnline:  d.IsOnline(time.Now().UTC(), s.window),
		LastSeen:  d.LastSeen,
		IPAddress: d.IPAddress,
	}
}
