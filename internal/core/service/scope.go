package service

import (
	"context"
	"fmt"

	"github.com/tableserve/pos-portal/internal/core/domain"
	"github.com/tableserve/pos-portal/internal/core/ports"
)

// ScopeResolver turns an actor context into the concrete list of active
// devices the actor's catalog queries are scoped to.
type ScopeResolver struct {
	devices ports.DeviceRepository
}

func NewScopeResolver(devices ports.DeviceRepository) *ScopeResolver {
	return &ScopeResolver{devices: devices}
}

// Resolve applies the role-specific rules:
//
//   - cashier: the explicitly assigned devices, filtered to active ones;
//     empty result is a ScopeError.
//   - branch_manager: an explicit assignment takes precedence and follows the
//     cashier rule, even for a single device; with no assignment the manager
//     falls back to every active device in their branch.
//
// The role switch is exhaustive over the portal roles; admin roles never
// reach this point because NewActorContext rejects them.
func (r *ScopeResolver) Resolve(ctx context.Context, actor *domain.ActorContext) ([]domain.Device, error) {
	switch actor.Role {
	case domain.RoleCashier:
		return r.assigned(ctx, actor)

	case domain.RoleBranchManager:
		if actor.AssignedDevices.Len() > 0 {
			return r.assigned(ctx, actor)
		}
		devices, err := r.devices.FindByBranch(ctx, actor.TenantID, actor.BranchID, true)
		if err != nil {
			return nil, fmt.Errorf("resolve branch devices: %w", err)
		}
		if len(devices) == 0 {
			return nil, &domain.ScopeError{Reason: "no active devices in branch"}
		}
		return devices, nil

	default:
		return nil, &domain.AuthorizationError{Reason: "role " + string(actor.Role) + " has no device scope"}
	}
}

func (r *ScopeResolver) assigned(ctx context.Context, actor *domain.ActorContext) ([]domain.Device, error) {
	found, err := r.devices.FindByIDs(ctx, actor.TenantID, actor.AssignedDevices.IDs())
	if err != nil {
		return nil, fmt.Errorf("resolve assigned devices: %w", err)
	}

	active := found[:0]
	for _, d := range found {
		if d.IsActive {
			active = append(active, d)
		}
	}
	if len(active) == 0 {
		return nil, &domain.ScopeError{Reason: "no active devices assigned"}
	}
	return active, nil
}
