package ports

import (
	"context"

	"github.com/tableserve/pos-portal/internal/core/domain"
)

// RegisterInput carries everything needed to create a platform account.
// BranchID is required for cashier and branch_manager roles; DeviceIDs is the
// optional explicit device assignment baked into issued tokens.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	Role      domain.Role
	TenantID  string
	BranchID  string
	DeviceIDs []string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
