package domain

import "time"

// User models an account that can authenticate against the platform. Cashiers
// and branch managers carry a branch and optionally a set of assigned POS
// devices; those fields become the token claims the portal pipeline scopes by.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	TenantID     string    `json:"tenant_id,omitempty"`
	BranchID     string    `json:"branch_id,omitempty"`
	DeviceIDs    []string  `json:"device_ids,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
