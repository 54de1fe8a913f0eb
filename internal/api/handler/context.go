package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tableserve/pos-portal/internal/core/domain"
	"github.com/tableserve/pos-portal/internal/core/ports"
)

// ctxClaims extracts the scoping claims injected by the Auth middleware and
// performs a fast-fail check before any service call:
//   - role must be non-empty (presence proves the middleware ran).
//   - a non-empty tenant claim is required for every role except the
//     platform owner; without it the JWT is structurally valid but
//     operationally unusable — reject with 401.
func ctxClaims(c echo.Context) (domain.Claims, error) {
	role, _ := c.Get("role").(string)
	if role == "" {
		return domain.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	tenantID, _ := c.Get("tenant_id").(string)
	if domain.Role(role) != domain.RolePlatformOwner && tenantID == "" {
		return domain.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "token missing tenant identity")
	}

	branchID, _ := c.Get("branch_id").(string)
	deviceIDs, _ := c.Get("device_ids").([]string)

	return domain.Claims{
		Role:      domain.Role(role),
		TenantID:  tenantID,
		BranchID:  branchID,
		DeviceIDs: deviceIDs,
	}, nil
}

// ctxAdminScope derives the admin-track scope from the claims. Platform
// owners operate unscoped; tenant admins are pinned to their own tenant.
func ctxAdminScope(c echo.Context) (ports.AdminScope, error) {
	claims, err := ctxClaims(c)
	if err != nil {
		return ports.AdminScope{}, err
	}

	scope := ports.AdminScope{Role: claims.Role}
	if claims.Role != domain.RolePlatformOwner {
		scope.TenantID = claims.TenantID
	}
	return scope, nil
}
