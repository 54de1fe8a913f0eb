package handler

import (
	"time"

	"github.com/tableserve/pos-portal/internal/core/ports"
)

// Response-only types owned by the transport layer.
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

type categoryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"display_order"`
	Icon         string `json:"icon,omitempty"`
	ProductCount int    `json:"product_count"`
}

type productResponse struct {
	ID          string  `json:"id"`
	CategoryID  string  `json:"category_id"`
	Name        string  `json:"name"`
	SKU         string  `json:"sku,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"is_available"`
}

type menuSectionResponse struct {
	Category     categoryResponse  `json:"category"`
	Products     []productResponse `json:"products"`
	ProductCount int               `json:"product_count"`
}

type menuResponse struct {
	DeviceCount   int                   `json:"device_count"`
	CategoryCount int                   `json:"category_count"`
	Categories    []menuSectionResponse `json:"categories"`
}

type categoriesResponse struct {
	Count      int                `json:"count"`
	Categories []categoryResponse `json:"categories"`
}

type productsResponse struct {
	Count    int               `json:"count"`
	Products []productResponse `json:"products"`
}

type deviceResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	BranchID  string     `json:"branch_id"`
	Status    string     `json:"status"`
	IsActive  bool       `json:"is_active"`
	IsOnline  bool       `json:"is_online"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	IPAddress string     `json:"ip_address,omitempty"`
}

type devicesResponse struct {
	Count   int              `json:"count"`
	Devices []deviceResponse `json:"devices"`
}

type searchResponse struct {
	Query    string            `json:"query"`
	Count    int               `json:"count"`
	Products []productResponse `json:"products"`
}

// --- Mappers ---

func toCategoryResponse(v ports.CategoryView) categoryResponse {
	return categoryResponse{
		ID:           v.ID,
		Name:         v.Name,
		Description:  v.Description,
		DisplayOrder: v.DisplayOrder,
		Icon:         v.Icon,
		ProductCount: v.ProductCount,
	}
}

func toProductResponses(views []ports.ProductView) []productResponse {
	out := make([]productResponse, 0, len(views))
	for _, v := range views {
		out = append(out, productResponse{
			ID:          v.ID,
			CategoryID:  v.CategoryID,
			Name:        v.Name,
			SKU:         v.SKU,
			Description: v.Description,
			Price:       v.Price,
			IsAvailable: v.IsAvailable,
		})
	}
	return out
}

func toDeviceResponses(snapshots []ports.DeviceSnapshot) []deviceResponse {
	out := make([]deviceResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, toDeviceResponse(s))
	}
	return out
}

func toDeviceResponse(s ports.DeviceSnapshot) deviceResponse {
	return deviceResponse{
		ID:        s.ID,
		Name:      s.Name,
		BranchID:  s.BranchID,
		Status:    string(s.Status),
		IsActive:  s.IsActive,
		IsOnline:  s.IsOnline,
		LastSeen:  s.LastSeen,
		IPAddress: s.IPAddress,
	}
}
