package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tableserve/pos-portal/internal/api/metrics"
	"github.com/tableserve/pos-portal/internal/core/domain"
	"github.com/tableserve/pos-portal/internal/core/ports"
)

// PortalService composes the visibility predicate with the catalog to serve
// menu, category, product, device, and search queries. The effective device
// set is recomputed on every call; nothing is cached across requests, so
// concurrent heartbeat and activation changes are observed immediately.
type PortalService struct {
	catalog ports.CatalogRepository
	scope   *ScopeResolver
	window  time.Duration
	log     zerolog.Logger
}

func NewPortalService(catalog ports.CatalogRepository, scope *ScopeResolver, livenessWindow time.Duration, log zerolog.Logger) *PortalService {
	if livenessWindow <= 0 {
		livenessWindow = 5 * time.Minute
	}
	return &PortalService{catalog: catalog, scope: scope, window: livenessWindow, log: log}
}

// begin resolves the per-request scoping context: actor validation followed
// by effective device resolution. Every portal operation starts here.
func (s *PortalService) begin(ctx context.Context, claims domain.Claims) (*domain.ActorContext, []domain.Device, domain.DeviceSet, error) {
	actor, err := domain.NewActorContext(claims)
	if err != nil {
		countDenied(err)
		return nil, nil, nil, err
	}

	devices, err := s.scope.Resolve(ctx, actor)
	if err != nil {
		countDenied(err)
		return nil, nil, nil, err
	}

	effective := make(domain.DeviceSet, len(devices))
	for _, d := range devices {
		effective[d.ID] = struct{}{}
	}
	return actor, devices, effective, nil
}

func countDenied(err error) {
	var authErr *domain.AuthorizationError
	var scopeErr *domain.ScopeError
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &authErr):
		metrics.ScopeDeniedTotal.WithLabelValues("authorization").Inc()
	case errors.As(err, &scopeErr):
		metrics.ScopeDeniedTotal.WithLabelValues("scope").Inc()
	case errors.As(err, &valErr):
		metrics.ScopeDeniedTotal.WithLabelValues("validation").Inc()
	}
}

// GetMenu returns the full menu: visible categories ordered by display order
// then name, each holding its visible products ordered by name. Categories
// with zero visible products stay in the menu so the terminal still shows the
// structure.
func (s *PortalService) GetMenu(ctx context.Context, claims domain.Claims) (*ports.MenuResult, error) {
	actor, devices, effective, err := s.begin(ctx, claims)
	if err != nil {
		return nil, err
	}

	categories, err := s.visibleCategories(ctx, actor, effective)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.visibleProductsByCategory(ctx, actor, effective)
	if err != nil {
		return nil, err
	}

	sections := make([]ports.MenuSection, 0, len(categories))
	for _, cat := range categories {
		products := byCategory[cat.ID]
		sections = append(sections, ports.MenuSection{
			Category:     toCategoryView(cat, len(products)),
			Products:     products,
			ProductCount: len(products),
		})
	}

	metrics.PortalRequestsTotal.WithLabelValues("menu").Inc()
	s.log.Debug().
		Str("tenant_id", actor.TenantID).
		Str("branch_id", actor.BranchID).
		Int("devices", len(devices)).
		Int("categories", len(sections)).
		Msg("menu served")

	return &ports.MenuResult{
		DeviceCount:   len(devices),
		CategoryCount: len(sections),
		Sections:      sections,
	}, nil
}

// GetCategories returns the visible categories, each annotated with a product
// count computed over the visible product subset only.
func (s *PortalService) GetCategories(ctx context.Context, claims domain.Claims) (*ports.CategoriesResult, error) {
	actor, _, effective, err := s.begin(ctx, claims)
	if err != nil {
		return nil, err
	}

	categories, err := s.visibleCategories(ctx, actor, effective)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.visibleProductsByCategory(ctx, actor, effective)
	if err != nil {
		return nil, err
	}

	views := make([]ports.CategoryView, 0, len(categories))
	for _, cat := range categories {
		views = append(views, toCategoryView(cat, len(byCategory[cat.ID])))
	}

	metrics.PortalRequestsTotal.WithLabelValues("categories").Inc()
	return &ports.CategoriesResult{Count: len(views), Categories: views}, nil
}

// GetProducts returns the visible products, optionally narrowed to one
// category. A missing or invisible category yields an empty result rather
// than an error.
func (s *PortalService) GetProducts(ctx context.Context, claims domain.Claims, categoryID string) (*ports.ProductsResult, error) {
	actor, _, effective, err := s.begin(ctx, claims)
	if err != nil {
		return nil, err
	}

	if categoryID != "" {
		cat, err := s.catalog.FindCategory(ctx, actor.TenantID, categoryID)
		if err != nil {
			if errors.Is(err, domain.ErrCategoryNotFound) {
				return &ports.ProductsResult{Products: []ports.ProductView{}}, nil
			}
			return nil, fmt.Errorf("find category: %w", err)
		}
		if !CategoryVisible(*cat, actor, effective) {
			return &ports.ProductsResult{Products: []ports.ProductView{}}, nil
		}
	}

	products, err := s.catalog.ListProducts(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	views := make([]ports.ProductView, 0, len(products))
	for _, p := range products {
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		if ProductVisible(p, actor, effective) {
			views = append(views, toProductView(p))
		}
	}
	sortProducts(views)

	metrics.PortalRequestsTotal.WithLabelValues("products").Inc()
	return &ports.ProductsResult{Count: len(views), Products: views}, nil
}

// GetDevices returns the actor's effective devices with derived liveness.
func (s *PortalService) GetDevices(ctx context.Context, claims domain.Claims) (*ports.DevicesResult, error) {
	_, devices, _, err := s.begin(ctx, claims)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snapshots := make([]ports.DeviceSnapshot, 0, len(devices))
	for _, d := range devices {
		snapshots = append(snapshots, ports.DeviceSnapshot{
			ID:        d.ID,
			Name:      d.Name,
			BranchID:  d.BranchID,
			Status:    d.Status,
			IsActive:  d.IsActive,
			IsOnline:  d.IsOnline(now, s.window),
			LastSeen:  d.LastSeen,
			IPAddress: d.IPAddress,
		})
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].ID < snapshots[j].ID })

	metrics.PortalRequestsTotal.WithLabelValues("devices").Inc()
	return &ports.DevicesResult{Count: len(snapshots), Devices: snapshots}, nil
}

// Search matches the trimmed query case-insensitively against product name or
// SKU across the tenant's full product collection, combined with the same
// visibility predicate as every other portal read.
func (s *PortalService) Search(ctx context.Context, claims domain.Claims, query string) (*ports.SearchResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		metrics.ScopeDeniedTotal.WithLabelValues("validation").Inc()
		return nil, &domain.ValidationError{Reason: "query too short"}
	}

	actor, _, effective, err := s.begin(ctx, claims)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	products, err := s.catalog.ListProducts(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	needle := strings.ToLower(query)
	views := make([]ports.ProductView, 0)
	for _, p := range products {
		if !ProductVisible(p, actor, effective) {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.SKU), needle) {
			views = append(views, toProductView(p))
		}
	}
	sortProducts(views)

	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.PortalRequestsTotal.WithLabelValues("search").Inc()
	return &ports.SearchResult{Query: query, Count: len(views), Products: views}, nil
}

// visibleCategories lists the branch categories that pass the predicate,
// ordered by display order then name.
func (s *PortalService) visibleCategories(ctx context.Context, actor *domain.ActorContext, effective domain.DeviceSet) ([]domain.Category, error) {
	categories, err := s.catalog.ListCategories(ctx, actor.TenantID, actor.BranchID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	visible := categories[:0]
	for _, cat := range categories {
		if CategoryVisible(cat, actor, effective) {
			visible = append(visible, cat)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		if visible[i].DisplayOrder != visible[j].DisplayOrder {
			return visible[i].DisplayOrder < visible[j].DisplayOrder
		}
		return visible[i].Name < visible[j].Name
	})
	return visible, nil
}

// visibleProductsByCategory groups the tenant's visible products by category,
// each group ordered by name.
func (s *PortalService) visibleProductsByCategory(ctx context.Context, actor *domain.ActorContext, effective domain.DeviceSet) (map[string][]ports.ProductView, error) {
	products, err := s.catalog.ListProducts(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	byCategory := make(map[string][]ports.ProductView)
	for _, p := range products {
		if ProductVisible(p, actor, effective) {
			byCategory[p.CategoryID] = append(byCategory[p.CategoryID], toProductView(p))
		}
	}
	for id := range byCategory {
		sortProducts(byCategory[id])
	}
	return byCategory, nil
}

func sortProducts(views []ports.ProductView) {
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
}

func toCategoryView(cat domain.Category, productCount int) ports.CategoryView {
	return ports.CategoryView{
		ID:           cat.ID,
		Name:         cat.Name,
		Description:  cat.Description,
		DisplayOrder: cat.DisplayOrder,
		Icon:         cat.Icon,
		ProductCount: productCount,
	}
}

func toProductView(p domain.Product) ports.ProductView {
	return ports.ProductView{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		Price:       p.Price,
		IsAvailable: p.IsAvailable,
	}
}
