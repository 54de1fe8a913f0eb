package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tableserve/pos-portal/internal/core/domain"
	"github.com/tableserve/pos-portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub catalog
// ---------------------------------------------------------------------------

type stubCatalogRepo struct {
	categories []domain.Category
	products   []domain.Product
}

func (r *stubCatalogRepo) ListCategories(_ context.Context, tenantID, branchID string) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range r.categories {
		if c.TenantID == tenantID && c.BranchID == branchID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) ListProducts(_ context.Context, tenantID string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) FindCategory(_ context.Context, tenantID, categoryID string) (*domain.Category, error) {
	for _, c := range r.categories {
		if c.TenantID == tenantID && c.ID == categoryID {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// ---------------------------------------------------------------------------
// Fixtures: one branch, three devices, a restricted "Alcohol" category
// ---------------------------------------------------------------------------

func fixtureCatalog() *stubCatalogRepo {
	return &stubCatalogRepo{
		categories: []domain.Category{
			{ID: "starters", TenantID: "t1", BranchID: "b1", Name: "Starters", DisplayOrder: 1, IsActive: true},
			{ID: "mains", TenantID: "t1", BranchID: "b1", Name: "Mains", DisplayOrder: 2, IsActive: true},
			{ID: "alcohol", TenantID: "t1", BranchID: "b1", Name: "Alcohol", DisplayOrder: 3, IsActive: true,
				DeviceRestrictions: []string{"d1"}},
			{ID: "retired", TenantID: "t1", BranchID: "b1", Name: "Retired", DisplayOrder: 4, IsActive: false},
			{ID: "other-branch", TenantID: "t1", BranchID: "b2", Name: "Elsewhere", IsActive: true},
		},
		products: []domain.Product{
			{ID: "p-samosa", TenantID: "t1", CategoryID: "starters", Name: "Samosa", SKU: "ST-01",
				IsActive: true, IsAvailable: true},
			{ID: "p-butter", TenantID: "t1", CategoryID: "mains", Name: "Butter Chicken", SKU: "MN-01",
				IsActive: true, IsAvailable: true},
			{ID: "p-dal", TenantID: "t1", CategoryID: "mains", Name: "Dal Makhani", SKU: "MN-02",
				IsActive: true, IsAvailable: true},
			{ID: "p-kiosk", TenantID: "t1", CategoryID: "mains", Name: "Kiosk Special", SKU: "MN-03",
				IsActive: true, IsAvailable: true, DeviceRestrictions: []string{"d2"}},
			{ID: "p-beer", TenantID: "t1", CategoryID: "alcohol", Name: "Lager", SKU: "AL-01",
				IsActive: true, IsAvailable: true},
			{ID: "p-86d", TenantID: "t1", CategoryID: "mains", Name: "Soldout Curry", SKU: "MN-04",
				IsActive: true, IsAvailable: false},
		},
	}
}

func fixturePortal() *PortalService {
	repo := newStubDeviceRepo(
		branchDevice("d1", true),
		branchDevice("d2", true),
		branchDevice("d3", false),
	)
	return NewPortalService(fixtureCatalog(), NewScopeResolver(repo), 5*time.Minute, nopLogger)
}

func cashierClaims(deviceIDs ...string) domain.Claims {
	return domain.Claims{Role: domain.RoleCashier, TenantID: "t1", BranchID: "b1", DeviceIDs: deviceIDs}
}

// ---------------------------------------------------------------------------
// GetMenu
// ---------------------------------------------------------------------------

func TestPortalService_GetMenu_RestrictedCategoryPerDevice(t *testing.T) {
	svc := fixturePortal()

	// Cashier on d1 sees Alcohol.
	menu, err := svc.GetMenu(context.Background(), cashierClaims("d1"))
	if err != nil {
		t.Fatalf("menu for d1 failed: %v", err)
	}
	if !menuHasCategory(menu.Sections, "Alcohol") {
		t.Fatalf("cashier on d1 should see Alcohol")
	}

	// Cashier on d2 does not.
	menu, err = svc.GetMenu(context.Background(), cashierClaims("d2"))
	if err != nil {
		t.Fatalf("menu for d2 failed: %v", err)
	}
	if menuHasCategory(menu.Sections, "Alcohol") {
		t.Fatalf("cashier on d2 must not see Alcohol")
	}
}

func TestPortalService_GetMenu_OrderingAndCounts(t *testing.T) {
	svc := fixturePortal()

	menu, err := svc.GetMenu(context.Background(), cashierClaims("d1"))
	if err != nil {
		t.Fatalf("menu failed: %v", err)
	}
	if menu.DeviceCount != 1 {
		t.Fatalf("expected 1 effective device, got %d", menu.DeviceCount)
	}
	if menu.CategoryCount != 3 {
		t.Fatalf("expected Starters/Mains/Alcohol, got %d sections", menu.CategoryCount)
	}
	if menu.Sections[0].Category.Name != "Starters" || menu.Sections[1].Category.Name != "Mains" {
		t.Fatalf("sections out of display order: %s, %s",
			menu.Sections[0].Category.Name, menu.Sections[1].Category.Name)
	}

	mains := menu.Sections[1]
	// Kiosk Special is restricted to d2 and Soldout Curry is unavailable.
	if mains.ProductCount != 2 {
		t.Fatalf("expected 2 visible mains, got %d", mains.ProductCount)
	}
	if mains.Products[0].Name != "Butter Chicken" || mains.Products[1].Name != "Dal Makhani" {
		t.Fatalf("products not ordered by name: %+v", mains.Products)
	}
}

func TestPortalService_GetMenu_EmptyCategoryKept(t *testing.T) {
	catalog := fixtureCatalog()
	catalog.categories = append(catalog.categories, domain.Category{
		ID: "desserts", TenantID: "t1", BranchID: "b1", Name: "Desserts", DisplayOrder: 5, IsActive: true,
	})
	repo := newStubDeviceRepo(branchDevice("d1", true))
	svc := NewPortalService(catalog, NewScopeResolver(repo), 5*time.Minute, nopLogger)

	menu, err := svc.GetMenu(context.Background(), cashierClaims("d1"))
	if err != nil {
		t.Fatalf("menu failed: %v", err)
	}
	for _, section := range menu.Sections {
		if section.Category.Name == "Desserts" {
			if section.ProductCount != 0 {
				t.Fatalf("expected empty desserts section, got %d", section.ProductCount)
			}
			return
		}
	}
	t.Fatalf("empty category dropped from menu")
}

func TestPortalService_GetMenu_NoDevicesIsScopeError(t *testing.T) {
	svc := fixturePortal()

	_, err := svc.GetMenu(context.Background(), cashierClaims())
	var scopeErr *domain.ScopeError
	if !errors.As(err, &scopeErr) {
		t.Fatalf("expected ScopeError for unassigned cashier, got %v", err)
	}

	// Assigned but inactive behaves the same.
	_, err = svc.GetMenu(context.Background(), cashierClaims("d3"))
	if !errors.As(err, &scopeErr) {
		t.Fatalf("expected ScopeError for inactive assignment, got %v", err)
	}
}

func TestPortalService_GetMenu_AdminRejected(t *testing.T) {
	svc := fixturePortal()

	_, err := svc.GetMenu(context.Background(), domain.Claims{Role: domain.RoleTenantAdmin, TenantID: "t1"})
	var authErr *domain.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// GetCategories / GetProducts
// ---------------------------------------------------------------------------

func TestPortalService_GetCategories_CountsVisibleSubset(t *testing.T) {
	svc := fixturePortal()

	res, err := svc.GetCategories(context.Background(), cashierClaims("d1"))
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}
	for _, cat := range res.Categories {
		if cat.Name == "Mains" && cat.ProductCount != 2 {
			// Raw total is 4; visible subset for d1 is 2.
			t.Fatalf("product count must cover the visible subset, got %d", cat.ProductCount)
		}
		if cat.Name == "Retired" {
			t.Fatalf("inactive category listed")
		}
	}
}

func TestPortalService_GetProducts_InvisibleCategoryIsEmptyResult(t *testing.T) {
	svc := fixturePortal()

	// Alcohol is restricted to d1; the d2 cashier gets an empty result, not
	// an error.
	res, err := svc.GetProducts(context.Background(), cashierClaims("d2"), "alcohol")
	if err != nil {
		t.Fatalf("products failed: %v", err)
	}
	if res.Count != 0 || len(res.Products) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}

	// Unknown category ids behave the same way.
	res, err = svc.GetProducts(context.Background(), cashierClaims("d2"), "nope")
	if err != nil {
		t.Fatalf("products failed: %v", err)
	}
	if res.Count != 0 {
		t.Fatalf("expected empty result for unknown category, got %d", res.Count)
	}
}

func TestPortalService_GetProducts_ByCategory(t *testing.T) {
	svc := fixturePortal()

	res, err := svc.GetProducts(context.Background(), cashierClaims("d1"), "alcohol")
	if err != nil {
		t.Fatalf("products failed: %v", err)
	}
	if res.Count != 1 || res.Products[0].Name != "Lager" {
		t.Fatalf("expected Lager only, got %+v", res.Products)
	}
}

// ---------------------------------------------------------------------------
// GetDevices / Search
// ---------------------------------------------------------------------------

func TestPortalService_GetDevices(t *testing.T) {
	svc := fixturePortal()

	res, err := svc.GetDevices(context.Background(), domain.Claims{
		Role: domain.RoleBranchManager, TenantID: "t1", BranchID: "b1",
	})
	if err != nil {
		t.Fatalf("devices failed: %v", err)
	}
	// Branch fallback excludes the inactive d3.
	if res.Count != 2 || res.Devices[0].ID != "d1" || res.Devices[1].ID != "d2" {
		t.Fatalf("unexpected device list: %+v", res.Devices)
	}
	if !res.Devices[0].IsOnline {
		t.Fatalf("freshly seen active device should report online")
	}
}

func TestPortalService_Search_ShortQuery(t *testing.T) {
	svc := fixturePortal()

	for _, q := range []string{"a", " a ", ""} {
		_, err := svc.Search(context.Background(), cashierClaims("d1"), q)
		var valErr *domain.ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("query %q: expected ValidationError, got %v", q, err)
		}
	}
}

func TestPortalService_Search_MatchesNameAndSKU(t *testing.T) {
	svc := fixturePortal()

	res, err := svc.Search(context.Background(), cashierClaims("d1"), "bu")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Count != 1 || res.Products[0].Name != "Butter Chicken" {
		t.Fatalf("expected exactly Butter Chicken, got %+v", res.Products)
	}

	res, err = svc.Search(context.Background(), cashierClaims("d1"), "mn-0")
	if err != nil {
		t.Fatalf("sku search failed: %v", err)
	}
	// MN-03 is restricted to d2 and MN-04 is unavailable.
	if res.Count != 2 {
		t.Fatalf("expected 2 sku matches for d1, got %d", res.Count)
	}
}

func TestPortalService_Search_RespectsVisibility(t *testing.T) {
	svc := fixturePortal()

	res, err := svc.Search(context.Background(), cashierClaims("d2"), "kiosk")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Count != 1 || res.Products[0].Name != "Kiosk Special" {
		t.Fatalf("d2 cashier should find the d2-restricted product, got %+v", res.Products)
	}

	res, err = svc.Search(context.Background(), cashierClaims("d1"), "kiosk")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if res.Count != 0 {
		t.Fatalf("d1 cashier must not find a d2-restricted product")
	}
}

func menuHasCategory(sections []ports.MenuSection, name string) bool {
	for _, s := range sections {
		if s.Category.Name == name {
			return true
		}
	}
	return false
}
