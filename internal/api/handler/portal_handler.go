package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tableserve/pos-portal/internal/core/ports"
)

// PortalHandler serves the device-scoped catalog endpoints used by POS
// terminals. Every endpoint resolves visibility from the caller's claims, so
// two cashiers in the same branch may see different menus.
type PortalHandler struct {
	service ports.PortalService
}

func NewPortalHandler(service ports.PortalService) *PortalHandler {
	return &PortalHandler{service: service}
}

// GetMenu handles GET /v1/menu.
//
// @Summary      Get the full menu visible to the caller
// @Tags         menu
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  menuResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/menu [get]
func (h *PortalHandler) GetMenu(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	menu, err := h.service.GetMenu(c.Request().Context(), claims)
	if err != nil {
		return err
	}

	sections := make([]menuSectionResponse, 0, len(menu.Sections))
	for _, s := range menu.Sections {
		sections = append(sections, menuSectionResponse{
			Category:     toCategoryResponse(s.Category),
			Products:     toProductResponses(s.Products),
			ProductCount: s.ProductCount,
		})
	}

	return c.JSON(http.StatusOK, menuResponse{
		DeviceCount:   menu.DeviceCount,
		CategoryCount: menu.CategoryCount,
		Categories:    sections,
	})
}

// GetCategories handles GET /v1/menu/categories.
//
// @Summary      List visible categories with visible product counts
// @Tags         menu
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  categoriesResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/menu/categories [get]
func (h *PortalHandler) GetCategories(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.GetCategories(c.Request().Context(), claims)
	if err != nil {
		return err
	}

	categories := make([]categoryResponse, 0, len(result.Categories))
	for _, cat := range result.Categories {
		categories = append(categories, toCategoryResponse(cat))
	}

	return c.JSON(http.StatusOK, categoriesResponse{
		Count:      result.Count,
		Categories: categories,
	})
}

// GetProducts handles GET /v1/menu/products. The optional category_id query
// parameter narrows the listing to one category; a category the caller cannot
// see yields an empty listing rather than an error.
//
// @Summary      List visible products
// @Tags         menu
// @Produce      json
// @Security     BearerAuth
// @Param        category_id  query     string  false  "Narrow to one category"
// @Success      200          {object}  productsResponse
// @Failure      401          {object}  map[string]string
// @Failure      403          {object}  map[string]string
// @Failure      404          {object}  map[string]string
// @Router       /v1/menu/products [get]
func (h *PortalHandler) GetProducts(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.GetProducts(c.Request().Context(), claims, c.QueryParam("category_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, productsResponse{
		Count:    result.Count,
		Products: toProductResponses(result.Products),
	})
}

// GetDevices handles GET /v1/menu/devices: the caller's effective device set
// with liveness derived at response time.
//
// @Summary      List the caller's effective devices
// @Tags         menu
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  devicesResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/menu/devices [get]
func (h *PortalHandler) GetDevices(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.GetDevices(c.Request().Context(), claims)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, devicesResponse{
		Count:   result.Count,
		Devices: toDeviceResponses(result.Devices),
	})
}

// Search handles GET /v1/menu/search?q=.
//
// @Summary      Search visible products by name or SKU
// @Tags         menu
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  true  "Search query, minimum two characters"
// @Success      200  {object}  searchResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/menu/search [get]
func (h *PortalHandler) Search(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	result, err := h.service.Search(c.Request().Context(), claims, c.QueryParam("q"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, searchResponse{
		Query:    result.Query,
		Count:    result.Count,
		Products: toProductResponses(result.Products),
	})
}
