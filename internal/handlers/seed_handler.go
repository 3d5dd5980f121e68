package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mkarpis/notifly/internal/seed"
)

// SeedHandler handles demo reseed requests
type SeedHandler struct {
	seeder *seed.Seeder
	env    string
}

// NewSeedHandler creates a new SeedHandler
func NewSeedHandler(seeder *seed.Seeder, env string) *SeedHandler {
	return &SeedHandler{seeder: seeder, env: env}
}

// RegisterSeedRoutes registers seed routes
func (h *SeedHandler) RegisterSeedRoutes(g *echo.Group) {
	g.POST("/seed", h.Reseed)
}

// Reseed clears and repopulates the store with demo data
func (h *SeedHandler) Reseed(c echo.Context) error {
	// Never allow a bulk wipe from a production deployment.
	if h.env == "production" {
		return echo.NewHTTPError(http.StatusForbidden, "Seed endpoint disabled in production")
	}

	fast := c.QueryParam("fast") != "false"
	result, err := h.seeder.Reseed(c.Request().Context(), fast)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
