package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mkarpis/notifly/internal/fanout"
	"github.com/mkarpis/notifly/internal/models"
)

// EventHandler handles inbound action events
type EventHandler struct {
	engine *fanout.Engine
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(engine *fanout.Engine) *EventHandler {
	return &EventHandler{engine: engine}
}

// RegisterEventRoutes registers event routes
func (h *EventHandler) RegisterEventRoutes(g *echo.Group) {
	g.POST("/events", h.HandleEvent)
}

// HandleEvent accepts an action event and runs it through the fan-out engine
func (h *EventHandler) HandleEvent(c echo.Context) error {
	var event models.Event
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event payload")
	}
	if err := c.Validate(&event); err != nil {
		return err
	}

	receipt, err := h.engine.HandleEvent(c.Request().Context(), event)
	if err != nil {
		switch {
		case errors.Is(err, fanout.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": "validation_error"})
		case errors.Is(err, fanout.ErrActorNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": "actor_not_found"})
		case errors.Is(err, fanout.ErrFolloweeNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": "followee_not_found"})
		case errors.Is(err, fanout.ErrNoPostAvailable):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": "no_post_available"})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "result": receipt})
}
