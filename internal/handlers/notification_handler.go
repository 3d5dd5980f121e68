package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mkarpis/notifly/internal/notifications"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	service *notifications.Service
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *notifications.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/users/:userId/notifications", h.GetNotifications)
	g.GET("/users/:userId/notifications/unread-count", h.GetUnreadCount)
	g.POST("/notifications/:id/read", h.MarkAsRead)
}

// GetNotifications returns a user's notifications, chronological or AI-ranked
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := c.Param("userId")

	opts := notifications.ListOptions{
		Sort:       c.QueryParam("sort"),
		UnreadOnly: c.QueryParam("unreadOnly") == "true",
	}
	if opts.Sort == "" {
		opts.Sort = notifications.SortChrono
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		opts.Limit = limit
	}

	views, err := h.service.List(c.Request().Context(), userID, opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": views,
		"meta":          echo.Map{"total": len(views)},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.service.UnreadCount(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks a notification as read. Repeating the call on an
// already-read notification succeeds.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	notification, err := h.service.MarkRead(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, notification)
}
