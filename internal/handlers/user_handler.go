package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mkarpis/notifly/internal/models"
	"github.com/mkarpis/notifly/internal/repositories"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userRepository     repositories.UserRepository
	postRepository     repositories.PostRepository
	reactionRepository repositories.ReactionRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, reactionRepo repositories.ReactionRepository) *UserHandler {
	return &UserHandler{
		userRepository:     userRepo,
		postRepository:     postRepo,
		reactionRepository: reactionRepo,
	}
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users", h.GetUsers)
	g.GET("/users/:userId/activity", h.GetActivity)
}

// GetUsers returns the user list for the demo user selector
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.userRepository.GetUsers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	compact := make([]models.UserCompact, 0, len(users))
	for i := range users {
		compact = append(compact, users[i].ToCompact())
	}
	return c.JSON(http.StatusOK, echo.Map{"users": compact})
}

// GetActivity returns a user's recent posts and reactions
func (h *UserHandler) GetActivity(c echo.Context) error {
	userID := c.Param("userId")
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByID(ctx, userID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	posts, err := h.postRepository.GetPostsByAuthorID(ctx, userID, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	reactions, err := h.reactionRepository.GetRecentByUserID(ctx, userID, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"posts":     posts,
		"reactions": reactions,
	})
}
