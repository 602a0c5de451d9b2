package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quacklabs/quack/internal/store"
)

// MaxNameLength caps display names.
const MaxNameLength = 40

// UserHandlers provides the user registration and profile endpoints.
type UserHandlers struct {
	users    store.UserStore
	sessions store.SessionStore
	log      *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(users store.UserStore, sessions store.SessionStore, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		users:    users,
		sessions: sessions,
		log:      logger,
	}
}

// CreateUserRequest represents the registration request body.
type CreateUserRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateUserRequest represents the partial profile update body.
type UpdateUserRequest struct {
	Name *string `json:"name"`
}

// UserIDResponse carries the user's id back after create/update.
type UserIDResponse struct {
	UserID string `json:"userId"`
}

// UserResponse represents the current user's profile.
type UserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Register creates a user, opens a session, and sets the session cookie.
// POST /users
func (h *UserHandlers) Register(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > MaxNameLength {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name must be 1-40 characters"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), name)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	sess, err := h.sessions.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to create session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.SetCookie(SessionCookie, sess.Token, 0, "/", "", false, true)

	h.log.Info().Str("user_id", user.ID).Msg("user registered")
	c.JSON(http.StatusOK, UserIDResponse{UserID: user.ID})
}

// Current returns the authenticated user's profile.
// GET /users
func (h *UserHandlers) Current(c *gin.Context) {
	user := RequireUser(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Name: user.Name})
}

// Update partially updates the authenticated user's profile. Presence
// refresh for an in-room peer is the client's job via a propagate event.
// PATCH /users
func (h *UserHandlers) Update(c *gin.Context) {
	user := RequireUser(c)
	if user == nil {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid update request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > MaxNameLength {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name must be 1-40 characters"})
			return
		}
		if _, err := h.users.UpdateUserName(c.Request.Context(), user.ID, name); err != nil {
			h.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to update user")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, UserIDResponse{UserID: user.ID})
}
