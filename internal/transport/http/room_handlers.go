package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quacklabs/quack/internal/roomid"
	"github.com/quacklabs/quack/internal/store"
)

// roomIDAttempts bounds word-list collision retries.
const roomIDAttempts = 5

// RoomHandlers provides the room creation endpoint.
type RoomHandlers struct {
	rooms store.RoomStore
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(rooms store.RoomStore, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		rooms: rooms,
		log:   logger,
	}
}

// RoomIDResponse carries a freshly created room id.
type RoomIDResponse struct {
	RoomID string `json:"roomId"`
}

// Create mints a fresh empty room and returns its id.
// POST /room
func (h *RoomHandlers) Create(c *gin.Context) {
	user := RequireUser(c)
	if user == nil {
		return
	}

	var room *store.Room
	for i := 0; i < roomIDAttempts; i++ {
		id, err := roomid.New()
		if err != nil {
			h.log.Error().Err(err).Msg("failed to generate room id")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}

		if _, err := h.rooms.GetRoom(c.Request.Context(), id); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			h.log.Error().Err(err).Msg("failed to check room id")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}

		room, err = h.rooms.CreateRoom(c.Request.Context(), id)
		if err != nil {
			h.log.Error().Err(err).Str("room_id", id).Msg("failed to create room")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		break
	}

	if room == nil {
		h.log.Error().Msg("exhausted room id attempts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room_id", room.ID).Str("user_id", user.ID).Msg("room created")
	c.JSON(http.StatusOK, RoomIDResponse{RoomID: room.ID})
}
