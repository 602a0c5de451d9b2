package http

import (
	"context"
	"errors"
	"io"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quacklabs/quack/internal/core"
	"github.com/quacklabs/quack/internal/store"
	"github.com/quacklabs/quack/pkg/protocol"
)

// Admission close reasons. The status is always 1008 (policy violation);
// clients distinguish failures by reason text.
const (
	ReasonUnauthorized  = "Unauthorized"
	ReasonRoomNotFound  = "Room not found"
	ReasonRoomFull      = "Room is full"
	ReasonAlreadyInRoom = "User already in room"
)

// WSHandler upgrades room channel connections and bridges them to the hub.
type WSHandler struct {
	hub             *core.Hub
	maxMessageBytes int64
	log             *zerolog.Logger
}

// NewWSHandler builds a new room channel WebSocket handler.
func NewWSHandler(hub *core.Hub, maxMessageBytes int64, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:             hub,
		maxMessageBytes: maxMessageBytes,
		log:             logger,
	}
}

// Serve handles GET /room/:roomId. Admission failures close the freshly
// upgraded connection with a policy-violation status and a distinguishing
// reason; nothing is broadcast for a rejected join.
func (h *WSHandler) Serve(c *gin.Context) {
	roomID := c.Param("roomId")
	user := CurrentUser(c)

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.maxMessageBytes > 0 {
		conn.SetReadLimit(h.maxMessageBytes)
	}

	if user == nil {
		conn.Close(websocket.StatusPolicyViolation, ReasonUnauthorized)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub, err := h.hub.Join(ctx, roomID, user.ID)
	if err != nil {
		conn.Close(websocket.StatusPolicyViolation, admissionReason(err))
		return
	}
	defer h.hub.Leave(context.WithoutCancel(ctx), sub)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, sub)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sub)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = "closing with error"
			h.log.Warn().Err(err).Str("user_id", user.ID).Str("room_id", roomID).
				Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// readLoop relays inbound events to the hub. Malformed or non-submittable
// events are dropped silently; only transport failures end the loop.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sub *core.Subscription) error {
	for {
		_, raw, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		ev, err := protocol.Decode(raw)
		if err != nil {
			h.log.Debug().Err(err).Str("user_id", sub.UserID).Msg("dropping malformed inbound event")
			continue
		}

		if err := h.hub.Relay(ctx, sub, ev); err != nil {
			if errors.Is(err, core.ErrNotSubmittable) {
				h.log.Debug().Str("user_id", sub.UserID).Str("type", string(ev.Type)).
					Msg("dropping non-submittable inbound event")
				continue
			}
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sub *core.Subscription) error {
	for {
		select {
		case ev, ok := <-sub.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func admissionReason(err error) string {
	switch {
	case errors.Is(err, core.ErrRoomFull):
		return ReasonRoomFull
	case errors.Is(err, core.ErrAlreadyInRoom):
		return ReasonAlreadyInRoom
	case errors.Is(err, core.ErrRoomNotFound), errors.Is(err, store.ErrNotFound):
		return ReasonRoomNotFound
	default:
		return ReasonRoomNotFound
	}
}
