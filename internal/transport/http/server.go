package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/quacklabs/quack/internal/config"
	"github.com/quacklabs/quack/internal/core"
	"github.com/quacklabs/quack/internal/store"
)

// NewServer builds the HTTP server: REST endpoints for users and rooms
// plus the room channel WebSocket, behind session-cookie auth and
// credentialed CORS.
func NewServer(hub *core.Hub, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(SessionMiddleware(st, st, logger))

	userHandlers := NewUserHandlers(st, st, logger)
	roomHandlers := NewRoomHandlers(st, logger)
	wsHandler := NewWSHandler(hub, cfg.MaxMessageBytes, logger)

	registerLimiter := newIPRateLimiter(cfg.RegisterPerMinute)

	router.GET("/health", healthHandler)

	router.POST("/users", registerLimiter.Middleware(), userHandlers.Register)
	router.GET("/users", userHandlers.Current)
	router.PATCH("/users", userHandlers.Update)

	router.POST("/room", roomHandlers.Create)
	router.GET("/room/:roomId", wsHandler.Serve)

	// The session cookie only travels cross-origin with credentialed CORS.
	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{stdhttp.MethodGet, stdhttp.MethodPost, stdhttp.MethodPatch, stdhttp.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           corsWrapper.Handler(router),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
