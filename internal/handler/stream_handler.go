package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smuct-dev/studentbase-backend/internal/config"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// StreamHandler exposes the account change feed over WebSocket.
type StreamHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "stream_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AccountChangeStream godoc
// WS /ws/v1/admin/accounts/stream?token=...
// Upgrades to WebSocket and forwards account mutation events from the Redis
// pub/sub channel until the client disconnects.
func (h *StreamHandler) AccountChangeStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.rdb.Subscribe(c.Request.Context(), config.CacheKey.AccountChangesChannel())
	defer sub.Close()

	h.log.Info().Str("remote", c.ClientIP()).Msg("Change feed client connected")

	// Reader goroutine: detect client disconnect and unblock the channel
	// receive below by closing the subscription.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()

	for msg := range sub.Channel() {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
			h.log.Debug().Err(err).Msg("Change feed client gone")
			return
		}
	}
}
