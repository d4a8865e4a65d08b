package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/sketch-party-backend/internal/hub"
	"github.com/DoyleJ11/sketch-party-backend/internal/registry"
	"github.com/DoyleJ11/sketch-party-backend/internal/types"
)

type Config struct {
	ReadLimit       int64 // bytes per frame; drawings arrive as data URLs
	OutboxSize      int
	EventsPerSecond float64
	EventBurst      int
	PingInterval    time.Duration
	WriteTimeout    time.Duration
	OriginPatterns  []string
	Logger          *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.ReadLimit <= 0 {
		c.ReadLimit = 2 << 20
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = 256
	}
	if c.EventsPerSecond <= 0 {
		c.EventsPerSecond = 40
	}
	if c.EventBurst <= 0 {
		c.EventBurst = 80
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

func Handler(h *hub.Hub, cfg Config) http.HandlerFunc {
	cfg = cfg.withDefaults()

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: cfg.OriginPatterns,
		})
		if err != nil {
			cfg.Logger.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()
		conn.SetReadLimit(cfg.ReadLimit)

		clientID := uuid.NewString()
		client := registry.NewClient(clientID, cfg.OutboxSize)
		log := cfg.Logger.With(zap.String("client", clientID), zap.String("remote", r.RemoteAddr))

		if !h.Send(hub.Connect{Client: client}) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}
		defer h.Send(hub.Disconnect{ClientID: clientID})

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine
		go func() {
			defer cancel()
			ping := time.NewTicker(cfg.PingInterval)
			defer ping.Stop()

			for {
				select {
				case <-ctx.Done():
					return

				case msg, ok := <-client.Outbox():
					if !ok {
						conn.Close(websocket.StatusGoingAway, "connection closed by server")
						return
					}
					wctx, wcancel := context.WithTimeout(ctx, cfg.WriteTimeout)
					err := wsjson.Write(wctx, conn, msg)
					wcancel()
					if err != nil {
						log.Debug("write failed", zap.Error(err))
						return
					}

				case <-ping.C:
					pctx, pcancel := context.WithTimeout(ctx, cfg.WriteTimeout)
					err := conn.Ping(pctx)
					pcancel()
					if err != nil {
						log.Debug("ping failed", zap.Error(err))
						return
					}
				}
			}
		}()

		// Reader loop
		limiter := rate.NewLimiter(rate.Limit(cfg.EventsPerSecond), cfg.EventBurst)
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch status := websocket.CloseStatus(err); {
				case status == websocket.StatusNormalClosure, status == websocket.StatusGoingAway:
					log.Debug("client closed connection")
				case errors.Is(err, context.Canceled):
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			if !limiter.Allow() {
				log.Warn("rate limited, event dropped")
				client.Send(types.Error(types.CodeRateLimited, "too many events"))
				continue
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil || cm.Type == "" {
				client.Send(types.Error(types.CodeBadRequest, "malformed message"))
				continue
			}
			if !h.Send(hub.Inbound{ClientID: clientID, Msg: cm}) {
				return
			}
		}
	}
}
