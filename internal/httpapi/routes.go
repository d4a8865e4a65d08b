package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/sketch-party-backend/internal/hub"
	"github.com/DoyleJ11/sketch-party-backend/internal/ws"
)

type Options struct {
	PublicURL string
	WS        ws.Config
	Logger    *zap.Logger
}

func SetupRoutes(h *hub.Hub, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.WS.Logger == nil {
		opts.WS.Logger = log
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	// long-lived, not access-logged
	r.Get("/ws", ws.Handler(h, opts.WS))

	r.Group(func(r chi.Router) {
		r.Use(requestLogger(log))
		r.Post("/rooms", CreateRoom(h, log))
		r.Get("/rooms/random", RandomRoom(h))
		r.Get("/rooms/{roomID}/qr.png", RoomQR(opts.PublicURL))
	})
	return r
}
