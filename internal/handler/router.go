/*
Package handler provides the HTTP handlers and routing setup for the StormChat server.

This file defines the main Router, applying necessary middleware like logging, CORS,
room injection, and IP-based rate limiting before delegating requests to specific
handlers (REST and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"stormchat/internal/app/chat"
	"stormchat/internal/pkg/limiter"
	"stormchat/internal/pkg/logx"
	"stormchat/internal/pkg/resp"
)

const (
	// ConnectRate limits how fast a single IP may open WebSocket connections.
	ConnectRate  = 0.2
	ConnectBurst = 5

	// ThunderRate limits how fast a single IP may trigger ambient broadcasts.
	ThunderRate  = 0.5
	ThunderBurst = 3
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and per-route middleware.
// It requires the shared chat.Room for business logic and the AppConfig for settings (like allowed origins).
func Router(deps *AppDeps) http.Handler {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)
	thunderLimiter := limiter.NewIPRateLimiter(rate.Limit(ThunderRate), ThunderBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Use(chat.ProviderMiddleware(deps.Room))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "StormChat Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/users", func(users chi.Router) {
		users.Get("/", HandleListUsers(deps))
		users.Get("/{id}", HandleGetUser(deps))
		users.Post("/{id}/kick", HandleKickUser(deps))
		users.Post("/{id}/whisper", HandleWhisper(deps))
	})

	rateLimitedThunderHandler := thunderLimiter.Middleware(HandleThunder(deps))
	r.Post("/thunder", http.HandlerFunc(rateLimitedThunderHandler.ServeHTTP))

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
