package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/carte-app/api/internal/auth"
	"github.com/carte-app/api/internal/config"
	"github.com/carte-app/api/internal/database"
	"github.com/carte-app/api/internal/enum"
	"github.com/carte-app/api/internal/handler"
	mw "github.com/carte-app/api/internal/middleware"
	"github.com/carte-app/api/internal/service"
	"github.com/carte-app/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// New creates a Chi router with all application routes wired up.
// Admin routes require a token issued by POST /menus/{mid}/login for the
// same menu.
func New(cfg *config.Config, pool service.Pool, hub *ws.Hub) (chi.Router, error) {
	verifier, err := auth.NewVerifier(cfg.AdminPasswordScheme)
	if err != nil {
		return nil, fmt.Errorf("admin verifier: %w", err)
	}

	catalog := service.NewCatalogService(pool, func(db database.DBTX) service.CatalogStore {
		return database.New(db)
	}, verifier)
	orders := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})

	var pub handler.Publisher
	if cfg.Relay.ServerEvents {
		pub = hub
	}

	menuHandler := handler.NewMenuHandler(catalog)
	authHandler := handler.NewAuthHandler(catalog, cfg.JWTSecret)
	catalogHandler := handler.NewCatalogHandler(catalog, pub)
	orderHandler := handler.NewOrderHandler(orders, pub)
	boardHandler := handler.NewBoardHandler(catalog, orders)

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logrus.StandardLogger(),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, hub.Stats())
	})

	// Relay (no auth)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})
	r.Get("/ws/menus/{mid}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	r.Route("/menus", func(r chi.Router) {
		menuHandler.RegisterRoutes(r)

		r.Route("/{mid}", func(r chi.Router) {
			menuHandler.RegisterMenuRoutes(r)
			authHandler.RegisterRoutes(r)
			orderHandler.RegisterRoutes(r)

			// Admin routes, scoped to the token's menu
			r.Group(func(r chi.Router) {
				r.Use(mw.Authenticate(cfg.JWTSecret))
				r.Use(mw.RequireMenu)
				r.Use(mw.RequireRole(enum.RoleMenuAdmin))

				menuHandler.RegisterAdminRoutes(r)
				catalogHandler.RegisterRoutes(r)
				orderHandler.RegisterAdminRoutes(r)
				boardHandler.RegisterRoutes(r)
			})
		})
	})

	logrus.WithField("server_events", cfg.Relay.ServerEvents).Debug("router initialized")
	return r, nil
}

type healthResponse struct {
	Status string         `json:"status"`
	Relay  map[string]int `json:"relay"`
}

func writeHealth(w http.ResponseWriter, rooms map[string]int) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(healthResponse{Status: "ok", Relay: rooms}); err != nil {
		logrus.WithError(err).Error("failed to encode health response")
	}
}
