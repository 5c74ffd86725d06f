package handler

import (
	"context"
	"net/http"

	"github.com/carte-app/api/internal/auth"
	"github.com/carte-app/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// AdminAuthenticator checks a menu's admin password.
// Satisfied by *service.CatalogService.
type AdminAuthenticator interface {
	VerifyAdmin(ctx context.Context, menuID int64, candidate string) (database.Menu, error)
}

// AuthHandler handles the per-menu admin login.
type AuthHandler struct {
	svc       AdminAuthenticator
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AdminAuthenticator, jwtSecret string) *AuthHandler {
	return &AuthHandler{svc: svc, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints. Expected to be mounted inside
// /menus/{mid}.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
}

type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	Menu  menuResponse `json:"menu"`
}

// Login exchanges the menu's admin password for a token scoped to that menu.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	menu, err := h.svc.VerifyAdmin(r.Context(), menuID, req.Password)
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, menu.ID)
	if err != nil {
		logrus.WithError(err).WithField("menu_id", menu.ID).Error("generate token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token, Menu: toMenuResponse(menu)})
}
