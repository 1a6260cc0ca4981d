package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/CrowderSoup/rosy-workroom/database"
	"github.com/CrowderSoup/rosy-workroom/services"
)

type Authenticator interface {
	Register(ctx context.Context, username, password string) (string, *database.User, error)
	Login(ctx context.Context, username, password, limiterKey string) (string, *database.User, error)
}

// AuthHandler handles authentication-related endpoints
type AuthHandler struct {
	authService Authenticator
}

func NewAuthHandler(authService Authenticator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string         `json:"token"`
	User  *database.User `json:"user"`
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, user, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

// Login exchanges a username and password for a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	key := strings.ToLower(strings.TrimSpace(req.Username)) + "|" + clientIP(r)
	token, user, err := h.authService.Login(r.Context(), req.Username, req.Password, key)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// VerifyToken reports the caller behind a valid token
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		writeError(w, r, services.ErrInvalidToken)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":   caller.ID,
		"username": caller.Username,
		"status":   "valid",
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
