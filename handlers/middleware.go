package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/CrowderSoup/rosy-workroom/logging"
	"github.com/CrowderSoup/rosy-workroom/services"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	callerContextKey    contextKey = "caller"
	requestIDContextKey contextKey = "requestID"
)

type TokenVerifier interface {
	VerifyJWT(tokenString string) (services.Caller, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := m.authenticate(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid session")
			return
		}

		ctx := context.WithValue(r.Context(), callerContextKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) authenticate(r *http.Request) (services.Caller, bool) {
	// Get token from Authorization header
	authParts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(authParts) != 2 || authParts[0] != "Bearer" {
		return services.Caller{}, false
	}

	caller, err := m.verifier.VerifyJWT(authParts[1])
	if err != nil {
		logging.Logger.WithField("path", r.URL.Path).Debugf("Rejected token: %v", err)
		return services.Caller{}, false
	}
	return caller, true
}

func callerFrom(r *http.Request) (services.Caller, bool) {
	caller, ok := r.Context().Value(callerContextKey).(services.Caller)
	return caller, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags each request with an id and logs its outcome
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
		next.ServeHTTP(rec, r.WithContext(ctx))

		logging.Logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		}).Info("Request handled")
	})
}
