package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"rentnest-backend/internal/config"
	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
	"rentnest-backend/internal/security"

	"github.com/gorilla/mux"
)

type ctxKey int

const (
	claimsKey ctxKey = iota
	tokenKey
)

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		var args []any
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
			args = append(args, "route", route.GetName())
		}
		logger.Request("http", r.Method, path, rec.status, time.Since(start), args...)
	})
}

// authenticate enforces the security level of the matched route and stores the
// caller's claims in the request context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		level := config.LevelFor(name)
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			unauthenticated(w, r)
			return
		}
		claims, err := h.svc.Tokens.ValidateToken(token)
		if err != nil {
			unauthenticated(w, r)
			return
		}

		want := security.TokenTypeAccess
		if level == config.SecurityRefresh {
			want = security.TokenTypeRefresh
		}
		if err := security.RequireType(claims, want); err != nil {
			writeError(w, domain.ErrUnauthenticated)
			return
		}
		if level == config.SecurityAdmin && claims.Role != string(domain.UserRoleSuperAdmin) {
			writeError(w, domain.ErrForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// unauthenticated answers 401 with a resume hint so the client can replay the
// request, e.g. a viewing request started before login.
func unauthenticated(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Error:  domain.ErrUnauthenticated.Error(),
		Resume: r.Method + " " + r.URL.RequestURI(),
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// userID returns the authenticated caller. Routes behind authenticate always have one.
func userID(r *http.Request) string {
	if claims, ok := r.Context().Value(claimsKey).(*security.UserClaims); ok {
		return claims.UserID
	}
	return ""
}

func rawToken(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey).(string)
	return token
}

func callerRole(r *http.Request) domain.UserRole {
	if claims, ok := r.Context().Value(claimsKey).(*security.UserClaims); ok {
		return domain.UserRole(claims.Role)
	}
	return ""
}
