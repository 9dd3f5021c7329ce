package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"servicedesk/config"
	"servicedesk/storage"
)

const sessionCookieName = "servicedesk_session"

type identity struct {
	Username   string
	Technician string
	Admin      bool
}

type identityKey struct{}

func withIdentity(ctx context.Context, id identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func lookupIdentity(ctx context.Context) (identity, bool) {
	id, ok := ctx.Value(identityKey{}).(identity)
	return id, ok
}

// identityFrom must only be called behind requireIdentity.
func identityFrom(ctx context.Context) identity {
	id, _ := lookupIdentity(ctx)
	return id
}

func (s *Server) authenticate(username, password string) (config.User, bool) {
	user, ok := s.cfg.User(username)
	if !ok {
		return config.User{}, false
	}
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return config.User{}, false
	}
	return user, true
}

// requireIdentity resolves the session cookie to a configured user. Pages
// redirect to the login form, API calls get 401.
func (s *Server) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.resolveSession(r)
		if err != nil {
			if !errors.Is(err, storage.ErrSessionNotFound) && !errors.Is(err, http.ErrNoCookie) {
				log.WithError(err).Warn("resolve session")
			}
			if strings.HasPrefix(r.URL.Path, "/api/") {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

func (s *Server) resolveSession(r *http.Request) (identity, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return identity{}, err
	}
	username, err := s.store.LookupSession(r.Context(), cookie.Value)
	if err != nil {
		return identity{}, err
	}
	user, ok := s.cfg.User(username)
	if !ok {
		// The user was removed from the config after logging in.
		return identity{}, storage.ErrSessionNotFound
	}
	return identity{Username: username, Technician: user.Technician, Admin: user.Admin}, nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(started).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("http request")
	})
}
