package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/example/wordapi/internal/auth"
	"github.com/example/wordapi/internal/cache"
)

// requestLogger logs one structured line per request
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// keyByUser rate-limits per authenticated user, falling back to the
// client IP for unauthenticated routes.
func keyByUser(r *http.Request) (string, error) {
	if claims, ok := auth.ClaimsFrom(r.Context()); ok {
		return "user:" + claims.Subject, nil
	}
	return httprate.KeyByIP(r)
}

// limitPerDay allows n requests per key per day
func limitPerDay(n int) func(http.Handler) http.Handler {
	return httprate.Limit(n, 24*time.Hour, httprate.WithKeyFuncs(keyByUser))
}

// cachedResponse serves dashboard GET responses from the per-user,
// per-route cache. Requests within the TTL replay the stored bytes
// without touching the handler; only 200 responses are stored. Runs
// after authentication so the user id is known.
func (s *Server) cachedResponse(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFrom(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			key := cache.UserRouteKey(userID, r.URL.Path)
			if stored, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write(stored)
				return
			} else if err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
			}

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK {
				if err := s.cache.Set(r.Context(), key, rec.body.Bytes(), ttl); err != nil {
					s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
				}
			}
		})
	}
}

// responseRecorder tees the response body so it can be cached
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
