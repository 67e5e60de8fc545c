package mockapi

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	h := routeFunction
	// the first middleware ends up outermost
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.LoggingMiddleware,
		s.CorsMiddleware,
	}
	return append(chainedMiddleWare, mw...)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.env != "DEV" {
			next(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		log.Debug().
			Str("request_id", r.Header.Get("X-Request-ID")).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msgf("[%s] %s", colourMethod(r.Method, 0), r.URL.Path)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				log.Error().Interface("panic", v).Bytes("stack", debug.Stack()).Str("path", r.URL.Path).Msg("handler panicked")
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next(w, r)
	}
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin and
// whether credentials may be shared with it. An empty value means the origin is
// not allowed.
func (s *Server) allowOrigin(origin string) (string, bool) {
	origins := s.config.GetAllowedOrigins()
	switch {
	case origins.IsAllowedOrigin(origin):
		return origin, true
	case origins.IsAllowedOrigin("*"):
		return "*", false
	default:
		return "", false
	}
}

// CorsMiddleware lets the browser storefront call the API from its dev server.
// Preflight requests are answered here and never reach the route.
func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next(w, r)
			return
		}

		allowed, credentials := s.allowOrigin(origin)
		h := w.Header()
		h.Add("Vary", "Origin")
		if allowed != "" {
			h.Set("Access-Control-Allow-Origin", allowed)
			h.Set("Access-Control-Expose-Headers", "X-Request-ID")
		}
		if credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method != http.MethodOptions {
			next(w, r)
			return
		}
		if allowed != "" {
			h.Set("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
			h.Set("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
			h.Set("Access-Control-Max-Age", "600")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
