package api

import (
	"golang.org/x/time/rate"

	"github.com/okian/fest/pkg/logger"
)

// Default server configuration.
const (
	defaultRateLimit = 5
	defaultRateBurst = 10
	defaultMaxLimit  = 500
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAdminToken sets the bearer token required on admin routes. An empty
// token rejects every admin request.
func WithAdminToken(token string) Option {
	return func(s *Server) {
		s.adminToken = token
	}
}

// WithRateLimit sets the per-IP admin request rate.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.rateLimit = rate.Limit(rps)
		}
		if burst > 0 {
			s.rateBurst = burst
		}
	}
}

// WithAllowedOrigins sets the CORS origins; "*" allows any.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithMaxLimit caps ?limit on standings listings.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithHub serves live standings from h.
func WithHub(h *Hub) Option {
	return func(s *Server) {
		s.hub = h
	}
}

// WithLogger sets a custom logger for request logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
