package api

import (
	"net"
	"net/http"
	"sync"

	"salonq/internal/config"

	"golang.org/x/time/rate"
)

// rateLimiter throttles admin login attempts per client IP.
type rateLimiter struct {
	limiters sync.Map
	cfg      config.AdminConfig
}

func newRateLimiter(cfg config.AdminConfig) *rateLimiter {
	return &rateLimiter{
		cfg: cfg,
	}
}

func (l *rateLimiter) Allow(r *http.Request) bool {
	if l.cfg.LoginRPS <= 0 {
		return true
	}
	return l.getLimiter(clientIP(r)).Allow()
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.LoginBurst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.LoginRPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
