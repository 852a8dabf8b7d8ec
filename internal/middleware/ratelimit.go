package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

type limiterStore struct {
	limiters sync.Map
	rps      float64
	burst    int
}

func (s *limiterStore) get(key string) *rate.Limiter {
	if v, ok := s.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Limit(s.rps), s.burst)
	actual, _ := s.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}

// RateLimit limits requests per client IP. A non-positive rps disables it.
func RateLimit(rps float64, burst int, log zerolog.Logger) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 5
	}
	store := &limiterStore{rps: rps, burst: burst}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !store.get(ip).Allow() {
			log.Warn().Str("ip", ip).Str("path", c.FullPath()).Msg("rate limit exceeded")
			httperr.Write(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Try again later.")
			return
		}
		c.Next()
	}
}
