package middleware

import (
	"log/slog"
	"strconv"

	"github.com/AhmedSarhan/gamer-boy/internal/apperr"
	"github.com/AhmedSarhan/gamer-boy/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// rateLimitRejections counts requests rejected per limiter.
var rateLimitRejections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limit_rejections_total",
		Help: "Total number of requests rejected by a rate limiter.",
	},
	[]string{"limiter"},
)

// RateLimit gates the route with l, keyed by ratelimit.ClientKey. A store failure lets
// the request through.
func RateLimit(l *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := l.Allow(c.Request.Context(), ratelimit.ClientKey(c.Request))
		if err != nil && apperr.KindOf(err) != apperr.RateLimitExceeded {
			slog.Warn("rate limiter unavailable, allowing request",
				"limiter", l.Name,
				"request_id", GetRequestID(c),
				"error", err,
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(l.Remaining(res)))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if err != nil {
			rateLimitRejections.WithLabelValues(l.Name).Inc()
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
