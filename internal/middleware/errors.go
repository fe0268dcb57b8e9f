package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/AhmedSarhan/gamer-boy/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error recorded with c.Error as the JSON error envelope
// and turns panics into internal errors. Handlers record the error and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic recovered",
					"panic", r,
					"route", c.FullPath(),
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				if !c.Writer.Written() {
					respond(c, &apperr.Error{
						Kind:    apperr.Internal,
						Message: "internal server error",
						Err:     fmt.Errorf("panic: %v", r),
					})
				}
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		respond(c, c.Errors.Last().Err)
	}
}

func respond(c *gin.Context, err error) {
	e := apperr.Wrap(err)
	status, env := apperr.NewEnvelope(e, time.Now())

	if e.Kind == apperr.RateLimitExceeded && e.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"request_id", GetRequestID(c),
			"code", env.Code,
			"error", e.Error(),
		)
	}
	c.AbortWithStatusJSON(status, env)
}
