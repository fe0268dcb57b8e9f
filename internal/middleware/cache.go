package middleware

import "github.com/gin-gonic/gin"

// Cache-Control policies for shared caches.
const (
	CacheListing = "public, s-maxage=3600, stale-while-revalidate=7200"
	CacheByIDs   = "public, s-maxage=7200, stale-while-revalidate=14400"
	CacheRatings = "public, s-maxage=300, stale-while-revalidate=600"
	CacheNoStore = "no-store"
)

// CacheControl sets the Cache-Control header of successful responses to policy.
// Error responses are never cacheable.
func CacheControl(policy string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", policy)
		c.Next()
		if len(c.Errors) > 0 && !c.Writer.Written() {
			c.Header("Cache-Control", CacheNoStore)
		}
	}
}
