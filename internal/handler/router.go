package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/AhmedSarhan/gamer-boy/internal/middleware"
	"github.com/AhmedSarhan/gamer-boy/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// LimiterStore backs every rate limiter.
	LimiterStore ratelimit.Store
	// AllowedOrigins lists CORS origins; "*" allows any origin.
	AllowedOrigins []string
	// Swagger mounts the API docs under /swagger.
	Swagger bool
}

// NewRouter wires the middleware chain and every route of h.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Telemetry(),
		middleware.ErrorHandler(),
		cors.New(corsConfig(opts.AllowedOrigins)),
	)

	strict := middleware.RateLimit(ratelimit.Strict(opts.LimiterStore))
	moderate := middleware.RateLimit(ratelimit.Moderate(opts.LimiterStore))
	relaxed := middleware.RateLimit(ratelimit.Relaxed(opts.LimiterStore))

	listing := middleware.CacheControl(middleware.CacheListing)
	noStore := middleware.CacheControl(middleware.CacheNoStore)

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		gameRoutes := apiV1.Group("/games")
		{
			gameRoutes.GET("", moderate, listing, h.GetGames)
			gameRoutes.GET("/by-ids", moderate, middleware.CacheControl(middleware.CacheByIDs), h.GetGamesByIDs) // Must be before /:slug
			gameRoutes.GET("/:slug", relaxed, listing, h.GetGameBySlug)
			gameRoutes.GET("/:slug/related", relaxed, listing, h.GetRelatedGames)
		}

		categoryRoutes := apiV1.Group("/categories")
		{
			categoryRoutes.GET("", relaxed, listing, h.GetCategories)
			categoryRoutes.GET("/:slug/games", moderate, listing, h.GetCategoryGames)
		}

		ratingRoutes := apiV1.Group("/ratings")
		{
			ratingRoutes.GET("/:gameId", moderate, middleware.CacheControl(middleware.CacheRatings), h.GetRating)
			ratingRoutes.POST("/:gameId", strict, noStore, h.SubmitRating)
			ratingRoutes.GET("/:gameId/stream", relaxed, noStore, h.StreamRatings)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
			middleware.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
