package api

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/mailsweep/mailsweep/api/handlers"
	"github.com/mailsweep/mailsweep/api/middleware"
	"github.com/mailsweep/mailsweep/internal/repository"
	"github.com/mailsweep/mailsweep/internal/tracing"
	"github.com/mailsweep/mailsweep/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, repos *repository.Repositories, jwtSecret string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())                                         // Gin's built-in recovery
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer())) // Our custom Jaeger recovery

	// Browser clients call the API straight from the web app
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	// setup handlers
	apiHandlers := handlers.InitHandlers(s)

	// Health check endpoint (no auth needed)
	r.GET("/health", handlers.HealthCheck)

	authMiddleware := middleware.AuthMiddleware(middleware.AuthConfig{
		JWTSecret: jwtSecret,
	})

	// API group with version and custom context
	api := r.Group("/v1")
	api.Use(authMiddleware)
	api.Use(middleware.CustomContextMiddleware("mailsweep")) // Add custom context for all /v1/* endpoints
	api.Use(middleware.TracingMiddleware())                  // Add tracing for all /v1/* endpoints
	{
		scans := api.Group("/scans")
		{
			scans.POST("", apiHandlers.Scans.StartScan())
			scans.GET("/active", apiHandlers.Scans.GetActiveScan())
			scans.GET("/:id", apiHandlers.Scans.GetScan())
			scans.GET("/:id/senders", apiHandlers.Scans.ListSenderSummaries())
		}
	}
}
