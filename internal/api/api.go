// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/api/handlers"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/api/middleware"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/service"
)

type Services struct {
	PlanningService *service.PlanningService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.PlanningService != nil {
		planningHandler := handlers.NewPlanningHandler(services.PlanningService)
		planningGroup := apiGroup.Group("/planning")
		{
			planningGroup.POST("/evaluate", planningHandler.Evaluate)
			planningGroup.PUT("/snapshot", planningHandler.ReplaceSnapshot)
			planningGroup.GET("/evaluation", planningHandler.GetEvaluation)
			planningGroup.GET("/skus", planningHandler.GetSkus)
			planningGroup.GET("/skus.csv", planningHandler.ExportSkus)
			planningGroup.GET("/skus/:id", planningHandler.GetSku)
			planningGroup.GET("/replenishment", planningHandler.GetReplenishment)
			planningGroup.GET("/suppliers", planningHandler.GetSuppliers)
			planningGroup.GET("/segmentation", planningHandler.GetSegmentation)
			planningGroup.GET("/alerts", planningHandler.GetAlerts)
			planningGroup.GET("/overview", planningHandler.GetOverview)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
