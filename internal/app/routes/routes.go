package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/costequity/internal/app/controllers"
	"github.com/yigit/costequity/internal/app/models/dto/enums"
	"github.com/yigit/costequity/internal/middleware"
)

// Controllers groups the handlers mounted under /api/v1
type Controllers struct {
	Institutions *controllers.InstitutionController
	Ingestion    *controllers.IngestionController
	Metrics      *controllers.MetricsController
	Queries      *controllers.QueryController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public read routes ---
	institutions := v1.Group("/institutions")
	{
		institutions.GET("", c.Institutions.ListInstitutions)
		institutions.GET("/:id", c.Institutions.GetInstitution)
		institutions.GET("/:id/series", c.Metrics.Series)

		metrics := institutions.Group("/:id/metrics")
		{
			metrics.GET("/affordability", c.Metrics.Affordability)
			metrics.GET("/cost-trend", c.Metrics.CostTrend)
			metrics.GET("/equity-gap", c.Metrics.EquityGap)
			metrics.GET("/outcome-to-cost", c.Metrics.OutcomeToCost)
			metrics.GET("/diversity-weighted", c.Metrics.DiversityWeighted)
			metrics.GET("/tuition-change", c.Metrics.TuitionChange)
		}
	}

	v1.GET("/aggregates/tuition", c.Queries.AggregateTuition)
	v1.GET("/rankings", c.Queries.Rankings)
	v1.GET("/summary", c.Queries.Summary)

	// --- Loader routes ---
	loaders := v1.Group("/institutions")
	loaders.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(enums.RoleLoader))
	{
		loaders.POST("", c.Institutions.CreateInstitution)
		loaders.PUT("/:id", c.Institutions.UpdateInstitution)
		loaders.DELETE("/:id", c.Institutions.DeleteInstitution)

		loaders.PUT("/:id/tuition/:year", c.Ingestion.UpsertTuition)
		loaders.PUT("/:id/diversity/:year", c.Ingestion.UpsertDiversity)
		loaders.POST("/:id/salaries", c.Ingestion.AddSalaryOutcome)
		loaders.PUT("/:id/brackets/:bracket", c.Ingestion.UpsertIncomeBracketCost)
	}
}
