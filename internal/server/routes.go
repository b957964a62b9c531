package server

import (
	"github.com/vladprrs/ajtbd/internal/server/middleware"
	"github.com/vladprrs/ajtbd/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Graph routes
	apiRoutes.POST("/graphs", routes.CreateGraphHandler)
	apiRoutes.GET("/graphs", routes.GetGraphsHandler)
	apiRoutes.GET("/graphs/:id", routes.GetGraphHandler)
	apiRoutes.DELETE("/graphs/:id", routes.DeleteGraphHandler)

	// Job routes
	apiRoutes.POST("/graphs/:id/jobs", routes.CreateJobsHandler)
	apiRoutes.PATCH("/jobs/:id", routes.EditJobHandler)
	apiRoutes.DELETE("/jobs/:id", routes.DeleteJobHandler)
	apiRoutes.POST("/jobs/:id/insert-after", routes.InsertAfterHandler)
	apiRoutes.PUT("/graphs/:id/reorder", routes.ReorderHandler)

	// Solution and edge routes
	apiRoutes.POST("/jobs/:id/solutions", routes.AddSolutionHandler)
	apiRoutes.DELETE("/solutions/:id", routes.DeleteSolutionHandler)
	apiRoutes.POST("/graphs/:id/edges", routes.AddEdgeHandler)
	apiRoutes.DELETE("/edges/:id", routes.DeleteEdgeHandler)

	// Validation and views
	apiRoutes.GET("/graphs/:id/validate", routes.ValidateGraphHandler)
	apiRoutes.POST("/graphs/:id/autofix", routes.AutofixGraphHandler)
	apiRoutes.GET("/graphs/:id/timeline", routes.TimelineHandler)
	apiRoutes.GET("/graphs/:id/diagram", routes.DiagramHandler)

	// Generation routes
	apiRoutes.POST("/graphs/:id/generate/small", routes.GenerateSmallJobsHandler)
	apiRoutes.POST("/jobs/:id/generate/micro", routes.GenerateMicroJobsHandler)
}
