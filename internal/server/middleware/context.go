package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/vladprrs/ajtbd/pkg/ai"
	"github.com/vladprrs/ajtbd/pkg/decompose"
	"github.com/vladprrs/ajtbd/pkg/jtbd/hierarchy"
	"github.com/vladprrs/ajtbd/pkg/store"
)

// App bundles the shared dependencies every handler reaches through the
// request context.
type App struct {
	DB           *store.DB
	Repo         *hierarchy.Repository
	Decomposer   *decompose.Service
	AiClient     ai.Client
	MasterAPIKey string
}

// AppContext wraps the echo context with the application dependencies.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware injects the shared App into every request.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, app})
		}
	}
}
