package http

import (
	stdhttp "net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Middleware struct {
	Auth          echo.MiddlewareFunc
	XRay          echo.MiddlewareFunc
	RequestLogger echo.MiddlewareFunc
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(stdhttp.StatusBadRequest, err.Error())
	}
	return nil
}

// NewRouter wires every handler into one echo instance. Everything
// under /api requires a verified session; /healthz does not.
func NewRouter(dashboards *DashboardHandler, emails *EmailsHandler, calls *CallsHandler, users *UsersHandler, m Middleware) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if m.XRay != nil {
		e.Use(m.XRay)
	}
	if m.RequestLogger != nil {
		e.Use(m.RequestLogger)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(stdhttp.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	if m.Auth != nil {
		api.Use(m.Auth)
	}

	api.GET("/dashboard/access", dashboards.Access)
	api.POST("/dashboard/embed-url", dashboards.Refresh)

	api.POST("/emails/generate", emails.Generate)
	api.POST("/emails/improve", emails.Improve)

	api.POST("/calls/summaries", calls.Summarize)
	api.GET("/calls/summaries", calls.List)

	api.GET("/me", users.Me)
	api.GET("/admin/users", users.List)
	api.PUT("/admin/users/:id", users.Update)

	return e
}
