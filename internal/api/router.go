package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/safeledger/dashboard/internal/api/handler"
	"github.com/safeledger/dashboard/internal/api/middleware"
	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

// Deps are the services and settings the router is built from.
type Deps struct {
	Log          zerolog.Logger
	Tokens       *middleware.SessionTokens
	SecureCookie bool

	Sessions  ports.SessionService
	Scope     ports.ScopeService
	Postings  ports.PostingService
	Views     ports.DashboardService
	Directory ports.DirectoryService
	Activity  ports.ActivityService

	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("safeledger_dashboard_http"))

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(d.Sessions, d.Scope, d.Tokens, d.SecureCookie, d.Log)
	activityHandler := handler.NewActivityHandler(d.Scope, d.Activity)
	postingHandler := handler.NewPostingHandler(d.Postings, d.Views, d.Scope, d.Log)
	viewHandler := handler.NewViewHandler(d.Views, d.Scope, d.Log)
	directoryHandler := handler.NewDirectoryHandler(d.Directory)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session routes resolve their own cookie ---
	e.POST("/api/session/login", sessionHandler.Login)
	e.GET("/api/session", sessionHandler.Bootstrap)
	e.POST("/api/session/logout", sessionHandler.Logout)

	// --- Authenticated routes ---
	staff := middleware.RequireRole(domain.RoleAccountant, domain.RoleSuperuser)
	superuser := middleware.RequireRole(domain.RoleSuperuser)

	g := e.Group("/api", middleware.Auth(d.Tokens), middleware.Session(d.Sessions))

	g.GET("/navigation", sessionHandler.Navigation)
	g.GET("/scope", activityHandler.GetScope)
	g.PUT("/scope", activityHandler.PutScope)
	g.GET("/banners", activityHandler.Banners)
	g.GET("/audit", activityHandler.Audit, superuser)

	g.GET("/postings", postingHandler.List)
	g.POST("/postings", postingHandler.Create)
	g.POST("/postings/refresh", postingHandler.Refresh)
	g.POST("/postings/bulk-delete", postingHandler.BulkDelete)
	g.GET("/postings/export.csv", postingHandler.ExportCSV)
	g.GET("/postings/export.xlsx", postingHandler.ExportXLSX)
	g.DELETE("/postings/:id", postingHandler.Delete)

	g.GET("/charts/bar", viewHandler.Bar)
	g.GET("/charts/line", viewHandler.Line)
	g.GET("/charts/pie", viewHandler.Pie)
	g.GET("/dashboard", viewHandler.Dashboard)

	g.GET("/companies", directoryHandler.ListCompanies)
	g.POST("/companies", directoryHandler.CreateCompany, staff)
	g.PATCH("/companies/:id", directoryHandler.UpdateCompany, staff)
	g.DELETE("/companies/:id", directoryHandler.DeleteCompany, staff)

	g.GET("/customers", directoryHandler.ListCustomers, staff)
	g.POST("/customers", directoryHandler.CreateCustomer, staff)
	g.PATCH("/customers/:id", directoryHandler.UpdateCustomer, staff)
	g.DELETE("/customers/:id", directoryHandler.DeleteCustomer, staff)

	g.GET("/accountants", directoryHandler.ListAccountants, superuser)
	g.POST("/accountants", directoryHandler.CreateAccountant, superuser)
	g.PATCH("/accountants/:id", directoryHandler.UpdateAccountant, superuser)
	g.DELETE("/accountants/:id", directoryHandler.DeleteAccountant, superuser)

	g.POST("/retrain", directoryHandler.Retrain, staff)

	return e
}

// requestLogger feeds one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
