package httpapp

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/PlayerIUnknown/aegis-gui/internal/config"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/assets"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/authn"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/handlers"
	"github.com/PlayerIUnknown/aegis-gui/internal/metrics"
)

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h      *handlers.Handlers
	e      *echo.Echo
	cfg    config.Config
	logger *slog.Logger
}

// NewEchoServer creates a new HTTP server around h.
func NewEchoServer(cfg config.Config, h *handlers.Handlers, logger *slog.Logger) (*EchoServer, error) {
	if h == nil {
		return nil, errors.New("handlers are required")
	}
	if h.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if h.Logger == nil {
		h.Logger = logger
	}

	e := echo.New()
	e.Logger = logger
	es := &EchoServer{h: h, e: e, cfg: cfg, logger: logger}
	e.HTTPErrorHandler = es.httpErrorHandler
	es.registerRoutes()
	return es, nil
}

func (es *EchoServer) registerRoutes() {
	es.e.Use(requestID())
	es.e.Use(requestLogger(es.logger))
	es.e.Use(middleware.Recover())

	es.e.GET("/healthz", handlers.HandleHealthz)
	es.e.StaticFS("/static", assets.FS)

	app := es.e.Group("")
	app.Use(echo.WrapMiddleware(es.h.Sessions.LoadAndSave))
	app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:" + echo.HeaderXCSRFToken + ",form:csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   es.cfg.AuthCookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	app.GET("/login", es.h.HandleLoginGet)
	app.POST("/login", es.h.HandleLoginPost)
	app.POST("/register", es.h.HandleRegisterPost)
	app.POST("/logout", es.h.HandleLogoutPost)

	authed := app.Group("")
	authed.Use(authn.RequireSession(es.h.Sessions))
	authed.GET("/", es.h.HandleDashboard)
	authed.GET("/runs/:scanID", es.h.HandleRunDetails)
	authed.GET("/scans/:scanID/sbom.csv", es.h.HandleExportCSV)
	authed.GET("/scans/:scanID/sbom.pdf", es.h.HandleExportPDF)
	authed.GET("/setup", es.h.HandleSetup)
	authed.POST("/setup/quality-gates", es.h.HandleQualityGatesPost)
	authed.GET("/api/repositories", es.h.HandleAPIRepositories)
}

// Handler returns the routed application.
func (es *EchoServer) Handler() http.Handler {
	return es.e
}

// StartServer serves on server until it is shut down.
func (es *EchoServer) StartServer(server *http.Server) error {
	server.Handler = es.Handler()
	return server.ListenAndServe()
}

func requestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c *echo.Context, id string) {
			c.Set(handlers.ContextKeyRequestID, id)
		},
	})
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		HandleError:  true,
		LogLatency:   true,
		LogMethod:    true,
		LogURIPath:   true,
		LogRequestID: true,
		LogStatus:    true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			metrics.HTTPRequestsTotal.WithLabelValues(v.Method, strconv.Itoa(v.Status)).Inc()
			if v.URIPath == "/healthz" {
				return nil
			}
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("path", v.URIPath),
				slog.Int("status", v.Status),
				slog.Int64("duration_ms", v.Latency.Milliseconds()),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil && level == slog.LevelError {
				attrs = append(attrs, slog.Any("err", v.Error))
			}
			logger.LogAttrs(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	})
}

func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	if r, _ := echo.UnwrapResponse(c.Response()); r != nil && r.Committed {
		return
	}
	status := httpStatusFromError(err)
	switch {
	case status == http.StatusNotFound:
		_ = handlers.RenderNotFound(c)
	case status >= http.StatusInternalServerError:
		_ = es.h.RenderError(c, err)
	default:
		_ = c.String(status, http.StatusText(status))
	}
}

func httpStatusFromError(err error) int {
	var coder interface{ StatusCode() int }
	if errors.As(err, &coder) {
		if code := coder.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}
