// Package httpapi wires the single-endpoint HTTP surface (spec §6) onto
// an Echo application: GET / for a banner, POST / multiplexed between the
// auth handler and the dispatcher depending on whether the osu-token
// header is present. External errors surface as 400 with their reason;
// Internal errors surface as a fixed 500 body while the real cause is
// logged (spec §7).
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"bancho/server/internal/auth"
	"bancho/server/internal/banchoerr"
	"bancho/server/internal/dispatch"
	"bancho/server/internal/metrics"
)

const tokenHeader = "osu-token"
const responseTokenHeader = "cho-token"

// Banner is the plain-text body GET / returns.
const Banner = "aegis bancho server"

// Server is the Echo application serving the Bancho HTTP surface.
type Server struct {
	echo       *echo.Echo
	auth       *auth.Handler
	dispatcher *dispatch.Dispatcher
}

// New constructs an Echo app with the login/poll routes registered, plus
// an optional telemetry endpoint when telemEndpoint is non-empty (spec §6:
// "optional telem.endpoint").
func New(authHandler *auth.Handler, dispatcher *dispatch.Dispatcher, telemEndpoint string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger())

	s := &Server{echo: e, auth: authHandler, dispatcher: dispatcher}
	e.GET("/", s.handleBanner)
	e.POST("/", s.handlePost)
	if telemEndpoint != "" {
		e.GET(telemEndpoint, echo.WrapHandler(metrics.Handler()))
	}
	return s
}

// requestLogger returns Echo middleware that logs each HTTP request via slog.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			slog.Info("http request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", c.RealIP(),
			)
			return nil
		}
	}
}

// Echo exposes the underlying Echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Run starts Echo and blocks until ctx cancellation or startup failure.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		err := s.echo.Start(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down http server")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.echo.Shutdown(shutCtx)
		slog.Info("http server stopped")
		return nil
	}
}

func (s *Server) handleBanner(c echo.Context) error {
	return c.String(http.StatusOK, Banner)
}

func (s *Server) handlePost(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeError(c, banchoerr.Internal("read request body", err))
	}

	token := c.Request().Header.Get(tokenHeader)
	ctx := c.Request().Context()

	if token == "" {
		result, err := s.auth.Login(ctx, body)
		if err != nil {
			return writeError(c, err)
		}
		c.Response().Header().Set(responseTokenHeader, result.TokenHeader)
		return c.Blob(http.StatusOK, echo.MIMEOctetStream, result.Body)
	}

	out, err := s.dispatcher.Handle(ctx, token, body)
	if err != nil {
		return writeError(c, err)
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, out)
}

func writeError(c echo.Context, err error) error {
	var be *banchoerr.Error
	if errors.As(err, &be) {
		if be.Kind == banchoerr.KindInternal {
			slog.Error("internal error", "reason", be.Reason, "cause", be.Cause)
		}
		return c.String(be.Status(), be.Body())
	}
	slog.Error("unclassified error", "error", err)
	return c.String(http.StatusInternalServerError, "internal server error")
}
