package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"rental/internal/handler"
	"rental/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo   *echo.Echo
	logger *slog.Logger
}

// New はルートとミドルウェアを登録した echo を作る。
func New(logger *slog.Logger, locationH *handler.LocationHandler, catalogH *handler.CatalogHandler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	RegisterRoutes(e, locationH, catalogH)
	return &Server{echo: e, logger: logger}
}

// Handler はテスト用
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start は ctx が終わるまで待ち受け、終わったら graceful shutdown する。
func (s *Server) Start(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	return s.echo.Shutdown(sctx)
}
