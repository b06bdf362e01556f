package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestIDKey = "request_id"
)

// リクエストごとに request_id を振って開始/終了をログに出す。
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Set(CtxRequestIDKey, requestID)
			c.Response().Header().Set(HeaderRequestID, requestID)

			l := logger.With(
				"request_id", requestID,
				"method", req.Method,
				"path", req.URL.Path,
			)
			start := time.Now()

			err := next(c)
			if err != nil {
				//echo のエラーハンドラに status を決めさせる
				c.Error(err)
			}

			l.Info("request finished",
				"status", c.Response().Status,
				"bytes", c.Response().Size,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}
