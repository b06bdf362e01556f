package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"rental/internal/domain/model"
	"rental/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ブラウザから座標を受け取る先（relay モードのときだけ）
type PositionReporter interface {
	Report(pos model.Position) int
	ReportError(code int) int
}

// 座標と住所の入力チェック
type LocationInputValidator interface {
	ValidateCoordinates(lat, lng float64) error
	ValidateAddress(address string) error
}

type LocationHandler struct {
	resolver  *usecase.LocationResolver
	reporter  PositionReporter
	validator LocationInputValidator
	//?wait=true の最大待ち時間
	waitLimit time.Duration
}

// DI（reporter は nil 可）
func NewLocationHandler(resolver *usecase.LocationResolver, reporter PositionReporter, v LocationInputValidator, waitLimit time.Duration) *LocationHandler {
	return &LocationHandler{resolver: resolver, reporter: reporter, validator: v, waitLimit: waitLimit}
}

func (h *LocationHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/location")
	g.GET("", h.current)
	g.POST("/device", h.requestDevice)
	g.POST("/device/fix", h.reportFix)
	g.POST("/manual", h.setManual)
	g.PUT("/manual/draft", h.updateDraft)
}

type LocationResponse struct {
	usecase.LocationSnapshot
	Supported bool `json:"supported"`
}

func (h *LocationHandler) snapshot() LocationResponse {
	return LocationResponse{
		LocationSnapshot: h.resolver.Snapshot(),
		Supported:        h.resolver.Supported(),
	}
}

func (h *LocationHandler) current(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snapshot())
}

// 問い合わせを始めて 202 を返す。wait=true なら結果まで待つ
func (h *LocationHandler) requestDevice(c echo.Context) error {
	done := h.resolver.RequestDeviceLocation(c.Request().Context())

	wait, _ := strconv.ParseBool(c.QueryParam("wait"))
	if !wait {
		return c.JSON(http.StatusAccepted, h.snapshot())
	}

	var limit <-chan time.Time
	if h.waitLimit > 0 {
		t := time.NewTimer(h.waitLimit)
		defer t.Stop()
		limit = t.C
	}

	select {
	case <-done:
		return c.JSON(http.StatusOK, h.snapshot())
	case <-limit:
		return c.JSON(http.StatusAccepted, h.snapshot())
	case <-c.Request().Context().Done():
		return c.Request().Context().Err()
	}
}

type FixRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	ErrorCode int      `json:"error_code"`
}

type FixResponse struct {
	Delivered int `json:"delivered"`
}

// ブラウザの Geolocation 結果（座標かエラーコード）
func (h *LocationHandler) reportFix(c echo.Context) error {
	if h.reporter == nil {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "device relay disabled"})
	}

	var req FixRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	var delivered int
	switch {
	case req.ErrorCode != 0:
		delivered = h.reporter.ReportError(req.ErrorCode)
	case req.Latitude != nil && req.Longitude != nil:
		if err := h.validator.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
			return badRequest(c, err.Error())
		}
		delivered = h.reporter.Report(model.Position{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
			Accuracy:  req.Accuracy,
		})
	default:
		return badRequest(c, "latitude/longitude or error_code is required")
	}

	if delivered == 0 {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "no pending location request"})
	}
	return c.JSON(http.StatusOK, FixResponse{Delivered: delivered})
}

type ManualRequest struct {
	Address string `json:"address"`
}

func (h *LocationHandler) setManual(c echo.Context) error {
	var req ManualRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	//空白だけなら何もしない（200 で現在の状態）
	if strings.TrimSpace(req.Address) != "" {
		if err := h.validator.ValidateAddress(req.Address); err != nil {
			return badRequest(c, err.Error())
		}
	}

	h.resolver.SetManualLocation(c.Request().Context(), req.Address)
	return c.JSON(http.StatusOK, h.snapshot())
}

type DraftRequest struct {
	Text string `json:"text"`
}

func (h *LocationHandler) updateDraft(c echo.Context) error {
	var req DraftRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	h.resolver.UpdateManualDraft(req.Text)
	return c.NoContent(http.StatusNoContent)
}
