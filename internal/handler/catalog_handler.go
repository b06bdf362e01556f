package handler

import (
	"net/http"
	"strconv"
	"strings"

	"rental/internal/domain/model"
	"rental/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カタログの検索・絞り込み API
type CatalogHandler struct {
	engine *usecase.CatalogQueryEngine
}

// DI
func NewCatalogHandler(engine *usecase.CatalogQueryEngine) *CatalogHandler {
	return &CatalogHandler{engine: engine}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/catalog", h.current)
	e.PATCH("/catalog/criteria", h.patchCriteria)
	e.DELETE("/catalog/criteria", h.resetCriteria)
	e.GET("/categories", h.categories)
	e.GET("/products/popular", h.popular)
	e.GET("/products/:id", h.detail)
}

type CatalogResponse struct {
	Items             []model.Product      `json:"items"`
	IDs               []int64              `json:"ids"`
	Total             int                  `json:"total"`
	Criteria          model.FilterCriteria `json:"criteria"`
	ActiveFilterCount int                  `json:"active_filter_count"`
}

func toCatalogResponse(v usecase.CatalogView) CatalogResponse {
	ids := make([]int64, 0, len(v.Products))
	for _, p := range v.Products {
		ids = append(ids, p.ID)
	}
	return CatalogResponse{
		Items:             v.Products,
		IDs:               ids,
		Total:             len(v.Products),
		Criteria:          v.Criteria,
		ActiveFilterCount: v.Criteria.ActiveCount(),
	}
}

// クエリは今の条件に重ねて結果だけ返す（セッションの条件は変えない）
func (h *CatalogHandler) current(c echo.Context) error {
	patch, ok, err := patchFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if !ok {
		return c.JSON(http.StatusOK, toCatalogResponse(h.engine.View()))
	}
	return c.JSON(http.StatusOK, toCatalogResponse(h.engine.Preview(patch)))
}

func (h *CatalogHandler) patchCriteria(c echo.Context) error {
	var patch model.CriteriaPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid body")
	}
	h.engine.SetCriteria(patch)
	return c.JSON(http.StatusOK, toCatalogResponse(h.engine.View()))
}

func (h *CatalogHandler) resetCriteria(c echo.Context) error {
	h.engine.ResetCriteria()
	return c.JSON(http.StatusOK, toCatalogResponse(h.engine.View()))
}

func (h *CatalogHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	p, err := h.engine.Product(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) categories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.Categories())
}

func (h *CatalogHandler) popular(c echo.Context) error {
	limit := usecase.DefaultPopularLimit
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > 50 {
			return badRequest(c, "invalid limit")
		}
		limit = l
	}
	return c.JSON(http.StatusOK, h.engine.Popular(limit))
}

type queryError string

func (e queryError) Error() string { return string(e) }

// q / category / min_price / max_price / max_distance_km / min_rating / available_date / sort
func patchFromQuery(c echo.Context) (model.CriteriaPatch, bool, error) {
	var patch model.CriteriaPatch
	found := false

	if _, ok := c.QueryParams()["q"]; ok {
		q := c.QueryParam("q")
		patch.TextQuery = &q
		found = true
	}
	if _, ok := c.QueryParams()["category"]; ok {
		category := c.QueryParam("category")
		patch.Category = &category
		found = true
	}

	//価格帯（片方だけなら反対側は今の条件のまま）
	if v := c.QueryParam("min_price"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return patch, false, queryError("invalid min_price")
		}
		patch.MinPrice = &x
		found = true
	}
	if v := c.QueryParam("max_price"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return patch, false, queryError("invalid max_price")
		}
		patch.MaxPrice = &x
		found = true
	}

	if v := c.QueryParam("max_distance_km"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return patch, false, queryError("invalid max_distance_km")
		}
		patch.MaxDistanceKm = &f
		found = true
	}
	if v := c.QueryParam("min_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return patch, false, queryError("invalid min_rating")
		}
		patch.MinRating = &f
		found = true
	}
	if _, ok := c.QueryParams()["available_date"]; ok {
		v := strings.TrimSpace(c.QueryParam("available_date"))
		if v == "" {
			patch.AvailableDate = model.ClearedDate()
		} else {
			d, err := model.ParseDate(v)
			if err != nil {
				return patch, false, queryError("invalid available_date")
			}
			patch.AvailableDate = model.DateValue(d)
		}
		found = true
	}
	if v := c.QueryParam("sort"); v != "" {
		k, ok := model.ParseSortKey(v)
		if !ok {
			return patch, false, queryError("invalid sort")
		}
		patch.SortKey = &k
		found = true
	}

	return patch, found, nil
}
