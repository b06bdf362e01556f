package usecase_test

import (
	"net/http"
	"slices"
	"testing"
	"time"

	"rental/internal/domain/model"
	"rental/internal/infra/logger"
	"rental/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func p[T any](v T) *T { return &v }

// 4件の固定カタログ（座標なし、distance_km のみ）
func fourProducts() []model.Product {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	return []model.Product{
		{ID: 1, Title: "보쉬 전동드릴", Category: "공구", Price: 3000, DistanceKm: f64(0.5), Rating: 4.8, ReviewCount: 24, CreatedAt: day(15)},
		{ID: 2, Title: "4인용 텐트", Category: "캠핑", Price: 15000, DistanceKm: f64(2.3), Rating: 4.9, ReviewCount: 18, CreatedAt: day(12)},
		{ID: 3, Title: "빔프로젝터", Category: "전자기기", Price: 8000, DistanceKm: f64(1.8), Rating: 4.7, ReviewCount: 32, CreatedAt: day(10)},
		{ID: 4, Title: "캠핑 의자", Category: "캠핑", Price: 4000, DistanceKm: f64(0.9), Rating: 4.5, ReviewCount: 9, CreatedAt: day(20)},
	}
}

func newEngine(products []model.Product, loc usecase.LocationSource) *usecase.CatalogQueryEngine {
	return usecase.NewCatalogQueryEngine(products, loc, logger.Discard())
}

func TestCatalogQueryEngine_DefaultResult(t *testing.T) {
	e := newEngine(fourProducts(), nil)

	//現在地なしでも distance_km で並ぶ
	assert.Equal(t, []int64{1, 4, 3, 2}, e.CurrentResult())
	assert.Equal(t, 0, e.ActiveFilterCount())
}

func TestCatalogQueryEngine_PriceRangeAndSort(t *testing.T) {
	e := newEngine(fourProducts(), nil)

	got := e.SetCriteria(model.CriteriaPatch{
		PriceRange: p([2]int64{0, 10000}),
		SortKey:    p(model.SortPriceAsc),
	})
	assert.Equal(t, []int64{1, 4, 3}, got)
	assert.Equal(t, 1, e.ActiveFilterCount())

	got = e.SetCriteria(model.CriteriaPatch{SortKey: p(model.SortPriceDesc)})
	assert.Equal(t, []int64{3, 4, 1}, got)
}

func TestCatalogQueryEngine_Idempotent(t *testing.T) {
	e := newEngine(fourProducts(), nil)
	patch := model.CriteriaPatch{Category: p("캠핑"), SortKey: p(model.SortRating)}

	first := e.SetCriteria(patch)
	second := e.SetCriteria(patch)
	assert.Equal(t, first, second)
	assert.Equal(t, []int64{2, 4}, second)
	assert.Equal(t, first, e.Refresh())
}

func TestCatalogQueryEngine_ResultIsSubsetOfCatalog(t *testing.T) {
	e := newEngine(fourProducts(), nil)
	all := e.CurrentResult()

	for _, patch := range []model.CriteriaPatch{
		{MinRating: p(4.75)},
		{TextQuery: p("캠핑")},
		{Category: p("공구")},
		{PriceRange: p([2]int64{5000, 20000})},
	} {
		got := e.SetCriteria(patch)
		for _, id := range got {
			assert.True(t, slices.Contains(all, id))
		}
		assert.LessOrEqual(t, len(got), len(all))
		e.ResetCriteria()
	}
}

func TestCatalogQueryEngine_ActiveCountChangesByOne(t *testing.T) {
	e := newEngine(fourProducts(), nil)

	e.SetCriteria(model.CriteriaPatch{Category: p("캠핑")})
	assert.Equal(t, 1, e.ActiveFilterCount())
	e.SetCriteria(model.CriteriaPatch{MinRating: p(4.0)})
	assert.Equal(t, 2, e.ActiveFilterCount())
	e.SetCriteria(model.CriteriaPatch{Category: p("")})
	assert.Equal(t, 1, e.ActiveFilterCount())

	e.ResetCriteria()
	assert.Equal(t, 0, e.ActiveFilterCount())
	assert.Equal(t, model.DefaultFilterCriteria(), e.Criteria())
}

func TestCatalogQueryEngine_TextQuery(t *testing.T) {
	products := append(fourProducts(), model.Product{ID: 5, Title: "Canon EOS R6", Category: "카메라", Price: 25000})
	e := newEngine(products, nil)

	assert.Equal(t, []int64{2}, e.SetCriteria(model.CriteriaPatch{TextQuery: p("텐트")}))
	assert.Equal(t, []int64{5}, e.SetCriteria(model.CriteriaPatch{TextQuery: p("canon eos")}))
	assert.Empty(t, e.SetCriteria(model.CriteriaPatch{TextQuery: p("자전거")}))

	//前後の空白も検索語の一部として扱う
	assert.Equal(t, []int64{2}, e.SetCriteria(model.CriteriaPatch{TextQuery: p(" 텐트")}))
	assert.Empty(t, e.SetCriteria(model.CriteriaPatch{TextQuery: p(" canon eos ")}))
	assert.Empty(t, e.SetCriteria(model.CriteriaPatch{TextQuery: p("   ")}))
	assert.Len(t, e.SetCriteria(model.CriteriaPatch{TextQuery: p("")}), 5)
}

func TestCatalogQueryEngine_PreviewDoesNotStore(t *testing.T) {
	e := newEngine(fourProducts(), nil)
	e.SetCriteria(model.CriteriaPatch{Category: p("캠핑")})

	v := e.Preview(model.CriteriaPatch{MaxPrice: p(int64(5000))})
	require.Len(t, v.Products, 1)
	assert.Equal(t, int64(4), v.Products[0].ID)
	assert.Equal(t, [2]int64{0, 5000}, v.Criteria.PriceRange)
	assert.Equal(t, 2, v.Criteria.ActiveCount())

	assert.Equal(t, []int64{4, 2}, e.CurrentResult())
	assert.Equal(t, model.DefaultFilterCriteria().PriceRange, e.Criteria().PriceRange)
	assert.Equal(t, 1, e.ActiveFilterCount())

	view := e.View()
	assert.Equal(t, "캠핑", view.Criteria.Category)
	assert.Len(t, view.Products, 2)
}

func TestCatalogQueryEngine_StableSort(t *testing.T) {
	products := []model.Product{
		{ID: 10, Title: "a", Price: 5000, Rating: 4.5},
		{ID: 11, Title: "b", Price: 3000, Rating: 4.5},
		{ID: 12, Title: "c", Price: 5000, Rating: 4.9},
		{ID: 13, Title: "d", Price: 3000, Rating: 4.5},
	}
	e := newEngine(products, nil)

	assert.Equal(t, []int64{11, 13, 10, 12}, e.SetCriteria(model.CriteriaPatch{SortKey: p(model.SortPriceAsc)}))
	assert.Equal(t, []int64{12, 10, 11, 13}, e.SetCriteria(model.CriteriaPatch{SortKey: p(model.SortRating)}))
	//距離不明はカタログ順のまま
	assert.Equal(t, []int64{10, 11, 12, 13}, e.SetCriteria(model.CriteriaPatch{SortKey: p(model.SortDistance)}))
}

func TestCatalogQueryEngine_UnknownDistanceSortsLast(t *testing.T) {
	products := []model.Product{
		{ID: 1, Title: "a", Price: 1000},
		{ID: 2, Title: "b", Price: 1000, DistanceKm: f64(3)},
		{ID: 3, Title: "c", Price: 1000, DistanceKm: f64(1)},
	}
	e := newEngine(products, nil)
	assert.Equal(t, []int64{3, 2, 1}, e.CurrentResult())
}

func TestCatalogQueryEngine_DistanceFilterNeedsLocation(t *testing.T) {
	loc := &fixedLocation{}
	e := newEngine(fourProducts(), loc)

	//現在地がなければ距離では絞らない
	assert.Len(t, e.SetCriteria(model.CriteriaPatch{MaxDistanceKm: p(1.0)}), 4)

	loc.loc = model.NewLocation(37.5446, 127.0559, "서울특별시 성동구", "")
	loc.ok = true
	assert.Equal(t, []int64{1, 4}, e.Refresh())
}

func TestCatalogQueryEngine_DistanceFromCoordinates(t *testing.T) {
	products := []model.Product{
		//成水洞の近く（約0.2km）
		{ID: 1, Title: "near", Price: 1000, DistanceKm: f64(9), Latitude: f64(37.5460), Longitude: f64(127.0570)},
		//江南駅（約5km以上）
		{ID: 2, Title: "far", Price: 1000, DistanceKm: f64(0.1), Latitude: f64(37.4979), Longitude: f64(127.0276)},
	}
	loc := &fixedLocation{loc: model.NewLocation(37.5446, 127.0559, "서울특별시 성동구", ""), ok: true}
	e := newEngine(products, loc)

	assert.Equal(t, []int64{1}, e.CurrentResult())

	items := e.CurrentProducts()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].DistanceKm)
	assert.InDelta(t, 0.18, *items[0].DistanceKm, 0.05)
}

func TestCatalogQueryEngine_AvailableDateAlwaysPasses(t *testing.T) {
	e := newEngine(fourProducts(), nil)
	got := e.SetCriteria(model.CriteriaPatch{AvailableDate: model.DateValue(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))})
	assert.Len(t, got, 4)
	assert.Equal(t, 1, e.ActiveFilterCount())
}

func TestCatalogQueryEngine_RecentSort(t *testing.T) {
	e := newEngine(fourProducts(), nil)
	assert.Equal(t, []int64{4, 1, 2, 3}, e.SetCriteria(model.CriteriaPatch{SortKey: p(model.SortRecent)}))
}

func TestCatalogQueryEngine_Product(t *testing.T) {
	e := newEngine(fourProducts(), nil)

	got, err := e.Product(3)
	require.NoError(t, err)
	assert.Equal(t, "빔프로젝터", got.Title)

	_, err = e.Product(0)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	_, err = e.Product(99)
	he, ok = usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestCatalogQueryEngine_CategoriesAndPopular(t *testing.T) {
	products := append(fourProducts(), model.Product{ID: 9, Title: "x", Category: "기타", Price: 100})
	e := newEngine(products, nil)

	cats := e.Categories()
	require.Len(t, cats, len(model.Categories)+1)
	assert.Equal(t, model.CategoryCount{Name: "공구", Count: 1}, cats[0])
	assert.Equal(t, model.CategoryCount{Name: "캠핑", Count: 2}, cats[1])
	assert.Equal(t, model.CategoryCount{Name: "기타", Count: 1}, cats[len(cats)-1])

	popular := e.Popular(0)
	require.Len(t, popular, usecase.DefaultPopularLimit)
	assert.Equal(t, []int64{2, 1, 3}, []int64{popular[0].ID, popular[1].ID, popular[2].ID})
	assert.Len(t, e.Popular(100), 5)
}

func TestCatalogQueryEngine_RefreshOnLocationChange(t *testing.T) {
	loc := &fixedLocation{}
	e := newEngine(fourProducts(), loc)
	e.SetCriteria(model.CriteriaPatch{MaxDistanceKm: p(2.0)})
	assert.Len(t, e.CurrentResult(), 4)

	loc.loc, loc.ok = model.NewLocation(37.5, 127.0, "서울시 강남구", ""), true
	//Refresh するまでは直近の結果
	assert.Len(t, e.CurrentResult(), 4)
	assert.Equal(t, []int64{1, 4, 3}, e.Refresh())
}
