package usecase

import (
	"cmp"
	"log/slog"
	"math"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"rental/internal/domain/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// 人気商品のデフォルト件数
const DefaultPopularLimit = 3

// 固定カタログ + 条件 + 現在地 から表示する商品IDの列を作る。
// 結果は条件か位置が変わるたびにカタログ全体から作り直す。
type CatalogQueryEngine struct {
	products []model.Product
	//検索用に正規化したタイトル（products と同じ順）
	titles    []string
	locations LocationSource
	logger    *slog.Logger

	mu       sync.RWMutex
	criteria model.FilterCriteria
	result   []int64
	distance map[int64]float64
}

// DI（locations は nil 可。nil なら距離の絞り込みはしない）
func NewCatalogQueryEngine(products []model.Product, locations LocationSource, logger *slog.Logger) *CatalogQueryEngine {
	if logger == nil {
		logger = slog.Default()
	}

	cp := make([]model.Product, len(products))
	copy(cp, products)
	titles := make([]string, len(cp))
	for i := range cp {
		titles[i] = foldText(cp[i].Title)
	}

	e := &CatalogQueryEngine{
		products:  cp,
		titles:    titles,
		locations: locations,
		logger:    logger.With("component", "catalog_query"),
		criteria:  model.DefaultFilterCriteria(),
	}
	e.result, e.distance = e.derive(e.criteria)
	return e
}

// SetCriteria は指定キーだけを上書きして結果を作り直す。
func (e *CatalogQueryEngine) SetCriteria(patch model.CriteriaPatch) []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.criteria = e.criteria.Merge(patch)
	e.result, e.distance = e.derive(e.criteria)
	e.logger.Debug("criteria updated", "active_filters", e.criteria.ActiveCount(), "results", len(e.result))
	return cloneIDs(e.result)
}

// ResetCriteria はデフォルト条件に戻す。
func (e *CatalogQueryEngine) ResetCriteria() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.criteria = model.DefaultFilterCriteria()
	e.result, e.distance = e.derive(e.criteria)
	return cloneIDs(e.result)
}

// Refresh は現在地が変わった時に呼ぶ。
func (e *CatalogQueryEngine) Refresh() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.result, e.distance = e.derive(e.criteria)
	return cloneIDs(e.result)
}

// CurrentResult は直近の結果（再計算しない）。
func (e *CatalogQueryEngine) CurrentResult() []int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneIDs(e.result)
}

func (e *CatalogQueryEngine) Criteria() model.FilterCriteria {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.criteria
}

func (e *CatalogQueryEngine) ActiveFilterCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.criteria.ActiveCount()
}

// CurrentProducts は直近の結果を商品で返す。
// distance_km は計算できた距離で上書きする。
func (e *CatalogQueryEngine) CurrentProducts() []model.Product {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.productsOf(e.result, e.distance)
}

// 条件と結果の組（同じ時点のもの）
type CatalogView struct {
	Products []model.Product
	Criteria model.FilterCriteria
}

// View は今の条件と結果をまとめて返す。
func (e *CatalogQueryEngine) View() CatalogView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return CatalogView{
		Products: e.productsOf(e.result, e.distance),
		Criteria: e.criteria,
	}
}

// Preview は今の条件に patch を重ねた結果を返す。条件は保存しない。
func (e *CatalogQueryEngine) Preview(patch model.CriteriaPatch) CatalogView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c := e.criteria.Merge(patch)
	ids, dist := e.derive(c)
	return CatalogView{
		Products: e.productsOf(ids, dist),
		Criteria: c,
	}
}

func (e *CatalogQueryEngine) productsOf(ids []int64, dist map[int64]float64) []model.Product {
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := e.lookup(id)
		if !ok {
			continue
		}
		if d, ok := dist[id]; ok {
			p.DistanceKm = &d
		}
		out = append(out, p)
	}
	return out
}

// Product は商品詳細。
func (e *CatalogQueryEngine) Product(id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	p, ok := e.lookup(id)
	if !ok {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	loc, hasLoc := e.currentLocation()
	if d, ok := distanceOf(p, loc, hasLoc); ok {
		p.DistanceKm = &d
	}
	return p, nil
}

// Categories はストアフロントのカテゴリと件数。
// カタログにしかないカテゴリは後ろに足す。
func (e *CatalogQueryEngine) Categories() []model.CategoryCount {
	counts := map[string]int{}
	var extra []string
	for _, p := range e.products {
		if _, seen := counts[p.Category]; !seen && !slices.Contains(model.Categories, p.Category) {
			extra = append(extra, p.Category)
		}
		counts[p.Category]++
	}

	out := make([]model.CategoryCount, 0, len(model.Categories)+len(extra))
	for _, name := range model.Categories {
		out = append(out, model.CategoryCount{Name: name, Count: counts[name]})
	}
	for _, name := range extra {
		out = append(out, model.CategoryCount{Name: name, Count: counts[name]})
	}
	return out
}

// Popular は評価、レビュー数の順で上位 n 件。
func (e *CatalogQueryEngine) Popular(n int) []model.Product {
	if n <= 0 {
		n = DefaultPopularLimit
	}
	cp := make([]model.Product, len(e.products))
	copy(cp, e.products)
	slices.SortStableFunc(cp, func(a, b model.Product) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(b.ReviewCount, a.ReviewCount)
	})
	if n > len(cp) {
		n = len(cp)
	}
	return cp[:n]
}

type candidate struct {
	idx     int
	dist    float64
	hasDist bool
}

// 絞り込み（すべて AND）→ 安定ソート
func (e *CatalogQueryEngine) derive(c model.FilterCriteria) ([]int64, map[int64]float64) {
	loc, hasLoc := e.currentLocation()
	q := foldText(c.TextQuery)

	cands := make([]candidate, 0, len(e.products))
	for i, p := range e.products {
		//検索語
		if q != "" && !strings.Contains(e.titles[i], q) {
			continue
		}
		//カテゴリ
		if c.Category != "" && p.Category != c.Category {
			continue
		}
		//価格帯
		if p.Price < c.PriceRange[0] || p.Price > c.PriceRange[1] {
			continue
		}
		//最低評価
		if p.Rating < c.MinRating {
			continue
		}
		//距離（現在地があり、距離が分かる商品だけ）
		d, hasDist := distanceOf(p, loc, hasLoc)
		if hasLoc && hasDist && d > c.MaxDistanceKm {
			continue
		}
		//利用可能日
		if c.AvailableDate != nil && !availableOn(p, *c.AvailableDate) {
			continue
		}
		cands = append(cands, candidate{idx: i, dist: d, hasDist: hasDist})
	}

	slices.SortStableFunc(cands, e.compareBy(c.SortKey))

	ids := make([]int64, 0, len(cands))
	dist := make(map[int64]float64, len(cands))
	for _, cd := range cands {
		id := e.products[cd.idx].ID
		ids = append(ids, id)
		if cd.hasDist {
			dist[id] = cd.dist
		}
	}
	return ids, dist
}

func (e *CatalogQueryEngine) compareBy(key model.SortKey) func(a, b candidate) int {
	switch key {
	case model.SortPriceAsc:
		return func(a, b candidate) int {
			return cmp.Compare(e.products[a.idx].Price, e.products[b.idx].Price)
		}
	case model.SortPriceDesc:
		return func(a, b candidate) int {
			return cmp.Compare(e.products[b.idx].Price, e.products[a.idx].Price)
		}
	case model.SortRating:
		return func(a, b candidate) int {
			return cmp.Compare(e.products[b.idx].Rating, e.products[a.idx].Rating)
		}
	case model.SortRecent:
		return func(a, b candidate) int {
			return e.products[b.idx].CreatedAt.Compare(e.products[a.idx].CreatedAt)
		}
	default:
		//距離が分からない商品は後ろ
		return func(a, b candidate) int {
			switch {
			case a.hasDist && b.hasDist:
				return cmp.Compare(a.dist, b.dist)
			case a.hasDist:
				return -1
			case b.hasDist:
				return 1
			default:
				return 0
			}
		}
	}
}

func (e *CatalogQueryEngine) currentLocation() (model.Location, bool) {
	if e.locations == nil {
		return model.Location{}, false
	}
	return e.locations.CurrentLocation()
}

func (e *CatalogQueryEngine) lookup(id int64) (model.Product, bool) {
	for _, p := range e.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// 現在地と商品座標があれば実距離、なければカタログの距離
func distanceOf(p model.Product, loc model.Location, hasLoc bool) (float64, bool) {
	if hasLoc && p.HasCoordinates() {
		return haversineKm(loc.Latitude, loc.Longitude, *p.Latitude, *p.Longitude), true
	}
	if p.DistanceKm != nil {
		return *p.DistanceKm, true
	}
	return 0, false
}

// 予約台帳がないので、日付指定は常に通す
func availableOn(_ model.Product, _ time.Time) bool {
	return true
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// 大文字小文字と合成/分解の違いを吸収する
func foldText(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func cloneIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}
