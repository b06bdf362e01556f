package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

type SortKey string

const (
	SortDistance  SortKey = "distance"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortRecent    SortKey = "recent"
)

// 画面ごとに表記ゆれがあるので別名も受け付ける
var sortKeyAliases = map[string]SortKey{
	"distance":   SortDistance,
	"price_asc":  SortPriceAsc,
	"price_low":  SortPriceAsc,
	"price-low":  SortPriceAsc,
	"price_desc": SortPriceDesc,
	"price_high": SortPriceDesc,
	"price-high": SortPriceDesc,
	"rating":     SortRating,
	"recent":     SortRecent,
	"newest":     SortRecent,
	"new":        SortRecent,
}

// ParseSortKey は別名を正規のキーに変換する。
func ParseSortKey(s string) (SortKey, bool) {
	k, ok := sortKeyAliases[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// スライダーの範囲
const (
	PriceFloor           int64   = 0
	PriceCeiling         int64   = 50000
	DefaultMaxDistanceKm float64 = 5
	MinDistanceKm        float64 = 0.5
	MaxDistanceCeilingKm float64 = 10
	MaxRating            float64 = 5
)

const dateLayout = "2006-01-02"

// 検索・絞り込み・並び替えの条件
type FilterCriteria struct {
	Category      string     `json:"category"`
	PriceRange    [2]int64   `json:"price_range"`
	MaxDistanceKm float64    `json:"max_distance_km"`
	MinRating     float64    `json:"min_rating"`
	AvailableDate *time.Time `json:"available_date"`
	SortKey       SortKey    `json:"sort_key"`
	TextQuery     string     `json:"text_query"`
}

func DefaultFilterCriteria() FilterCriteria {
	return FilterCriteria{
		Category:      "",
		PriceRange:    [2]int64{PriceFloor, PriceCeiling},
		MaxDistanceKm: DefaultMaxDistanceKm,
		MinRating:     0,
		AvailableDate: nil,
		SortKey:       SortDistance,
		TextQuery:     "",
	}
}

// Normalize は範囲外の値を丸める（エラーにはしない）。
func (c FilterCriteria) Normalize() FilterCriteria {
	c.Category = strings.TrimSpace(c.Category)

	lo := clampPrice(c.PriceRange[0])
	hi := clampPrice(c.PriceRange[1])
	//逆転していたら入れ替える
	if lo > hi {
		lo, hi = hi, lo
	}
	c.PriceRange = [2]int64{lo, hi}

	switch {
	case math.IsNaN(c.MaxDistanceKm):
		c.MaxDistanceKm = DefaultMaxDistanceKm
	case c.MaxDistanceKm < MinDistanceKm:
		c.MaxDistanceKm = MinDistanceKm
	case c.MaxDistanceKm > MaxDistanceCeilingKm:
		c.MaxDistanceKm = MaxDistanceCeilingKm
	}

	switch {
	case math.IsNaN(c.MinRating) || c.MinRating < 0:
		c.MinRating = 0
	case c.MinRating > MaxRating:
		c.MinRating = MaxRating
	}

	if k, ok := ParseSortKey(string(c.SortKey)); ok {
		c.SortKey = k
	} else {
		c.SortKey = SortDistance
	}

	if c.AvailableDate != nil {
		d := truncateDay(*c.AvailableDate)
		c.AvailableDate = &d
	}

	return c
}

func clampPrice(v int64) int64 {
	return min(max(v, PriceFloor), PriceCeiling)
}

// Merge は指定されたキーだけを上書きして正規化する。
func (c FilterCriteria) Merge(p CriteriaPatch) FilterCriteria {
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.PriceRange != nil {
		c.PriceRange = *p.PriceRange
	}
	if p.MinPrice != nil {
		c.PriceRange[0] = *p.MinPrice
	}
	if p.MaxPrice != nil {
		c.PriceRange[1] = *p.MaxPrice
	}
	if p.MaxDistanceKm != nil {
		c.MaxDistanceKm = *p.MaxDistanceKm
	}
	if p.MinRating != nil {
		c.MinRating = *p.MinRating
	}
	if p.AvailableDate.Set {
		c.AvailableDate = p.AvailableDate.Value
	}
	if p.SortKey != nil {
		c.SortKey = *p.SortKey
	}
	if p.TextQuery != nil {
		c.TextQuery = *p.TextQuery
	}
	return c.Normalize()
}

// ActiveCount はバッジに出す「有効なフィルタ数」。
// 並び順と検索語は数えない。
func (c FilterCriteria) ActiveCount() int {
	d := DefaultFilterCriteria()
	n := 0
	if c.Category != d.Category {
		n++
	}
	if c.AvailableDate != nil {
		n++
	}
	if c.MinRating > d.MinRating {
		n++
	}
	if c.PriceRange != d.PriceRange {
		n++
	}
	if c.MaxDistanceKm != d.MaxDistanceKm {
		n++
	}
	return n
}

// 条件の部分更新（nil のキーは変更しない）
type CriteriaPatch struct {
	Category      *string      `json:"category,omitempty"`
	PriceRange    *[2]int64    `json:"price_range,omitempty"`
	//片側だけの指定（URL クエリ用）
	MinPrice      *int64       `json:"-"`
	MaxPrice      *int64       `json:"-"`
	MaxDistanceKm *float64     `json:"max_distance_km,omitempty"`
	MinRating     *float64     `json:"min_rating,omitempty"`
	AvailableDate OptionalDate `json:"available_date"`
	SortKey       *SortKey     `json:"sort_key,omitempty"`
	TextQuery     *string      `json:"text_query,omitempty"`
}

// 「未指定」と「null でクリア」を区別するための日付
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

func DateValue(t time.Time) OptionalDate {
	return OptionalDate{Set: true, Value: &t}
}

func ClearedDate() OptionalDate {
	return OptionalDate{Set: true}
}

func (d *OptionalDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		d.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("available_date must be string: %w", err)
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

func (d OptionalDate) MarshalJSON() ([]byte, error) {
	if d.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.Value.Format(dateLayout))
}

// ParseDate は YYYY-MM-DD か RFC3339 を受け付ける。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return truncateDay(t), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
