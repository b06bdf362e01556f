// Package catalog はカタログの初期データ（TOML）を読み込む。
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"rental/internal/domain/model"

	toml "github.com/pelletier/go-toml/v2"
)

//go:embed default_catalog.toml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

type productRecord struct {
	ID          int64     `toml:"id"`
	Title       string    `toml:"title"`
	Category    string    `toml:"category"`
	Price       int64     `toml:"price"`
	PriceUnit   string    `toml:"price_unit"`
	Place       string    `toml:"place"`
	DistanceKm  *float64  `toml:"distance_km"`
	Latitude    *float64  `toml:"latitude"`
	Longitude   *float64  `toml:"longitude"`
	Rating      float64   `toml:"rating"`
	ReviewCount int64     `toml:"review_count"`
	Owner       string    `toml:"owner"`
	ImageURL    string    `toml:"image_url"`
	IsAvailable *bool     `toml:"is_available"`
	CreatedAt   time.Time `toml:"created_at"`
}

type catalogFile struct {
	Products []productRecord `toml:"products"`
}

// Default は埋め込みのサンプルカタログ。
func Default() ([]model.Product, error) {
	return Parse(defaultCatalog)
}

// LoadFile はファイルからカタログを読む。
func LoadFile(path string) ([]model.Product, error) {
	file, err := os.Open(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(bytes)
}

// Parse は TOML を商品一覧に変換する（ファイル内の順を保つ）。
func Parse(data []byte) ([]model.Product, error) {
	var raw catalogFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[int64]struct{}, len(raw.Products))
	out := make([]model.Product, 0, len(raw.Products))
	for i, r := range raw.Products {
		if r.ID <= 0 {
			return nil, fmt.Errorf("%w: products[%d] id must be > 0", ErrInvalidCatalog, i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidCatalog, r.ID)
		}
		seen[r.ID] = struct{}{}

		if strings.TrimSpace(r.Title) == "" {
			return nil, fmt.Errorf("%w: products[%d] title required", ErrInvalidCatalog, i)
		}
		if r.Price < 0 {
			return nil, fmt.Errorf("%w: products[%d] price must be >= 0", ErrInvalidCatalog, i)
		}
		if (r.Latitude == nil) != (r.Longitude == nil) {
			return nil, fmt.Errorf("%w: products[%d] latitude and longitude go together", ErrInvalidCatalog, i)
		}

		out = append(out, toProduct(r))
	}
	return out, nil
}

func toProduct(r productRecord) model.Product {
	unit := strings.TrimSpace(r.PriceUnit)
	if unit == "" {
		unit = "일"
	}
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return model.Product{
		ID:          r.ID,
		Title:       strings.TrimSpace(r.Title),
		Category:    strings.TrimSpace(r.Category),
		Price:       r.Price,
		PriceUnit:   unit,
		Place:       r.Place,
		DistanceKm:  r.DistanceKm,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		Owner:       r.Owner,
		ImageURL:    r.ImageURL,
		IsAvailable: available,
		CreatedAt:   r.CreatedAt,
	}
}
