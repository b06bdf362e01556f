package model

import (
	"time"
)

// レンタル商品（カタログは読み取り専用）
type Product struct {
	ID          int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string   `gorm:"type:varchar(255);not null" json:"title"`
	Category    string   `gorm:"type:varchar(50);not null;index" json:"category"`
	Price       int64    `gorm:"not null" json:"price"`
	PriceUnit   string   `gorm:"type:varchar(20);not null;default:'일'" json:"price_unit"`
	Place       string   `gorm:"type:varchar(100)" json:"place"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Rating      float64  `gorm:"not null;default:0" json:"rating"`
	ReviewCount int64    `gorm:"not null;default:0" json:"review_count"`
	Owner       string   `gorm:"type:varchar(100)" json:"owner"`
	ImageURL    string   `gorm:"type:text" json:"image_url"`
	IsAvailable bool     `gorm:"not null;default:true" json:"is_available"`
	//並び順「recent」の基準
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// HasCoordinates は商品の座標が登録されているか。
func (p Product) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// ストアフロントのカテゴリ（表示順）
var Categories = []string{
	"공구", "캠핑", "전자기기", "카메라", "자동차", "생활용품", "악기", "운동용품",
}

// カテゴリ別の件数
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
