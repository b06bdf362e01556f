package geocode

import (
	"context"
	"fmt"
	"math"
	"strings"

	"rental/internal/domain/model"
)

type districtCenter struct {
	name string
	lat  float64
	lng  float64
}

// 서울 25개 구의 대략적인 중심 좌표
var seoulDistricts = []districtCenter{
	{"강남구", 37.5172, 127.0473},
	{"강동구", 37.5301, 127.1238},
	{"강북구", 37.6396, 127.0257},
	{"강서구", 37.5509, 126.8495},
	{"관악구", 37.4784, 126.9516},
	{"광진구", 37.5385, 127.0823},
	{"구로구", 37.4954, 126.8874},
	{"금천구", 37.4569, 126.8955},
	{"노원구", 37.6542, 127.0568},
	{"도봉구", 37.6688, 127.0471},
	{"동대문구", 37.5744, 127.0400},
	{"동작구", 37.5124, 126.9393},
	{"마포구", 37.5663, 126.9019},
	{"서대문구", 37.5791, 126.9368},
	{"서초구", 37.4837, 127.0324},
	{"성동구", 37.5633, 127.0371},
	{"성북구", 37.5894, 127.0167},
	{"송파구", 37.5145, 127.1066},
	{"양천구", 37.5170, 126.8665},
	{"영등포구", 37.5264, 126.8962},
	{"용산구", 37.5326, 126.9905},
	{"은평구", 37.6027, 126.9291},
	{"종로구", 37.5735, 126.9790},
	{"중구", 37.5641, 126.9979},
	{"중랑구", 37.6066, 127.0927},
}

// 서울시청
const (
	cityHallLat = 37.5665
	cityHallLng = 126.9780
)

// 外部APIなしで動く決定的なジオコーダ（開発用）
type Static struct{}

func NewStatic() *Static {
	return &Static{}
}

// Reverse は一番近い区の中心を住所にする。
func (g *Static) Reverse(ctx context.Context, lat, lng float64) (model.GeocodeResult, error) {
	if err := ctx.Err(); err != nil {
		return model.GeocodeResult{}, fmt.Errorf("%w: %v", model.ErrGeocodeFailed, err)
	}
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return model.GeocodeResult{}, fmt.Errorf("%w: invalid coordinate", model.ErrGeocodeFailed)
	}

	best := seoulDistricts[0]
	bestDist := math.Inf(1)
	for _, d := range seoulDistricts {
		dist := (d.lat-lat)*(d.lat-lat) + (d.lng-lng)*(d.lng-lng)
		if dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return model.GeocodeResult{
		Address:   model.DefaultCity + " " + best.name,
		Latitude:  lat,
		Longitude: lng,
	}, nil
}

// Forward は住所に含まれる区の中心を返す。区が分からなければ市庁舎。
func (g *Static) Forward(ctx context.Context, address string) (model.GeocodeResult, error) {
	if err := ctx.Err(); err != nil {
		return model.GeocodeResult{}, fmt.Errorf("%w: %v", model.ErrGeocodeFailed, err)
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return model.GeocodeResult{}, fmt.Errorf("%w: empty address", model.ErrGeocodeFailed)
	}

	for _, token := range strings.Fields(address) {
		for _, d := range seoulDistricts {
			if token == d.name {
				return model.GeocodeResult{Address: address, Latitude: d.lat, Longitude: d.lng}, nil
			}
		}
	}
	return model.GeocodeResult{Address: address, Latitude: cityHallLat, Longitude: cityHallLng}, nil
}
