package model

import (
	"strings"
)

// 行政区（district）の接尾辞
const DistrictSuffix = "구"

// district が決められない時の既定値
const DefaultDistrict = "성동구"

// 逆ジオコーディングに失敗した時の住所の市区部分
const DefaultCity = "서울특별시"

// ユーザーの現在地
// 常に丸ごと置き換える（部分更新はしない）
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	District  string  `json:"district"`
}

// NewLocation は住所から district を導出して Location を作る。
func NewLocation(lat, lng float64, address string, fallbackDistrict string) Location {
	address = strings.TrimSpace(address)
	return Location{
		Latitude:  lat,
		Longitude: lng,
		Address:   address,
		District:  ExtractDistrict(address, fallbackDistrict),
	}
}

// ExtractDistrict は空白区切りで最後の「〜구」トークンを返す。
// 該当がなければ fallback（空なら DefaultDistrict）。
func ExtractDistrict(address string, fallback string) string {
	fields := strings.Fields(address)
	for i := len(fields) - 1; i >= 0; i-- {
		if strings.HasSuffix(fields[i], DistrictSuffix) {
			return fields[i]
		}
	}
	if strings.TrimSpace(fallback) == "" {
		return DefaultDistrict
	}
	return strings.TrimSpace(fallback)
}

// FallbackAddress は住所が取れない時に使う住所。
func FallbackAddress(district string) string {
	if strings.TrimSpace(district) == "" {
		district = DefaultDistrict
	}
	return DefaultCity + " " + strings.TrimSpace(district)
}

type LocationState string

const (
	LocationStateIdle       LocationState = "IDLE"
	LocationStateRequesting LocationState = "REQUESTING"
	LocationStateResolved   LocationState = "RESOLVED"
	LocationStateFailed     LocationState = "FAILED"
)

// 位置取得の失敗理由
type LocationErrorReason string

const (
	ReasonUnsupported      LocationErrorReason = "UNSUPPORTED"
	ReasonPermissionDenied LocationErrorReason = "PERMISSION_DENIED"
	ReasonUnavailable      LocationErrorReason = "UNAVAILABLE"
	ReasonTimeout          LocationErrorReason = "TIMEOUT"
	ReasonUnknown          LocationErrorReason = "UNKNOWN"
	ReasonGeocodeError     LocationErrorReason = "GEOCODE_ERROR"
)

// Message はユーザー向けの文言を返す。
func (r LocationErrorReason) Message() string {
	switch r {
	case ReasonUnsupported:
		return "이 브라우저에서는 위치 서비스가 지원되지 않습니다."
	case ReasonPermissionDenied:
		return "위치 권한이 거부되었습니다. 브라우저 설정에서 위치 권한을 허용해주세요."
	case ReasonUnavailable:
		return "위치 정보를 사용할 수 없습니다."
	case ReasonTimeout:
		return "위치 정보 가져오기 시간이 초과되었습니다."
	case ReasonGeocodeError:
		return "주소를 찾을 수 없습니다."
	default:
		return "위치 정보를 가져올 수 없습니다."
	}
}

// 成功時の文言
const (
	MessageDeviceLocationSet = "현재 위치가 설정되었습니다."
	MessageManualLocationSet = "위치가 설정되었습니다."
)
