package model

import (
	"errors"
	"time"
)

var (
	// 端末に位置取得機能がない
	ErrLocationUnsupported = errors.New("location capability unsupported")
	// W3C code 1
	ErrPermissionDenied = errors.New("location permission denied")
	// W3C code 2
	ErrPositionUnavailable = errors.New("position unavailable")
	// W3C code 3
	ErrPositionTimeout = errors.New("position timeout")
	// 住所が解決できない
	ErrGeocodeFailed = errors.New("geocode failed")
)

// W3C Geolocation のエラーコード
const (
	PositionCodePermissionDenied = 1
	PositionCodeUnavailable      = 2
	PositionCodeTimeout          = 3
)

// 端末が返す座標
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// 端末への問い合わせオプション
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// 逆/正ジオコーディングの結果
type GeocodeResult struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PositionErrorFromCode は W3C コードを sentinel error に変換する。
func PositionErrorFromCode(code int) error {
	switch code {
	case PositionCodePermissionDenied:
		return ErrPermissionDenied
	case PositionCodeUnavailable:
		return ErrPositionUnavailable
	case PositionCodeTimeout:
		return ErrPositionTimeout
	default:
		return errors.New("unknown position error")
	}
}

// ReasonFromError は端末/ジオコーダのエラーを失敗理由に分類する。
func ReasonFromError(err error) LocationErrorReason {
	switch {
	case errors.Is(err, ErrLocationUnsupported):
		return ReasonUnsupported
	case errors.Is(err, ErrPermissionDenied):
		return ReasonPermissionDenied
	case errors.Is(err, ErrPositionUnavailable):
		return ReasonUnavailable
	case errors.Is(err, ErrPositionTimeout):
		return ReasonTimeout
	case errors.Is(err, ErrGeocodeFailed):
		return ReasonGeocodeError
	default:
		return ReasonUnknown
	}
}
