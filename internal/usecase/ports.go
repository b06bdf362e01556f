package usecase

import (
	"context"
	"time"

	"rental/internal/domain/model"
)

// IDを発行する約束（uuid）
type IDGenerator interface {
	NewID() string
}

// 現在時刻の約束（テストで固定する）
type Clock interface {
	Now() time.Time
}

// 端末の位置取得機能。結果は成功か失敗のどちらか1回だけ。
type DevicePositioner interface {
	CurrentPosition(ctx context.Context, opts model.PositionOptions) (model.Position, error)
}

// 座標 <-> 住所の変換（失敗は model.ErrGeocodeFailed を包む）
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (model.GeocodeResult, error)
	Forward(ctx context.Context, address string) (model.GeocodeResult, error)
}

// 位置の確定/失敗を知らせる（投げっぱなし）
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// 保存用の Location の変換。壊れたデータはエラーにする。
type LocationCodec interface {
	DecodeLocation(raw []byte) (model.Location, error)
	EncodeLocation(loc model.Location) ([]byte, error)
}

// カタログが距離計算に使う現在地
type LocationSource interface {
	CurrentLocation() (model.Location, bool)
}
