package device

import (
	"context"
	"time"

	"rental/internal/domain/model"
)

// 設定された固定座標を返す端末（キオスク・開発用）
type Static struct {
	lat float64
	lng float64
	now func() time.Time
}

func NewStatic(lat, lng float64) *Static {
	return &Static{lat: lat, lng: lng, now: time.Now}
}

func (s *Static) CurrentPosition(ctx context.Context, _ model.PositionOptions) (model.Position, error) {
	if err := ctx.Err(); err != nil {
		return model.Position{}, model.ErrPositionTimeout
	}
	return model.Position{
		Latitude:  s.lat,
		Longitude: s.lng,
		Timestamp: s.now(),
	}, nil
}
