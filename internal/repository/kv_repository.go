package repository

import "context"

// 位置情報を保存するキー
const LocationKey = "userLocation"

// 端末ローカルの key-value 保存の約束。
type KeyValueStore interface {
	//キーがなければ ok=false
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
}
