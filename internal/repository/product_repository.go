package repository

import (
	"context"
	"errors"

	"rental/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// カタログ（読み取り専用）の取得だけを約束。
type ProductCatalog interface {
	//カタログ順（ID昇順）で全件返す
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
}
