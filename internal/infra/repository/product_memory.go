package repository

import (
	"context"

	"rental/internal/domain/model"
	repo "rental/internal/repository"
)

// 読み込み済みのカタログをそのまま返す ProductCatalog
type ProductMemoryRepository struct {
	products []model.Product
}

// 渡されたスライスはコピーして持つ
func NewProductMemoryRepository(products []model.Product) *ProductMemoryRepository {
	cp := make([]model.Product, len(products))
	copy(cp, products)
	return &ProductMemoryRepository{products: cp}
}

func (r *ProductMemoryRepository) ListAll(_ context.Context) ([]model.Product, error) {
	out := make([]model.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *ProductMemoryRepository) FindByID(_ context.Context, id int64) (model.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}
