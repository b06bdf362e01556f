package repository

import (
	"context"
	"errors"

	"rental/internal/domain/model"
	repo "rental/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// カタログ順（id asc）で全件返す
func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// テーブルが空の時だけ初期データを投入する（件数確認と投入は同じTx）
func (r *ProductGormRepository) SeedIfEmpty(ctx context.Context, products []model.Product) (int, error) {
	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(&model.Product{}).Count(&total).Error; err != nil {
			return err
		}
		if total > 0 || len(products) == 0 {
			return nil
		}

		if err := tx.CreateInBatches(products, 100).Error; err != nil {
			return err
		}
		inserted = len(products)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
