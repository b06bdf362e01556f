package repository

import (
	"context"
	"errors"
	"time"

	"rental/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kv_entries テーブルに保存する KeyValueStore
type KVGormRepository struct {
	db *gorm.DB
}

// DI
func NewKVGormRepository(db *gorm.DB) *KVGormRepository {
	return &KVGormRepository{db: db}
}

func (r *KVGormRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var e model.KVEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

// upsert（同じキーは上書き）
func (r *KVGormRepository) Set(ctx context.Context, key string, value string) error {
	e := model.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}
