package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is the single durable table: one row per logical key, value is the
// JSON-encoded entity.
type Record struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// Gorm is the durable KV scope on top of a relational database (sqlite or
// postgres, chosen by the DSN at connect time).
type Gorm struct {
	DB *gorm.DB
}

var _ KV = (*Gorm)(nil)

func NewGorm(db *gorm.DB) *Gorm { return &Gorm{DB: db} }

func (g *Gorm) Get(ctx context.Context, key string) (string, bool, error) {
	var rec Record
	err := g.DB.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

func (g *Gorm) Set(ctx context.Context, key, value string) error {
	rec := Record{Key: key, Value: value}
	return g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (g *Gorm) Delete(ctx context.Context, key string) error {
	return g.DB.WithContext(ctx).Delete(&Record{}, "key = ?", key).Error
}
