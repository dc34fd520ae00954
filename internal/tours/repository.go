package tours

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTourNotFound = errors.New("tour not found")

type Repository interface {
	GetTourByID(ctx context.Context, id uuid.UUID) (*Tour, error)
	ListActiveTours(ctx context.Context, limit, offset int) ([]Tour, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetTourByID(ctx context.Context, id uuid.UUID) (*Tour, error) {
	var tour Tour
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tour).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}
	return &tour, nil
}

func (r *repository) ListActiveTours(ctx context.Context, limit, offset int) ([]Tour, error) {
	if limit <= 0 {
		limit = 20
	}
	var result []Tour
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	return result, err
}
