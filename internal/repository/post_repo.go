package repository

import (
	"context"

	"hotspot/internal/models"

	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p *models.BulletinPost) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.BulletinPost, error) {
	var p models.BulletinPost
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]models.BulletinPost, error) {
	var list []models.BulletinPost
	err := r.db.WithContext(ctx).Order("created_at DESC").Scopes(paginate(limit, offset)).Find(&list).Error
	return list, err
}
