package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/shopzone/ecommerce-api/internal/models"
)

type CategoryRepo struct {
	DB *gorm.DB
}

func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	items := make([]models.Category, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CategoryRepo) Create(ctx context.Context, category *models.Category) error {
	if err := r.DB.WithContext(ctx).Create(category).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *CategoryRepo) ByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.DB.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *CategoryRepo) Update(ctx context.Context, category *models.Category) error {
	if err := r.DB.WithContext(ctx).Save(category).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// NameTaken checks name uniqueness; excludeID skips the row being updated.
func (r *CategoryRepo) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.Category{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
