package repo

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/shopzone/ecommerce-api/internal/models"
)

// sortColumns is the allow-list of sortable product columns. Sort input
// never reaches the query as raw SQL; anything outside this map falls back
// to the caller's default. The "_id" alias keeps the inherited search
// default working.
var sortColumns = map[string]string{
	"id":         "id",
	"_id":        "id",
	"name":       "name",
	"price":      "price",
	"quantity":   "quantity",
	"sold":       "sold",
	"created_at": "created_at",
}

// filterColumns are the fields search may build equality predicates on.
var filterColumns = map[string]bool{
	"name":        true,
	"description": true,
	"quantity":    true,
	"sold":        true,
	"shipping":    true,
	"category_id": true,
}

const searchDefaultLimit = 100

func orderClause(sortBy, order, defaultSort, defaultOrder string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = defaultSort
	}
	dir := strings.ToLower(order)
	if dir != "asc" && dir != "desc" {
		dir = defaultOrder
	}
	return col + " " + dir
}

// SearchQuery describes the filtered product search. A filter keyed
// "price" with an "a-b" value becomes a range predicate; every other
// non-empty entry becomes an equality predicate. Predicates are ANDed.
type SearchQuery struct {
	Filters map[string]string
	SortBy  string
	Order   string
	Limit   int
	Skip    int
}

type ProductRepo struct {
	DB *gorm.DB
}

func (r *ProductRepo) List(ctx context.Context, sortBy, order string, limit int) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Order(orderClause(sortBy, order, "id", "asc"))
	if limit > 0 {
		q = q.Limit(limit)
	}
	items := make([]models.Product, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductRepo) Create(ctx context.Context, product *models.Product) error {
	if err := r.DB.WithContext(ctx).Create(product).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *ProductRepo) ByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *ProductRepo) Update(ctx context.Context, product *models.Product) error {
	if err := r.DB.WithContext(ctx).Save(product).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Related returns other products in the same category, never the product
// itself. A product without a category has no related products.
func (r *ProductRepo) Related(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if product.CategoryID == nil {
		return items, nil
	}
	q := r.DB.WithContext(ctx).
		Where("category_id = ? AND id <> ?", *product.CategoryID, product.ID).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductRepo) Search(ctx context.Context, query SearchQuery) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})

	for field, value := range query.Filters {
		if value == "" {
			continue
		}
		if field == "price" {
			if low, high, ok := parsePriceRange(value); ok {
				q = q.Where("price >= ? AND price <= ?", low, high)
				continue
			}
			q = q.Where("price = ?", value)
			continue
		}
		if !filterColumns[field] {
			continue
		}
		q = q.Where(field+" = ?", value)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = searchDefaultLimit
	}
	skip := query.Skip
	if skip < 0 {
		skip = 0
	}

	items := make([]models.Product, 0)
	err := q.Preload("Category").
		Order(orderClause(query.SortBy, query.Order, "id", "desc")).
		Limit(limit).
		Offset(skip).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func parsePriceRange(value string) (float64, float64, bool) {
	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	low, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	high, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return low, high, true
}
