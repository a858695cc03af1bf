package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/venezia/venezia-pos/internal/catalog/app"
	"github.com/venezia/venezia-pos/internal/catalog/domain"
)

type categoryRow struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:120;not null;uniqueIndex"`
}

func (categoryRow) TableName() string { return "categories" }

type productRow struct {
	ID           int64           `gorm:"primaryKey"`
	Name         string          `gorm:"size:200;not null;index"`
	Description  string          `gorm:"type:text"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	CurrentStock int             `gorm:"not null;default:0"`
	CategoryID   *int64          `gorm:"index"`
	Category     *categoryRow    `gorm:"foreignKey:CategoryID"`
	Active       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (productRow) TableName() string { return "products" }

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&categoryRow{}, &productRow{})
}

type ProductRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := productRow{
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		CurrentStock: p.CurrentStock,
		CategoryID:   p.CategoryID,
		Active:       true,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Product{}, err
	}
	return r.Get(ctx, row.ID)
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var row productRow
	err := r.db.WithContext(ctx).Preload("Category").First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return toDomain(row), nil
}

func (r *ProductRepo) List(ctx context.Context, q app.ListQuery) ([]domain.Product, int64, error) {
	search := func(db *gorm.DB) *gorm.DB {
		if q.Search == "" {
			return db
		}
		like := "%" + q.Search + "%"
		return db.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&productRow{}).Scopes(search).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []productRow
	err := r.db.WithContext(ctx).
		Scopes(search).
		Preload("Category").
		Order("id ASC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, total, nil
}

func toDomain(row productRow) domain.Product {
	p := domain.Product{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		Price:        row.Price,
		CurrentStock: row.CurrentStock,
		CategoryID:   row.CategoryID,
		Active:       row.Active,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.Category != nil {
		p.Category = row.Category.Name
	}
	return p
}
