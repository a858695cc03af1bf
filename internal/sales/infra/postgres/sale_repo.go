package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/venezia/venezia-pos/internal/sales/app"
	"github.com/venezia/venezia-pos/internal/sales/domain"
)

type saleRow struct {
	ID            int64           `gorm:"primaryKey"`
	ClientRef     *string         `gorm:"size:64;uniqueIndex"`
	StoreID       *int64          `gorm:"index"`
	UserID        string          `gorm:"size:64"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentMethod string          `gorm:"size:32;not null;default:cash"`
	Code          string          `gorm:"size:64"`
	CreatedAt     time.Time       `gorm:"index"`
	Items         []saleItemRow   `gorm:"foreignKey:SaleID"`
}

func (saleRow) TableName() string { return "sales" }

type saleItemRow struct {
	ID        int64             `gorm:"primaryKey"`
	SaleID    int64             `gorm:"not null;index"`
	ProductID int64             `gorm:"not null;index"`
	Name      string            `gorm:"size:200"`
	Quantity  int               `gorm:"not null"`
	UnitPrice decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	Subtotal  decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	Meta      map[string]string `gorm:"serializer:json"`
}

func (saleItemRow) TableName() string { return "sale_items" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&saleRow{}, &saleItemRow{})
}

type SaleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) *SaleRepo {
	return &SaleRepo{db: db}
}

func (r *SaleRepo) CreateSaleTx(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	row := fromDomain(sale)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return app.ErrDuplicateSale
			}
			return fmt.Errorf("failed to create sale: %w", err)
		}

		for i := range row.Items {
			row.Items[i].SaleID = row.ID
			item := &row.Items[i]

			expected := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if !item.Subtotal.Equal(expected) {
				return fmt.Errorf("item %d: line total mismatch", i)
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}

			res := tx.Table("products").
				Where("id = ?", item.ProductID).
				Update("current_stock", gorm.Expr("current_stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to update stock for product %d: %w", item.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %d: %w", item.ProductID, app.ErrUnknownProduct)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Sale{}, err
	}
	return toDomain(row), nil
}

func (r *SaleRepo) FindByClientRef(ctx context.Context, ref string) (domain.Sale, error) {
	var row saleRow
	err := r.db.WithContext(ctx).Preload("Items").Where("client_ref = ?", ref).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Sale{}, app.ErrSaleNotFound
	}
	if err != nil {
		return domain.Sale{}, err
	}
	return toDomain(row), nil
}

func (r *SaleRepo) Recent(ctx context.Context, limit int) ([]domain.Sale, error) {
	var rows []saleRow
	err := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(rows), nil
}

func (r *SaleRepo) Range(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	var rows []saleRow
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(rows), nil
}

func fromDomain(s domain.Sale) saleRow {
	row := saleRow{
		StoreID:       s.StoreID,
		UserID:        s.UserID,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		Code:          s.Code,
		CreatedAt:     s.CreatedAt,
	}
	if s.ClientRef != "" {
		ref := s.ClientRef
		row.ClientRef = &ref
	}
	for _, it := range s.Items {
		row.Items = append(row.Items, saleItemRow{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.LineTotal,
			Meta:      it.Meta,
		})
	}
	return row
}

func toDomain(row saleRow) domain.Sale {
	s := domain.Sale{
		ID:            row.ID,
		StoreID:       row.StoreID,
		UserID:        row.UserID,
		Subtotal:      row.Subtotal,
		Discount:      row.Discount,
		Total:         row.Total,
		PaymentMethod: domain.PaymentMethod(row.PaymentMethod),
		Code:          row.Code,
		CreatedAt:     row.CreatedAt,
	}
	if row.ClientRef != nil {
		s.ClientRef = *row.ClientRef
	}
	s.Items = make([]domain.Item, 0, len(row.Items))
	for _, it := range row.Items {
		s.Items = append(s.Items, domain.Item{
			ID:        it.ID,
			SaleID:    it.SaleID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.Subtotal,
			Meta:      it.Meta,
		})
	}
	return s
}

func toDomainList(rows []saleRow) []domain.Sale {
	out := make([]domain.Sale, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out
}
