package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/venezia/venezia-pos/internal/discount/app"
	"github.com/venezia/venezia-pos/internal/discount/domain"
)

type codeRow struct {
	ID            int64  `gorm:"primaryKey"`
	Code          string `gorm:"size:64;not null;uniqueIndex"`
	Type          string `gorm:"size:32;not null;default:event"`
	Status        string `gorm:"size:16;not null;default:active;index"`
	StoreID       *int64 `gorm:"index"`
	Capacity      *int
	MaxUses       int `gorm:"not null;default:1"`
	Uses          int `gorm:"not null;default:0"`
	ExpiresAt     *time.Time
	DiscountType  *string          `gorm:"size:16"`
	DiscountValue *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (codeRow) TableName() string { return "admin_codes" }

type useRow struct {
	ID      int64 `gorm:"primaryKey"`
	CodeID  int64 `gorm:"not null;uniqueIndex:idx_code_sale"`
	SaleID  int64 `gorm:"not null;uniqueIndex:idx_code_sale"`
	StoreID *int64
	UsedAt  time.Time `gorm:"not null"`
}

func (useRow) TableName() string { return "admin_code_uses" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&codeRow{}, &useRow{})
}

type CodeRepo struct {
	db *gorm.DB
}

func NewCodeRepo(db *gorm.DB) *CodeRepo {
	return &CodeRepo{db: db}
}

func (r *CodeRepo) Create(ctx context.Context, c domain.Code) (domain.Code, error) {
	row := fromDomain(c)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Code{}, app.ErrInvalidInput
		}
		return domain.Code{}, err
	}
	return toDomain(row), nil
}

func (r *CodeRepo) GetByCode(ctx context.Context, code string) (domain.Code, error) {
	var row codeRow
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Code{}, app.ErrCodeNotFound
	}
	if err != nil {
		return domain.Code{}, err
	}
	return toDomain(row), nil
}

func (r *CodeRepo) List(ctx context.Context, f app.ListFilter) ([]domain.Code, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.Search != "" {
			db = db.Where("code ILIKE ?", "%"+f.Search+"%")
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.StoreID > 0 {
			db = db.Where("store_id = ?", f.StoreID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&codeRow{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []codeRow
	err := r.db.WithContext(ctx).
		Scopes(filter).
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.Code, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, total, nil
}

func (r *CodeRepo) SetStatus(ctx context.Context, id int64, status domain.Status) (domain.Code, error) {
	res := r.db.WithContext(ctx).Model(&codeRow{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return domain.Code{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Code{}, app.ErrCodeNotFound
	}

	var row codeRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return domain.Code{}, err
	}
	return toDomain(row), nil
}

func (r *CodeRepo) Redeem(ctx context.Context, code string, saleID int64, storeID *int64, check func(domain.Code) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row codeRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("code = ?", code).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return app.ErrCodeNotFound
		}
		if err != nil {
			return err
		}

		var already int64
		if err := tx.Model(&useRow{}).Where("code_id = ? AND sale_id = ?", row.ID, saleID).Count(&already).Error; err != nil {
			return err
		}
		if already > 0 {
			return nil
		}

		if err := check(toDomain(row)); err != nil {
			return err
		}

		use := useRow{CodeID: row.ID, SaleID: saleID, StoreID: storeID, UsedAt: time.Now().UTC()}
		if err := tx.Create(&use).Error; err != nil {
			return err
		}
		return tx.Model(&codeRow{}).Where("id = ?", row.ID).
			Update("uses", gorm.Expr("uses + 1")).Error
	})
}

func fromDomain(c domain.Code) codeRow {
	row := codeRow{
		Code:          c.Code,
		Type:          c.Type,
		Status:        string(c.Status),
		StoreID:       c.StoreID,
		Capacity:      c.Capacity,
		MaxUses:       c.MaxUses,
		Uses:          c.Uses,
		ExpiresAt:     c.ExpiresAt,
		DiscountValue: c.DiscountValue,
	}
	if c.DiscountType != "" {
		dt := string(c.DiscountType)
		row.DiscountType = &dt
	}
	return row
}

func toDomain(row codeRow) domain.Code {
	c := domain.Code{
		ID:            row.ID,
		Code:          row.Code,
		Type:          row.Type,
		Status:        domain.Status(row.Status),
		StoreID:       row.StoreID,
		Capacity:      row.Capacity,
		MaxUses:       row.MaxUses,
		Uses:          row.Uses,
		ExpiresAt:     row.ExpiresAt,
		DiscountValue: row.DiscountValue,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.DiscountType != nil {
		c.DiscountType = domain.DiscountType(*row.DiscountType)
	}
	return c
}
