package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/internal/catalog/domain"
)

type fakeRepo struct {
	lastQuery ListQuery
	products  []domain.Product
}

func (f *fakeRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.ID = int64(len(f.products) + 1)
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context, q ListQuery) ([]domain.Product, int64, error) {
	f.lastQuery = q
	return nil, int64(len(f.products)), nil
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	t.Run("empty name -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.Product{Name: "   ", Price: decimal.NewFromInt(10)})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("negative price -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.Product{Name: "Cucurucho", Price: decimal.NewFromInt(-1)})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("free product is allowed", func(t *testing.T) {
		p, err := svc.CreateProduct(context.Background(), domain.Product{Name: "Agua", Price: decimal.Zero})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.Price.IsZero() {
			t.Fatalf("expected zero price, got %s", p.Price)
		}
	})
}

func TestListProductsPagination(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	t.Run("defaults", func(t *testing.T) {
		page, err := svc.ListProducts(context.Background(), "  dulce ", 0, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Page != 1 || page.PageSize != DefaultPageSize {
			t.Fatalf("got page=%d size=%d", page.Page, page.PageSize)
		}
		if repo.lastQuery.Search != "dulce" || repo.lastQuery.Offset != 0 {
			t.Fatalf("unexpected query %+v", repo.lastQuery)
		}
		if page.Items == nil {
			t.Fatal("items must be an empty slice, not nil")
		}
	})

	t.Run("page size clamped and offset computed", func(t *testing.T) {
		page, _ := svc.ListProducts(context.Background(), "", 3, 500)
		if page.PageSize != MaxPageSize {
			t.Fatalf("expected clamp to %d, got %d", MaxPageSize, page.PageSize)
		}
		if repo.lastQuery.Offset != 200 || repo.lastQuery.Limit != MaxPageSize {
			t.Fatalf("unexpected query %+v", repo.lastQuery)
		}
	})
}

func TestGetProductRejectsBadID(t *testing.T) {
	svc := NewService(&fakeRepo{})
	if _, err := svc.GetProduct(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.GetProduct(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductType(t *testing.T) {
	if (domain.Product{Category: "helados"}).Type() != domain.TypeHelado {
		t.Fatal("Helados category should map to helado")
	}
	if (domain.Product{Category: "Bebidas"}).Type() != domain.TypeOtro {
		t.Fatal("other categories should map to otro")
	}
}
