package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/catalog/app"
	"github.com/venezia/venezia-pos/internal/catalog/domain"
	cgrpc "github.com/venezia/venezia-pos/internal/catalog/grpc"
	"github.com/venezia/venezia-pos/internal/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the product routes; admin guards product creation.
func (h *Handler) Register(api *gin.RouterGroup, admin ...gin.HandlerFunc) {
	api.GET("/products", h.list)
	api.GET("/products/:id", h.get)
	api.POST("/products", append(admin, h.create)...)
}

func (h *Handler) list(c *gin.Context) {
	page, err := h.svc.ListProducts(c.Request.Context(),
		c.Query("search"),
		httpx.QueryInt(c, "page", 1),
		httpx.QueryInt(c, "pageSize", app.DefaultPageSize),
	)
	if err != nil {
		httpx.ServerError(c, "error listing products")
		return
	}

	items := make([]posv1.Product, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, cgrpc.ToWire(p))
	}
	httpx.OK(c, http.StatusOK, posv1.ListProductsResponse{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, "invalid product id")
		return
	}

	p, err := h.svc.GetProduct(c.Request.Context(), id)
	if errors.Is(err, app.ErrNotFound) {
		httpx.Fail(c, http.StatusNotFound, posv1.CodeNotFound, "product not found")
		return
	}
	if err != nil {
		httpx.ServerError(c, "error loading product")
		return
	}
	httpx.OK(c, http.StatusOK, cgrpc.ToWire(p))
}

type createProductRequest struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CurrentStock int             `json:"current_stock"`
	CategoryID   *int64          `json:"category_id"`
}

func (h *Handler) create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, err.Error())
		return
	}

	p, err := h.svc.CreateProduct(c.Request.Context(), domain.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		CurrentStock: req.CurrentStock,
		CategoryID:   req.CategoryID,
	})
	if errors.Is(err, app.ErrInvalidInput) {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, "name is required and price must not be negative")
		return
	}
	if err != nil {
		httpx.ServerError(c, "error creating product")
		return
	}
	httpx.OK(c, http.StatusCreated, cgrpc.ToWire(p))
}
