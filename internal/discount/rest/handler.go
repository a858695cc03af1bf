package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/discount/app"
	"github.com/venezia/venezia-pos/internal/discount/domain"
	dgrpc "github.com/venezia/venezia-pos/internal/discount/grpc"
	"github.com/venezia/venezia-pos/internal/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the code routes. Validation runs behind staff, management behind admin.
func (h *Handler) Register(api *gin.RouterGroup, admin, staff gin.HandlersChain) {
	g := api.Group("/admin/admin_codes")
	g.Group("", staff...).POST("/validate", h.validate)

	m := g.Group("", admin...)
	m.GET("", h.list)
	m.POST("", h.create)
	m.PATCH("/:id", h.setStatus)
}

type codeView struct {
	ID            int64            `json:"id"`
	Code          string           `json:"code"`
	Type          string           `json:"type"`
	Status        string           `json:"status"`
	StoreID       *int64           `json:"store_id,omitempty"`
	Capacity      *int             `json:"capacity,omitempty"`
	MaxUses       int              `json:"max_uses"`
	Uses          int              `json:"uses"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	DiscountType  string           `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	IsExpired     bool             `json:"is_expired"`
	CreatedAt     time.Time        `json:"created_at"`
}

func toView(c domain.Code) codeView {
	return codeView{
		ID:            c.ID,
		Code:          c.Code,
		Type:          c.Type,
		Status:        string(c.Status),
		StoreID:       c.StoreID,
		Capacity:      c.Capacity,
		MaxUses:       c.MaxUses,
		Uses:          c.Uses,
		ExpiresAt:     c.ExpiresAt,
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue,
		IsExpired:     c.IsExpired(time.Now()),
		CreatedAt:     c.CreatedAt,
	}
}

func (h *Handler) validate(c *gin.Context) {
	var req posv1.ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, "code is required")
		return
	}

	code, err := h.svc.Validate(c.Request.Context(), req.Code, req.StoreID)
	if err != nil {
		h.reject(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, dgrpc.ToWire(code))
}

func (h *Handler) list(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), app.ListFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		StoreID: int64(httpx.QueryInt(c, "store_id", 0)),
	}, httpx.QueryInt(c, "page", 1), httpx.QueryInt(c, "pageSize", app.DefaultPageSize))
	if err != nil {
		httpx.ServerError(c, "error listing codes")
		return
	}

	items := make([]codeView, 0, len(page.Items))
	for _, code := range page.Items {
		items = append(items, toView(code))
	}
	httpx.OK(c, http.StatusOK, gin.H{
		"items":    items,
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}

type createCodeRequest struct {
	Code          string           `json:"code"`
	Type          string           `json:"type"`
	Status        string           `json:"status"`
	StoreID       *int64           `json:"store_id"`
	Capacity      *int             `json:"capacity"`
	MaxUses       int              `json:"max_uses"`
	ExpiresAt     *time.Time       `json:"expires_at"`
	DiscountType  string           `json:"discount_type"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
}

func (h *Handler) create(c *gin.Context) {
	var req createCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, err.Error())
		return
	}

	code, err := h.svc.Create(c.Request.Context(), app.CreateInput{
		Code:          req.Code,
		Type:          req.Type,
		Status:        domain.Status(req.Status),
		StoreID:       req.StoreID,
		Capacity:      req.Capacity,
		MaxUses:       req.MaxUses,
		ExpiresAt:     req.ExpiresAt,
		DiscountType:  domain.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
	})
	if errors.Is(err, app.ErrInvalidInput) {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, "invalid code definition")
		return
	}
	if err != nil {
		httpx.ServerError(c, "error creating code")
		return
	}
	httpx.OK(c, http.StatusCreated, toView(code))
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) setStatus(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, "invalid code id")
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, "status is required")
		return
	}

	code, err := h.svc.SetStatus(c.Request.Context(), id, domain.Status(req.Status))
	if err != nil {
		h.reject(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, toView(code))
}

func (h *Handler) reject(c *gin.Context, err error) {
	code := dgrpc.WireCode(err)
	switch code {
	case posv1.CodeServerError:
		httpx.ServerError(c, "error checking code")
	case posv1.CodeNotFound:
		httpx.Fail(c, http.StatusNotFound, code, err.Error())
	default:
		httpx.Fail(c, http.StatusBadRequest, code, err.Error())
	}
}
