package rest

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/auth"
	"github.com/venezia/venezia-pos/internal/httpx"
	"github.com/venezia/venezia-pos/internal/sales/app"
	"github.com/venezia/venezia-pos/internal/sales/domain"
	sgrpc "github.com/venezia/venezia-pos/internal/sales/grpc"
	"github.com/venezia/venezia-pos/internal/sales/report"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc  *app.Service
	live http.Handler
}

// NewHandler takes the websocket feed; a nil live handler leaves /sales/live unmounted.
func NewHandler(svc *app.Service, live http.Handler) *Handler {
	return &Handler{svc: svc, live: live}
}

func (h *Handler) Register(api *gin.RouterGroup, admin, staff gin.HandlersChain) {
	g := api.Group("/sales")
	s := g.Group("", staff...)
	s.POST("", h.create)
	s.GET("/recent", h.recent)

	a := g.Group("", admin...)
	a.GET("/export", h.export)
	if h.live != nil {
		a.GET("/live", gin.WrapH(h.live))
	}
}

type saleView struct {
	ID            int64            `json:"id"`
	ReceiptNumber string           `json:"receipt_number"`
	StoreID       *int64           `json:"store_id,omitempty"`
	Items         []posv1.SaleItem `json:"items"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Discount      decimal.Decimal  `json:"discount"`
	Total         decimal.Decimal  `json:"total"`
	PaymentMethod string           `json:"payment_method"`
	Code          string           `json:"code,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

func toView(s domain.Sale) saleView {
	items := make([]posv1.SaleItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, posv1.SaleItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
			Meta:      it.Meta,
		})
	}
	return saleView{
		ID:            s.ID,
		ReceiptNumber: s.ReceiptNumber(),
		StoreID:       s.StoreID,
		Items:         items,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		Code:          s.Code,
		CreatedAt:     s.CreatedAt,
	}
}

func (h *Handler) create(c *gin.Context) {
	var req posv1.SubmitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, err.Error())
		return
	}

	in := sgrpc.FromWire(&req)
	if claims, ok := auth.FromContext(c); ok {
		in.UserID = claims.UserID
		if in.StoreID == 0 {
			in.StoreID = claims.StoreID
		}
	}

	resp, err := h.svc.CreateSale(c.Request.Context(), in)
	if err != nil {
		switch code := sgrpc.WireCode(err); code {
		case posv1.CodeInvalid:
			httpx.Fail(c, http.StatusBadRequest, code, err.Error())
		case posv1.CodeNotFound:
			httpx.Fail(c, http.StatusNotFound, code, err.Error())
		default:
			httpx.ServerError(c, "error processing sale")
		}
		return
	}

	status := http.StatusCreated
	if resp.Duplicate {
		status = http.StatusOK
	}
	httpx.OK(c, status, posv1.SubmitSaleResponse{
		Success:       true,
		SaleID:        resp.SaleID,
		ReceiptNumber: resp.ReceiptNumber,
		Duplicate:     resp.Duplicate,
	})
}

func (h *Handler) recent(c *gin.Context) {
	sales, err := h.svc.Recent(c.Request.Context(), httpx.QueryInt(c, "limit", app.DefaultRecentLimit))
	if err != nil {
		httpx.ServerError(c, "error listing sales")
		return
	}

	out := make([]saleView, 0, len(sales))
	for _, s := range sales {
		out = append(out, toView(s))
	}
	httpx.OK(c, http.StatusOK, out)
}

// export answers GET /sales/export?from=2006-01-02&to=2006-01-02, both days inclusive.
func (h *Handler) export(c *gin.Context) {
	from, errFrom := time.ParseInLocation(dateLayout, c.Query("from"), time.Local)
	to, errTo := time.ParseInLocation(dateLayout, c.Query("to"), time.Local)
	if errFrom != nil || errTo != nil {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, "from and to must be YYYY-MM-DD")
		return
	}

	sales, err := h.svc.Range(c.Request.Context(), from, to.AddDate(0, 0, 1))
	if errors.Is(err, app.ErrInvalidRange) {
		httpx.Fail(c, http.StatusBadRequest, posv1.CodeInvalid, "from must not be after to")
		return
	}
	if err != nil {
		httpx.ServerError(c, "error loading sales")
		return
	}

	file, err := report.Workbook(sales)
	if err != nil {
		httpx.ServerError(c, "error building export")
		return
	}

	name := fmt.Sprintf("ventas_%s_%s.xlsx", from.Format(dateLayout), to.Format(dateLayout))
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := file.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
