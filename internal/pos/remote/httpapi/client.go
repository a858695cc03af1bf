// Package httpapi talks to the backend REST API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/pos/catalog"
	"github.com/venezia/venezia-pos/internal/pos/domain"
	"github.com/venezia/venezia-pos/internal/pos/remote"
)

// APIError is a non-2xx answer or a body with success=false.
type APIError struct {
	Status int
	Code   string
	Msg    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server responded %d", e.Status)
	}
	return fmt.Sprintf("server responded %d: %s: %s", e.Status, e.Code, e.Msg)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithToken(token string) Option { return func(c *Client) { c.token = token } }

func WithLogger(log *slog.Logger) Option { return func(c *Client) { c.log = log } }

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

// New expects baseURL to include the /api prefix.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) ListProducts(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))

	var out posv1.ListProductsResponse
	if err := c.do(ctx, http.MethodGet, "/products?"+v.Encode(), nil, &out); err != nil {
		return catalog.Page{}, err
	}

	items := make([]domain.Product, 0, len(out.Items))
	for _, p := range out.Items {
		items = append(items, remote.ProductFromWire(p))
	}
	return catalog.Page{Items: items, Total: out.Total, Page: out.Page, PageSize: out.PageSize}, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var out posv1.Product
	err := c.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return domain.Product{}, catalog.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return remote.ProductFromWire(out), nil
}

func (c *Client) ValidateCode(ctx context.Context, code string, storeID int64) (domain.CodeInfo, error) {
	var out posv1.ValidateCodeResponse
	err := c.do(ctx, http.MethodPost, "/admin/admin_codes/validate", posv1.ValidateCodeRequest{Code: code, StoreID: storeID}, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		if rej := remote.CodeRejection(apiErr.Code); rej != nil {
			return domain.CodeInfo{}, rej
		}
	}
	if err != nil {
		return domain.CodeInfo{}, err
	}
	return remote.CodeInfoFromWire(out), nil
}

func (c *Client) SubmitSale(ctx context.Context, payload domain.SalePayload) (domain.SaleResult, error) {
	var out posv1.SubmitSaleResponse
	if err := c.do(ctx, http.MethodPost, "/sales", payload, &out); err != nil {
		return domain.SaleResult{}, err
	}
	if !out.Success {
		return domain.SaleResult{}, &APIError{Status: http.StatusOK, Code: posv1.CodeServerError, Msg: "sale not accepted"}
	}
	return domain.SaleResult{SaleID: out.SaleID, ReceiptNumber: out.ReceiptNumber, Duplicate: out.Duplicate}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "api call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)),
	)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env posv1.Envelope[json.RawMessage]
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code, apiErr.Msg = env.Error.Code, env.Error.Msg
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code, apiErr.Msg = env.Error.Code, env.Error.Msg
		}
		return apiErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
