package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tuanvumaihuynh/product-discount/internal/discount"
	"github.com/tuanvumaihuynh/product-discount/internal/http/metric"
	"github.com/tuanvumaihuynh/product-discount/internal/model"
	"github.com/tuanvumaihuynh/product-discount/internal/service"
	"github.com/tuanvumaihuynh/product-discount/pkg/validator"
)

// ProductRequest is the body of create and update requests. An "id" field, if
// present, is ignored.
type ProductRequest struct {
	Name  string   `json:"name" validate:"required,notblank,max=255"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

type ProductResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type productHandler struct {
	logger    *slog.Logger
	metrics   *metric.Metrics
	validator validator.Validator

	productSvc service.ProductService
	evaluator  *discount.Evaluator
	today      func() time.Time
}

func newProductHandler(
	logger *slog.Logger,
	metrics *metric.Metrics,
	validator validator.Validator,
	productSvc service.ProductService,
	evaluator *discount.Evaluator,
	today func() time.Time,
) *productHandler {
	return &productHandler{
		logger:     logger,
		metrics:    metrics,
		validator:  validator,
		productSvc: productSvc,
		evaluator:  evaluator,
		today:      today,
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.productSvc.ListAllProducts(r.Context())
	if err != nil {
		return fmt.Errorf("product service list all products: %w", err)
	}

	items := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		items = append(items, toProductResponse(product))
	}

	return writeJSON(w, http.StatusOK, items)
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := bindPathID(r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.GetProductByID(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get product by id: %w", err)
	}

	return writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	body, err := h.decodeProductRequest(w, r)
	if err != nil {
		return err
	}

	priced := h.applyDiscount(r.Context(), *body.Price)

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:      body.Name,
		Price:     priced.Price,
		Discounts: priced.Applied,
	})
	if err != nil {
		return fmt.Errorf("product service create product: %w", err)
	}

	return writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := bindPathID(r)
	if err != nil {
		return err
	}

	body, err := h.decodeProductRequest(w, r)
	if err != nil {
		return err
	}

	existing, err := h.productSvc.GetProductByID(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get product by id: %w", err)
	}

	priced := h.applyDiscount(r.Context(), *body.Price)

	product, err := h.productSvc.UpdateProduct(r.Context(), service.UpdateProductParams{
		ID:        existing.ID,
		Name:      body.Name,
		Price:     priced.Price,
		Discounts: priced.Applied,
	})
	if err != nil {
		return fmt.Errorf("product service update product: %w", err)
	}

	return writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := bindPathID(r)
	if err != nil {
		return err
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		return fmt.Errorf("product service delete product: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *productHandler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (ProductRequest, error) {
	var body ProductRequest
	if err := decodeJSONBody(w, r, &body); err != nil {
		return ProductRequest{}, err
	}

	if err := h.validator.Validate(body); err != nil {
		return ProductRequest{}, fmt.Errorf("validate product request: %w", err)
	}

	return body, nil
}

// applyDiscount prices a submitted amount against today's calendar date.
func (h *productHandler) applyDiscount(ctx context.Context, price float64) discount.Result {
	today := h.today()
	res := h.evaluator.Evaluate(today, price)

	if len(res.Applied) > 0 {
		h.logger.InfoContext(ctx, "discount applied",
			slog.String("date", today.Format(time.DateOnly)),
			slog.Float64("submitted_price", price),
			slog.Float64("price", res.Price),
			slog.Any("rules", res.Applied),
		)
		for _, rule := range res.Applied {
			h.metrics.DiscountsApplied.WithLabelValues(rule).Inc()
		}
	}

	return res
}

func toProductResponse(product model.Product) ProductResponse {
	return ProductResponse{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
	}
}
