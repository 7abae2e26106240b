package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tuanvumaihuynh/product-discount/internal/apperr"
	"github.com/tuanvumaihuynh/product-discount/internal/event"
	"github.com/tuanvumaihuynh/product-discount/internal/model"
	"github.com/tuanvumaihuynh/product-discount/internal/repository"
	"github.com/tuanvumaihuynh/product-discount/internal/storage/db"
	"github.com/tuanvumaihuynh/product-discount/pkg/outbox"
)

type CreateProductParams struct {
	Name  string
	Price float64
	// Discounts names the discount rules already applied to Price.
	Discounts []string
}

type UpdateProductParams struct {
	ID        int64
	Name      string
	Price     float64
	Discounts []string
}

// ProductService stores products exactly as given; pricing decisions are made by the caller.
type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	// GetProductByID returns apperr.ProductNotFoundErr when the product does not exist.
	GetProductByID(ctx context.Context, id int64) (model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	// UpdateProduct does not look the product up first; callers check existence
	// with GetProductByID. A row deleted in between yields apperr.ProductNotFoundErr.
	UpdateProduct(ctx context.Context, params UpdateProductParams) (model.Product, error)
	// DeleteProduct is idempotent.
	DeleteProduct(ctx context.Context, id int64) error
}

type productService struct {
	db            db.DB
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	var product model.Product

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		product, err = s.productRepo.
			WithDB(db).
			CreateProduct(ctx, repository.CreateProductParams{
				Name:  params.Name,
				Price: params.Price,
			})
		if err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		return s.publish(ctx, db, event.TopicProductCreated, product.ID, event.ProductChangedEvent{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Discounts: params.Discounts,
		})
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id int64) (model.Product, error) {
	product, ok, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get product by id: %w", err)
	}
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}

	return product, nil
}

func (s *productService) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list all products: %w", err)
	}

	return products, nil
}

func (s *productService) UpdateProduct(ctx context.Context, params UpdateProductParams) (model.Product, error) {
	product := model.Product{
		ID:    params.ID,
		Name:  params.Name,
		Price: params.Price,
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		ok, err := s.productRepo.
			WithDB(db).
			UpdateProduct(ctx, product)
		if err != nil {
			return fmt.Errorf("product repository update product: %w", err)
		}
		if !ok {
			return apperr.ProductNotFoundErr
		}

		return s.publish(ctx, db, event.TopicProductUpdated, product.ID, event.ProductChangedEvent{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Discounts: params.Discounts,
		})
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		ok, err := s.productRepo.
			WithDB(db).
			DeleteProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository delete product: %w", err)
		}
		if !ok {
			return nil
		}

		return s.publish(ctx, db, event.TopicProductDeleted, id, event.ProductDeletedEvent{
			ProductID: id,
		})
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

// publish stores ev in the outbox within the caller's transaction, keyed by
// product ID. Within a topic a product's events land on one partition, and
// the relay produces rows sharing a key in creation order. Ordering across
// the created, updated and deleted topics is not guaranteed.
func (s *productService) publish(ctx context.Context, db db.DB, topic string, productID int64, ev any) error {
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := strconv.FormatInt(productID, 10)
	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: &key,
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}
