package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/product-discount/internal/model"
	"github.com/tuanvumaihuynh/product-discount/internal/storage/db"
)

type CreateProductParams struct {
	Name  string
	Price float64
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	// CreateProduct inserts a product and returns it with its generated ID.
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	// GetProductByID reports ok=false when no product has the given ID.
	GetProductByID(ctx context.Context, id int64) (product model.Product, ok bool, err error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	// UpdateProduct overwrites name and price. It reports ok=false when no row matched.
	UpdateProduct(ctx context.Context, product model.Product) (ok bool, err error)
	// DeleteProduct removes the product if present. It reports whether a row was removed.
	DeleteProduct(ctx context.Context, id int64) (ok bool, err error)
}

type productRow struct {
	ID    int64          `db:"id"`
	Name  string         `db:"name"`
	Price pgtype.Numeric `db:"price"`
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO products (name, price)
		VALUES (@name, @price)
		RETURNING id, name, price;
	`, pgx.NamedArgs{
		"name":  params.Name,
		"price": float64ToNumeric(params.Price),
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return model.Product{}, fmt.Errorf("collect inserted product: %w", err)
	}

	return productRowToModelProduct(row)
}

func (r productRepository) GetProductByID(ctx context.Context, id int64) (model.Product, bool, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price
		FROM products
		WHERE id = @id;
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Product{}, false, fmt.Errorf("select product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, false, nil
		}
		return model.Product{}, false, fmt.Errorf("collect product: %w", err)
	}

	product, err := productRowToModelProduct(row)
	if err != nil {
		return model.Product{}, false, err
	}

	return product, true, nil
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price
		FROM products
		ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		product, err := productRowToModelProduct(row)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET
			name  = @name,
			price = @price
		WHERE id = @id;
	`, pgx.NamedArgs{
		"id":    product.ID,
		"name":  product.Name,
		"price": float64ToNumeric(product.Price),
	})
	if err != nil {
		return false, fmt.Errorf("update product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM products
		WHERE id = @id;
	`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func productRowToModelProduct(row productRow) (model.Product, error) {
	price, err := numericToFloat64(row.Price)
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price of product %d: %w", row.ID, err)
	}

	return model.Product{
		ID:    row.ID,
		Name:  row.Name,
		Price: price,
	}, nil
}
