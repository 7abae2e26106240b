package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-discount/internal/apperr"
	"github.com/tuanvumaihuynh/product-discount/internal/event"
	"github.com/tuanvumaihuynh/product-discount/internal/model"
	"github.com/tuanvumaihuynh/product-discount/internal/repository"
	"github.com/tuanvumaihuynh/product-discount/internal/service"
	"github.com/tuanvumaihuynh/product-discount/internal/storage/db"
)

type fakeDB struct {
	db.DB
	txCalls int
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	f.txCalls++
	return txFunc(f)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) WithDB(_ db.DB) repository.ProductRepository { return m }

func (m *mockProductRepo) CreateProduct(ctx context.Context, params repository.CreateProductParams) (model.Product, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductRepo) GetProductByID(ctx context.Context, id int64) (model.Product, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Bool(1), args.Error(2)
}

func (m *mockProductRepo) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductRepo) UpdateProduct(ctx context.Context, product model.Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

func (m *mockProductRepo) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) WithDB(_ db.DB) repository.OutboxMsgRepository { return m }

func (m *mockOutboxRepo) CreateOutboxMsg(ctx context.Context, params repository.CreateOutboxMsgParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *mockOutboxRepo) ListUnprocessedOutboxMsgs(ctx context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]repository.ListUnprocessedOutboxMsgsResult), args.Error(1)
}

func (m *mockOutboxRepo) BulkUpdateOutboxMsgs(ctx context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	return m.Called(ctx, params).Error(0)
}

type testDeps struct {
	db      *fakeDB
	product *mockProductRepo
	outbox  *mockOutboxRepo
	svc     service.ProductService
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()

	d := testDeps{
		db:      &fakeDB{},
		product: &mockProductRepo{},
		outbox:  &mockOutboxRepo{},
	}
	d.svc = service.NewProductService(d.db, d.product, d.outbox)

	t.Cleanup(func() {
		d.product.AssertExpectations(t)
		d.outbox.AssertExpectations(t)
	})

	return d
}

func outboxMsgFor(t *testing.T, topic, key string, check func(payload []byte)) any {
	t.Helper()
	return mock.MatchedBy(func(p repository.CreateOutboxMsgParams) bool {
		if p.Topic != topic || p.PartitionKey == nil || *p.PartitionKey != key {
			return false
		}
		check(p.Payload)
		return true
	})
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create product and record event", func(t *testing.T) {
		d := newTestDeps(t)
		created := model.Product{ID: 7, Name: "Keyboard", Price: 90}

		d.product.On("CreateProduct", ctx, repository.CreateProductParams{Name: "Keyboard", Price: 90}).
			Return(created, nil)
		d.outbox.On("CreateOutboxMsg", ctx, outboxMsgFor(t, event.TopicProductCreated, "7", func(payload []byte) {
			var ev event.ProductChangedEvent
			require.NoError(t, json.Unmarshal(payload, &ev))
			assert.Equal(t, event.ProductChangedEvent{
				ProductID: 7,
				Name:      "Keyboard",
				Price:     90,
				Discounts: []string{"fixed-date"},
			}, ev)
		})).Return(nil)

		product, err := d.svc.CreateProduct(ctx, service.CreateProductParams{
			Name:      "Keyboard",
			Price:     90,
			Discounts: []string{"fixed-date"},
		})
		require.NoError(t, err)
		assert.Equal(t, created, product)
		assert.Equal(t, 1, d.db.txCalls)
	})

	t.Run("Should fail when repository fails", func(t *testing.T) {
		d := newTestDeps(t)
		repoErr := errors.New("connection reset")

		d.product.On("CreateProduct", ctx, mock.Anything).Return(model.Product{}, repoErr)

		_, err := d.svc.CreateProduct(ctx, service.CreateProductParams{Name: "Keyboard", Price: 90})
		assert.ErrorIs(t, err, repoErr)
	})

	t.Run("Should fail when outbox fails", func(t *testing.T) {
		d := newTestDeps(t)
		outboxErr := errors.New("outbox down")

		d.product.On("CreateProduct", ctx, mock.Anything).Return(model.Product{ID: 1}, nil)
		d.outbox.On("CreateOutboxMsg", ctx, mock.Anything).Return(outboxErr)

		_, err := d.svc.CreateProduct(ctx, service.CreateProductParams{Name: "Keyboard", Price: 90})
		assert.ErrorIs(t, err, outboxErr)
	})
}

func TestGetProductByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return product", func(t *testing.T) {
		d := newTestDeps(t)
		want := model.Product{ID: 3, Name: "Mouse", Price: 10}
		d.product.On("GetProductByID", ctx, int64(3)).Return(want, true, nil)

		got, err := d.svc.GetProductByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Should return not found", func(t *testing.T) {
		d := newTestDeps(t)
		d.product.On("GetProductByID", ctx, int64(3)).Return(model.Product{}, false, nil)

		_, err := d.svc.GetProductByID(ctx, 3)
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

func TestListAllProducts(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps(t)
	want := []model.Product{{ID: 1, Name: "A", Price: 1}, {ID: 2, Name: "B", Price: 2}}
	d.product.On("ListAllProducts", ctx).Return(want, nil)

	got, err := d.svc.ListAllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should overwrite product and record event", func(t *testing.T) {
		d := newTestDeps(t)
		want := model.Product{ID: 5, Name: "Monitor", Price: 95}

		d.product.On("UpdateProduct", ctx, want).Return(true, nil)
		d.outbox.On("CreateOutboxMsg", ctx, outboxMsgFor(t, event.TopicProductUpdated, "5", func(payload []byte) {
			var ev event.ProductChangedEvent
			require.NoError(t, json.Unmarshal(payload, &ev))
			assert.Equal(t, []string{"weekly"}, ev.Discounts)
		})).Return(nil)

		got, err := d.svc.UpdateProduct(ctx, service.UpdateProductParams{
			ID:        5,
			Name:      "Monitor",
			Price:     95,
			Discounts: []string{"weekly"},
		})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Should report not found when no row matched", func(t *testing.T) {
		d := newTestDeps(t)
		d.product.On("UpdateProduct", ctx, mock.Anything).Return(false, nil)

		_, err := d.svc.UpdateProduct(ctx, service.UpdateProductParams{ID: 5, Name: "Monitor", Price: 95})
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should record event when a product was removed", func(t *testing.T) {
		d := newTestDeps(t)
		d.product.On("DeleteProduct", ctx, int64(9)).Return(true, nil)
		d.outbox.On("CreateOutboxMsg", ctx, outboxMsgFor(t, event.TopicProductDeleted, "9", func(payload []byte) {
			assert.JSONEq(t, `{"product_id":9}`, string(payload))
		})).Return(nil)

		assert.NoError(t, d.svc.DeleteProduct(ctx, 9))
	})

	t.Run("Should be a no-op for a missing product", func(t *testing.T) {
		d := newTestDeps(t)
		d.product.On("DeleteProduct", ctx, int64(9)).Return(false, nil)

		assert.NoError(t, d.svc.DeleteProduct(ctx, 9))
		d.outbox.AssertNotCalled(t, "CreateOutboxMsg", mock.Anything, mock.Anything)
	})
}
