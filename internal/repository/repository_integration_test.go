//go:build integration

package repository_test

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tuanvumaihuynh/product-discount/internal/config"
	"github.com/tuanvumaihuynh/product-discount/internal/model"
	"github.com/tuanvumaihuynh/product-discount/internal/repository"
	"github.com/tuanvumaihuynh/product-discount/internal/storage/db"
	"github.com/tuanvumaihuynh/product-discount/pkg/ptr"
)

const defaultPostgresTestImage = "docker.io/library/postgres:17-alpine"

func newTestDB(t *testing.T) *db.Client {
	t.Helper()

	ctx := context.Background()
	image := os.Getenv("POSTGRES_TEST_IMAGE")
	if strings.TrimSpace(image) == "" {
		image = defaultPostgresTestImage
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: image,
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "products",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start postgres test container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	port, err := strconv.Atoi(mappedPort.Port())
	require.NoError(t, err)

	pool, err := db.NewPgxPool(ctx, config.Postgres{
		Host:            host,
		Port:            port,
		User:            "postgres",
		Password:        "postgres",
		DB:              "products",
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))

	return db.NewClient(pool)
}

func TestProductRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	client := newTestDB(t)
	repo := repository.NewProductRepository(client)

	first, err := repo.CreateProduct(ctx, repository.CreateProductParams{Name: "Lamp", Price: 90})
	require.NoError(t, err)
	second, err := repo.CreateProduct(ctx, repository.CreateProductParams{Name: "Desk", Price: 249.99})
	require.NoError(t, err)

	t.Run("Should assign distinct ids", func(t *testing.T) {
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, "Lamp", first.Name)
		assert.InDelta(t, 90, first.Price, 1e-9)
	})

	t.Run("Should read back created product", func(t *testing.T) {
		got, ok, err := repo.GetProductByID(ctx, second.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, second, got)
	})

	t.Run("Should list in insertion order", func(t *testing.T) {
		all, err := repo.ListAllProducts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Product{first, second}, all)
	})

	t.Run("Should overwrite name and price", func(t *testing.T) {
		ok, err := repo.UpdateProduct(ctx, model.Product{ID: first.ID, Name: "Floor lamp", Price: 85.5})
		require.NoError(t, err)
		assert.True(t, ok)

		got, _, err := repo.GetProductByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Floor lamp", got.Name)
		assert.InDelta(t, 85.5, got.Price, 1e-9)

		ok, err = repo.UpdateProduct(ctx, model.Product{ID: 999999, Name: "ghost", Price: 1})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should delete idempotently", func(t *testing.T) {
		ok, err := repo.DeleteProduct(ctx, second.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, found, err := repo.GetProductByID(ctx, second.ID)
		require.NoError(t, err)
		assert.False(t, found)

		ok, err = repo.DeleteProduct(ctx, second.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should roll back product and outbox writes together", func(t *testing.T) {
		outboxRepo := repository.NewOutboxMsgRepository(client)
		var created model.Product

		err := client.WithTx(ctx, func(tx db.DB) error {
			var err error
			created, err = repo.WithDB(tx).CreateProduct(ctx, repository.CreateProductParams{Name: "Chair", Price: 40})
			require.NoError(t, err)
			require.NoError(t, outboxRepo.WithDB(tx).CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        "product.created",
				Payload:      []byte(`{}`),
				PartitionKey: ptr.New(strconv.FormatInt(created.ID, 10)),
			}))
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		_, found, err := repo.GetProductByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, found)

		var pending []repository.ListUnprocessedOutboxMsgsResult
		require.NoError(t, client.WithTx(ctx, func(tx db.DB) error {
			var err error
			pending, err = outboxRepo.WithDB(tx).ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 10})
			return err
		}))
		assert.Empty(t, pending)
	})
}

func TestOutboxMsgRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	client := newTestDB(t)
	repo := repository.NewOutboxMsgRepository(client)

	for _, topic := range []string{"product.created", "product.updated"} {
		require.NoError(t, repo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      map[string]string{"X-Correlation-ID": "c-1"},
			Payload:      []byte(`{"product_id":1}`),
			PartitionKey: ptr.New("1"),
		}))
	}

	listPending := func() []repository.ListUnprocessedOutboxMsgsResult {
		var msgs []repository.ListUnprocessedOutboxMsgsResult
		require.NoError(t, client.WithTx(ctx, func(tx db.DB) error {
			var err error
			msgs, err = repo.WithDB(tx).ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 10})
			return err
		}))
		return msgs
	}

	pending := listPending()
	require.Len(t, pending, 2)
	assert.Equal(t, "product.created", pending[0].Topic)
	assert.Equal(t, map[string]string{"X-Correlation-ID": "c-1"}, pending[0].Headers)
	assert.JSONEq(t, `{"product_id":1}`, string(pending[0].Payload))

	require.NoError(t, repo.BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
		Items: []repository.BulkUpdateOutboxMsgsItem{
			{ID: pending[0].ID},
			{ID: pending[1].ID, Error: ptr.New("broker unavailable")},
		},
	}))

	assert.Empty(t, listPending())
}
