package db

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-discount/internal/config"
)

func TestConnectionString(t *testing.T) {
	t.Run("Should escape credentials", func(t *testing.T) {
		cfg := config.Postgres{
			Host:     "db.internal",
			Port:     5432,
			User:     "app",
			Password: "p@ss/word:1",
			DB:       "products",
			SSLMode:  "disable",
		}

		dsn := connectionString(cfg)

		pgConf, err := pgxpool.ParseConfig(dsn)
		require.NoError(t, err)
		assert.Equal(t, "db.internal", pgConf.ConnConfig.Host)
		assert.Equal(t, uint16(5432), pgConf.ConnConfig.Port)
		assert.Equal(t, "app", pgConf.ConnConfig.User)
		assert.Equal(t, "p@ss/word:1", pgConf.ConnConfig.Password)
		assert.Equal(t, "products", pgConf.ConnConfig.Database)
	})

	t.Run("Should omit empty ssl mode", func(t *testing.T) {
		dsn := connectionString(config.Postgres{Host: "localhost", Port: 5432, User: "u", Password: "p", DB: "d"})
		assert.Equal(t, "postgres://u:p@localhost:5432/d", dsn)
	})
}
