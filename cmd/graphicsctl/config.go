package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"graphics-server/pkg/database"
	"graphics-server/pkg/utils"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// cliConfig is the subset of the server configuration the CLI needs.
type cliConfig struct {
	DBHost     string `env:"DB_HOST" env-required:"true"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-required:"true"`
	DBName     string `env:"DB_NAME" env-required:"true"`
	DBSSLMode  string `env:"DB_SSL_MODE" env-default:"disable"`
	DBPassword string `env:"DB_PASSWORD"`

	LockTimeout time.Duration `env:"MIGRATE_LOCK_TIMEOUT" env-default:"30s"`
}

func loadCLIConfig(envFilePath string) (*cliConfig, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			_ = godotenv.Load(envFilePath)
		}
	}

	var cfg cliConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	password, err := utils.ReadSecretOrEnv("db_password", "DB_PASSWORD")
	if err != nil && !errors.Is(err, utils.ErrSecretNotFound) {
		return nil, err
	}
	if password != "" {
		cfg.DBPassword = password
	}
	return &cfg, nil
}

func (c *cliConfig) connect(ctx context.Context) (*pgxpool.Pool, error) {
	return database.Connect(ctx, database.Config{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
		MaxConns: 2,
	}, zap.NewNop())
}
