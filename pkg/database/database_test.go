package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "graphics", Password: "pw", DBName: "graphics"}
	assert.Equal(t, "postgres://graphics:pw@db:5432/graphics?sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	assert.Equal(t, "postgres://graphics:pw@db:5432/graphics?sslmode=require", cfg.DSN())
}
