package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:            "8480",
		DBHost:          "localhost",
		DBPort:          "5432",
		DBUser:          "user",
		DBPassword:      "password",
		DBName:          "picwedding",
		RedisURL:        "localhost:6379",
		Env:             "development",
		UploadURL:       "https://api.imgbb.com/1/upload",
		AdminPath:       "panel-control-x0174",
		GalleryPageSize: 6,
		TopPhotoCount:   4,
	}
}

func TestValidate_DevelopmentDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Port = "" }},
		{"zero page size", func(c *Config) { c.GalleryPageSize = 0 }},
		{"zero top count", func(c *Config) { c.TopPhotoCount = 0 }},
		{"missing admin path", func(c *Config) { c.AdminPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_ProductionRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"

	// Default dev password and empty upload key are rejected in production.
	assert.Error(t, cfg.Validate())

	cfg.UploadKey = "real-key"
	assert.Error(t, cfg.Validate())

	cfg.DBPassword = "s3cure-enough"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.GalleryPageSize)
	assert.Equal(t, 4, cfg.TopPhotoCount)
	assert.Equal(t, "panel-control-x0174", cfg.AdminPath)
	assert.Equal(t, "https://api.imgbb.com/1/upload", cfg.UploadURL)
	assert.False(t, cfg.UploadsFull)
}
