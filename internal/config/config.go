// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	Env            string `mapstructure:"APP_ENV"`

	// Image host (ImgBB-compatible upload endpoint).
	UploadURL string `mapstructure:"UPLOAD_URL"`
	UploadKey string `mapstructure:"UPLOAD_KEY"`
	// UploadsFull starts the server in "storage full" mode, rejecting uploads.
	UploadsFull bool `mapstructure:"UPLOADS_FULL"`

	// Hidden path segment for the moderation panel routes.
	AdminPath string `mapstructure:"ADMIN_PATH"`

	// Gallery tuning.
	GalleryPageSize int `mapstructure:"GALLERY_PAGE_SIZE"`
	TopPhotoCount   int `mapstructure:"TOP_PHOTO_COUNT"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; environment variables and defaults suffice.
	_ = viper.ReadInConfig()

	viper.SetDefault("PORT", "8480")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "picwedding")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("UPLOAD_URL", "https://api.imgbb.com/1/upload")
	viper.SetDefault("UPLOAD_KEY", "")
	viper.SetDefault("UPLOADS_FULL", false)
	viper.SetDefault("ADMIN_PATH", "panel-control-x0174")
	viper.SetDefault("GALLERY_PAGE_SIZE", 6)
	viper.SetDefault("TOP_PHOTO_COUNT", 4)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and sane.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.GalleryPageSize < 1 {
		return errors.New("GALLERY_PAGE_SIZE must be at least 1")
	}
	if c.TopPhotoCount < 1 {
		return errors.New("TOP_PHOTO_COUNT must be at least 1")
	}
	if c.AdminPath == "" {
		return errors.New("ADMIN_PATH is required")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.UploadKey == "" {
			return errors.New("UPLOAD_KEY is required in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}
