// Package config reads the service settings from the environment. main loads a
// .env file into the environment first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/justsurfingit/temu/internal/wizard"
)

const (
	StorageBlob = "blob"
	StorageDisk = "disk"
)

type Config struct {
	Port           string
	DatabaseURL    string
	AllowedOrigins []string
	SaveTimeout    time.Duration

	StorageDriver string
	BlobToken     string
	BlobBaseURL   string
	UploadDir     string
	UploadURL     string
	MaxPhotoBytes int64
	MaxCVBytes    int64

	GeminiAPIKey string
	GeminiModel  string
}

// Load reads the environment. Malformed values are configuration errors; a
// missing blob token is not, since uploads report it when they are attempted.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		DatabaseURL:   getenv("DATABASE_URL", "host=localhost user=postgres password=password dbname=temu port=5432 sslmode=disable"),
		StorageDriver: getenv("STORAGE_DRIVER", StorageBlob),
		BlobToken:     os.Getenv("BLOB_READ_WRITE_TOKEN"),
		BlobBaseURL:   getenv("BLOB_BASE_URL", "https://blob.vercel-storage.com"),
		UploadDir:     getenv("UPLOAD_DIR", "./uploads"),
		UploadURL:     getenv("UPLOAD_PUBLIC_URL", "http://localhost:8080/uploads"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-2.5-flash"),
	}

	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	var err error
	if cfg.SaveTimeout, err = duration("SAVE_TIMEOUT", wizard.DefaultSaveTimeout); err != nil {
		return nil, err
	}
	if cfg.MaxPhotoBytes, err = bytesize("MAX_PHOTO_BYTES", 2<<20); err != nil {
		return nil, err
	}
	if cfg.MaxCVBytes, err = bytesize("MAX_CV_BYTES", 5<<20); err != nil {
		return nil, err
	}
	if cfg.StorageDriver != StorageBlob && cfg.StorageDriver != StorageDisk {
		return nil, &wizard.ConfigurationError{
			Setting: "STORAGE_DRIVER",
			Message: fmt.Sprintf("unknown driver %q, use %q or %q", cfg.StorageDriver, StorageBlob, StorageDisk),
		}
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, &wizard.ConfigurationError{Setting: key, Message: fmt.Sprintf("invalid duration %q", raw)}
	}
	return d, nil
}

func bytesize(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, &wizard.ConfigurationError{Setting: key, Message: fmt.Sprintf("invalid byte size %q", raw)}
	}
	return n, nil
}
