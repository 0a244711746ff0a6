package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testSecret = "this-is-a-very-long-secret-key-with-more-than-32-bytes"

func TestLoadConfigFromEnv(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*testing.T)
		wantError bool
		validate  func(*testing.T, *Config)
	}{
		{
			name: "all defaults",
			setup: func(t *testing.T) {
				t.Setenv("APP_SECRET", testSecret)
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.Env != EnvDev {
					t.Errorf("expected Env %q, got %q", EnvDev, c.Env)
				}
				if c.HostOrigin != "http://localhost:8080" {
					t.Errorf("expected HostOrigin %q, got %q", "http://localhost:8080", c.HostOrigin)
				}
				if c.AppSecret.Version != "1" {
					t.Errorf("expected AppSecret.Version %q, got %q", "1", c.AppSecret.Version)
				}
				if c.Database.Port != 5432 {
					t.Errorf("expected Database.Port 5432, got %d", c.Database.Port)
				}
				if c.Database.Host != "localhost" {
					t.Errorf("expected Database.Host %q, got %q", "localhost", c.Database.Host)
				}
				if c.FileStore.Backend != StorageLocal {
					t.Errorf("expected FileStore.Backend %q, got %q", StorageLocal, c.FileStore.Backend)
				}
				if c.FileStore.Volume != "/data/media" {
					t.Errorf("expected FileStore.Volume %q, got %q", "/data/media", c.FileStore.Volume)
				}
				if c.FileStore.URLPrefix != "/media" {
					t.Errorf("expected FileStore.URLPrefix %q, got %q", "/media", c.FileStore.URLPrefix)
				}
				if c.Pagination.PageSize != 6 {
					t.Errorf("expected Pagination.PageSize 6, got %d", c.Pagination.PageSize)
				}
				if c.Recipes.MinCookingTime != 1 || c.Recipes.MaxCookingTime != 32000 {
					t.Errorf("unexpected cooking time bounds: %d..%d",
						c.Recipes.MinCookingTime, c.Recipes.MaxCookingTime)
				}
				if c.Recipes.MinIngredientAmount != 1 || c.Recipes.MaxIngredientAmount != 32000 {
					t.Errorf("unexpected ingredient amount bounds: %d..%d",
						c.Recipes.MinIngredientAmount, c.Recipes.MaxIngredientAmount)
				}
				if c.Ingredients.Source != "" {
					t.Errorf("expected empty Ingredients.Source, got %q", c.Ingredients.Source)
				}
				if c.AppSecret.Value == nil {
					t.Error("expected AppSecret.Value to be set, got nil")
				}
			},
		},
		{
			name: "custom environment values",
			setup: func(t *testing.T) {
				t.Setenv("ENV", "PROD")
				t.Setenv("HOST_ORIGIN", "https://foodgram.example.com")
				t.Setenv("APP_SECRET", testSecret)
				t.Setenv("APP_SECRET_VERSION", "2")
				t.Setenv("DATABASE_USER", "customuser")
				t.Setenv("DATABASE_PASSWORD", "custompass")
				t.Setenv("DATABASE", "customdb")
				t.Setenv("DATABASE_HOST", "db.example.com")
				t.Setenv("DATABASE_PORT", "5433")
				t.Setenv("FILESTORE_BACKEND", "s3")
				t.Setenv("S3_ENDPOINT", "minio.example.com:9000")
				t.Setenv("S3_BUCKET", "media")
				t.Setenv("S3_ACCESS_KEY", "access")
				t.Setenv("S3_SECRET_KEY", "secret")
				t.Setenv("S3_USE_SSL", "true")
				t.Setenv("PAGE_SIZE", "12")
				t.Setenv("MAX_COOKING_TIME", "600")
				t.Setenv("INGREDIENTS_SOURCE", "/data/ingredients.json")
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.Env != EnvProd {
					t.Errorf("expected Env %q, got %q", EnvProd, c.Env)
				}
				if c.HostOrigin != "https://foodgram.example.com" {
					t.Errorf("unexpected HostOrigin %q", c.HostOrigin)
				}
				if c.AppSecret.Version != "2" {
					t.Errorf("expected AppSecret.Version %q, got %q", "2", c.AppSecret.Version)
				}
				if c.Database.Port != 5433 {
					t.Errorf("expected Database.Port 5433, got %d", c.Database.Port)
				}
				if c.FileStore.Backend != StorageS3 {
					t.Errorf("expected FileStore.Backend %q, got %q", StorageS3, c.FileStore.Backend)
				}
				if !c.FileStore.S3.UseSSL {
					t.Error("expected S3.UseSSL true")
				}
				if c.Pagination.PageSize != 12 {
					t.Errorf("expected Pagination.PageSize 12, got %d", c.Pagination.PageSize)
				}
				if c.Recipes.MaxCookingTime != 600 {
					t.Errorf("expected MaxCookingTime 600, got %d", c.Recipes.MaxCookingTime)
				}
				if c.Ingredients.Source != "/data/ingredients.json" {
					t.Errorf("unexpected Ingredients.Source %q", c.Ingredients.Source)
				}
			},
		},
		{
			name: "invalid database port",
			setup: func(t *testing.T) {
				t.Setenv("APP_SECRET", testSecret)
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
				t.Setenv("DATABASE_PORT", "not-a-port")
			},
			wantError: true,
		},
		{
			name: "invalid storage backend",
			setup: func(t *testing.T) {
				t.Setenv("APP_SECRET", testSecret)
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
				t.Setenv("FILESTORE_BACKEND", "ftp")
			},
			wantError: true,
		},
		{
			name: "invalid page size",
			setup: func(t *testing.T) {
				t.Setenv("APP_SECRET", testSecret)
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
				t.Setenv("PAGE_SIZE", "zero")
			},
			wantError: true,
		},
		{
			name: "invalid env",
			setup: func(t *testing.T) {
				t.Setenv("APP_SECRET", testSecret)
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
				t.Setenv("ENV", "STAGING")
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)

			conf, err := loadConfigFromEnv()
			if (err != nil) != tt.wantError {
				t.Fatalf("loadConfigFromEnv() error = %v, wantError %v", err, tt.wantError)
			}
			if tt.validate != nil {
				tt.validate(t, &conf)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodgram.yaml")
	contents := `
app_secret:
  value: ` + testSecret + `
  version: "3"
host_origin: https://foodgram.example.com
env: PROD
database:
  host: db.example.com
  port: 5432
  database: foodgram
  user: foodgram
  password: secretpass
pagination:
  page_size: 10
recipes:
  max_cooking_time: 240
ingredients:
  source: https://example.com/ingredients.json
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	conf, err := loadConfigFromFile(path)
	if err != nil {
		t.Fatalf("loadConfigFromFile() error = %v", err)
	}

	if conf.Env != EnvProd {
		t.Errorf("expected Env %q, got %q", EnvProd, conf.Env)
	}
	if conf.AppSecret.Version != "3" {
		t.Errorf("expected AppSecret.Version %q, got %q", "3", conf.AppSecret.Version)
	}
	if conf.Pagination.PageSize != 10 {
		t.Errorf("expected Pagination.PageSize 10, got %d", conf.Pagination.PageSize)
	}
	if conf.Recipes.MaxCookingTime != 240 {
		t.Errorf("expected MaxCookingTime 240, got %d", conf.Recipes.MaxCookingTime)
	}
	// Defaults fill what the file omits.
	if conf.Recipes.MinCookingTime != 1 {
		t.Errorf("expected MinCookingTime 1, got %d", conf.Recipes.MinCookingTime)
	}
	if conf.FileStore.Backend != StorageLocal {
		t.Errorf("expected FileStore.Backend %q, got %q", StorageLocal, conf.FileStore.Backend)
	}
	if conf.Ingredients.Source != "https://example.com/ingredients.json" {
		t.Errorf("unexpected Ingredients.Source %q", conf.Ingredients.Source)
	}
}

func TestStorageBackendValidate(t *testing.T) {
	tests := []struct {
		backend   StorageBackend
		wantError bool
	}{
		{StorageLocal, false},
		{StorageS3, false},
		{StorageBackend("ftp"), true},
		{StorageBackend(""), true},
	}

	for _, tt := range tests {
		err := tt.backend.Validate()
		if (err != nil) != tt.wantError {
			t.Errorf("Validate(%q) error = %v, wantError %v", tt.backend, err, tt.wantError)
		}
	}
}

func TestAppSecretValueValidate(t *testing.T) {
	long := AppSecretValue(testSecret)
	short := AppSecretValue("too-short")

	if err := long.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := short.Validate(); err == nil {
		t.Error("Validate() expected error for short secret")
	}
	var nilSecret *AppSecretValue
	if err := nilSecret.Validate(); err == nil {
		t.Error("Validate() expected error for nil secret")
	}
}
