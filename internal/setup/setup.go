// Package setup is responsible for setting up components.
package setup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/m-orlov/foodgram/internal/config"
	"github.com/m-orlov/foodgram/internal/database"
	"github.com/m-orlov/foodgram/internal/env"
	"github.com/m-orlov/foodgram/internal/filestore"
	fgHttp "github.com/m-orlov/foodgram/internal/http"
)

// Database opens the connection pool and applies the schema when the
// tables are absent.
func Database(ctx context.Context, conf config.Config) (*database.Database, error) {
	dbString := fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
		conf.Database.User, conf.Database.Password,
		conf.Database.Host, conf.Database.Port, conf.Database.Database)

	pool, err := pgxpool.New(ctx, dbString)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	db := database.New(pool)
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	return db, nil
}

// FileStore builds the configured image backend.
func FileStore(ctx context.Context, conf config.Config) (filestore.FileStore, error) {
	switch conf.FileStore.Backend {
	case config.StorageS3:
		s3, err := filestore.NewS3(filestore.S3Params{
			Endpoint:  conf.FileStore.S3.Endpoint,
			Bucket:    conf.FileStore.S3.Bucket,
			AccessKey: conf.FileStore.S3.AccessKey,
			SecretKey: conf.FileStore.S3.SecretKey,
			UseSSL:    conf.FileStore.S3.UseSSL,
			URLPrefix: conf.FileStore.URLPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 client: %w", err)
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensuring bucket: %w", err)
		}
		return s3, nil
	default:
		volume, err := filepath.Abs(conf.FileStore.Volume)
		if err != nil {
			return nil, fmt.Errorf("resolving volume path: %w", err)
		}
		return filestore.NewLocal(volume, conf.FileStore.URLPrefix), nil
	}
}

type catalogEntry struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// Ingredients loads the catalog from the configured source, a JSON
// file path or an HTTP(S) URL. Entries that already exist are skipped.
// An empty source disables the bootstrap. Requires env.Database.
func Ingredients(ctx context.Context, env *env.Env) error {
	source := env.Config.Ingredients.Source
	if source == "" {
		env.Logger.Info("ingredient source not configured, skipping catalog bootstrap")
		return nil
	}

	data, err := readCatalog(ctx, source)
	if err != nil {
		return fmt.Errorf("reading ingredient catalog: %w", err)
	}

	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing ingredient catalog: %w", err)
	}

	var inserted int
	for _, entry := range entries {
		if entry.Name == "" || entry.MeasurementUnit == "" {
			return fmt.Errorf("catalog entry missing name or measurement unit: %+v", entry)
		}
		added, err := env.Database.InsertIngredient(ctx, database.InsertIngredientParams{
			Name:            entry.Name,
			MeasurementUnit: entry.MeasurementUnit,
		})
		if err != nil {
			return fmt.Errorf("inserting ingredient %q: %w", entry.Name, err)
		}
		if added {
			inserted++
		}
	}

	env.Logger.Info("ingredient catalog loaded",
		slog.Int("inserted", inserted), slog.Int("total", len(entries)))
	return nil
}

func readCatalog(ctx context.Context, source string) ([]byte, error) {
	if isURL(source) {
		return fgHttp.New().FetchBytes(ctx, source)
	}
	return os.ReadFile(source)
}

func isURL(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
