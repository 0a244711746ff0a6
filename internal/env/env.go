// Package env provides a structure for managing application-wide dependencies.
package env

import (
	"context"
	"log/slog"

	"github.com/m-orlov/foodgram/internal/config"
	"github.com/m-orlov/foodgram/internal/database"
	"github.com/m-orlov/foodgram/internal/filestore"
	"github.com/m-orlov/foodgram/internal/log"
)

type Env struct {
	Logger   *slog.Logger
	Database *database.Database
	Files    filestore.FileStore
	Config   config.Config
}

type envKeyType struct{}

var envKey envKeyType

// WithCtx injects the environment into a context.
func WithCtx(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey, env)
}

// EnvFromCtx extracts the environment from a context. A null
// environment is returned when none was injected, so callers never
// touch a nil logger.
func EnvFromCtx(ctx context.Context) *Env {
	if env, ok := ctx.Value(envKey).(*Env); ok {
		return env
	}
	return Null()
}

func Null() *Env {
	return &Env{
		Logger: log.NullLogger(),
	}
}
