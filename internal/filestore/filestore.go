// Package filestore stores uploaded images and maps them to URL paths.
package filestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	recipePrefix = "recipe"
	avatarPrefix = "avatar"
)

const (
	DefaultURLPrefix = "/media"
)

type FileStore interface {
	WriteRecipeImage(ctx context.Context, suffix string, data []byte) (urlPath string, err error)
	WriteAvatarImage(ctx context.Context, suffix string, data []byte) (urlPath string, err error)

	DeleteURLPath(ctx context.Context, urlPath string) error
}

// recipeImageName produces a collision-free object name like
// recipe_7f9c24e5-....png.
func recipeImageName(suffix string) string {
	return fmt.Sprintf("%s_%s%s", recipePrefix, uuid.NewString(), suffix)
}

func avatarImageName(suffix string) string {
	return fmt.Sprintf("%s_%s%s", avatarPrefix, uuid.NewString(), suffix)
}

func nameToURLPath(name, urlPrefix string) string {
	return "/" + strings.Trim(urlPrefix, "/") + "/" + name
}

func urlPathToName(urlPath, urlPrefix string) string {
	name := strings.Trim(urlPath, "/")
	name = strings.TrimPrefix(name, strings.Trim(urlPrefix, "/"))
	return strings.TrimLeft(name, "/")
}

// FileURL joins a host origin with a stored URL path.
func FileURL(host, urlPath string) string {
	if urlPath == "" {
		return ""
	}
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(urlPath, "/")
}
