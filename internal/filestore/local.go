package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const directoryPerms = 0o755

// Local persists images on a mounted volume. It is the default backend.
type Local struct {
	baseDir   string
	urlPrefix string
}

var _ FileStore = (*Local)(nil)

func NewLocal(baseDir, urlPrefix string) *Local {
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	return &Local{
		baseDir:   baseDir,
		urlPrefix: urlPrefix,
	}
}

func (l *Local) WriteRecipeImage(_ context.Context, suffix string, data []byte) (string, error) {
	return l.write(recipeImageName(suffix), data)
}

func (l *Local) WriteAvatarImage(_ context.Context, suffix string, data []byte) (string, error) {
	return l.write(avatarImageName(suffix), data)
}

func (l *Local) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(l.baseDir, directoryPerms); err != nil {
		return "", fmt.Errorf("creating base directory: %w", err)
	}

	file, err := os.Create(filepath.Join(l.baseDir, name))
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return nameToURLPath(name, l.urlPrefix), nil
}

func (l *Local) DeleteURLPath(_ context.Context, urlPath string) error {
	name := urlPathToName(urlPath, l.urlPrefix)
	if name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(l.baseDir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}
