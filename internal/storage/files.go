package storage

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rohankatakam/autogippity/internal/errors"
)

// Paths locates the workflow artifacts on disk
type Paths struct {
	CodeTemplate string
	ExecMain     string
	APISchema    string
}

// FileStore implements ArtifactStore on the local filesystem
type FileStore struct {
	paths  Paths
	logger *slog.Logger
}

// NewFileStore creates a filesystem artifact store
func NewFileStore(paths Paths) *FileStore {
	return &FileStore{
		paths:  paths,
		logger: slog.Default().With("component", "storage"),
	}
}

// ReadCodeTemplate returns the contents of the code template file
func (s *FileStore) ReadCodeTemplate(ctx context.Context) (string, error) {
	return s.read(ctx, s.paths.CodeTemplate, "code template")
}

// ReadBackendCode returns the previously generated backend code
func (s *FileStore) ReadBackendCode(ctx context.Context) (string, error) {
	return s.read(ctx, s.paths.ExecMain, "backend code")
}

func (s *FileStore) read(ctx context.Context, path, what string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", errors.FileSystemErrorf(stderrors.Join(ErrNotFound, err), "%s not found", what).
				WithContext(errors.ContextPath, path)
		}
		return "", errors.FileSystemErrorf(err, "failed to read %s", what).
			WithContext(errors.ContextPath, path)
	}

	s.logger.Debug("read artifact", "kind", what, "path", path, "bytes", len(data))
	return string(data), nil
}

// SaveBackendCode writes the generated backend entry point
func (s *FileStore) SaveBackendCode(ctx context.Context, contents string) error {
	return s.write(ctx, s.paths.ExecMain, contents, "backend code")
}

// SaveAPIEndpoints writes the endpoint schema document
func (s *FileStore) SaveAPIEndpoints(ctx context.Context, schema string) error {
	return s.write(ctx, s.paths.APISchema, schema, "api endpoints")
}

func (s *FileStore) write(ctx context.Context, path, contents, what string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return errors.ConfigErrorf("no path configured for %s", what)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.FileSystemErrorf(err, "failed to create directory for %s", what).
			WithContext(errors.ContextPath, path)
	}

	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		return errors.FileSystemErrorf(err, "failed to write %s", what).
			WithContext(errors.ContextPath, path)
	}

	s.logger.Info("saved artifact", "kind", what, "path", path, "bytes", len(contents))
	return nil
}
