package storage

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
)

// ArtifactStore defines where the build workflow reads its code template
// and writes the generated backend code and endpoint schema
type ArtifactStore interface {
	ReadCodeTemplate(ctx context.Context) (string, error)
	ReadBackendCode(ctx context.Context) (string, error)
	SaveBackendCode(ctx context.Context, contents string) error
	SaveAPIEndpoints(ctx context.Context, schema string) error
}
