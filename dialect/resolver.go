package dialect

import (
	"context"
	"os"
	"path/filepath"
)

// Resolver supplies the raw bytes of a named definition document. Include
// elements are resolved through the same interface, so a resolver decides
// what an include name means (a file next to the root document, an
// embedded asset, a remote fetch).
type Resolver interface {
	Resolve(ctx context.Context, name string) ([]byte, error)
}

// DirResolver resolves document names against a directory.
type DirResolver struct {
	Root string
}

func (r DirResolver) Resolve(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.Root, filepath.Clean(name)))
}

// FileResolver resolves a root document by path and its includes relative
// to the root document's directory.
func FileResolver(path string) (Resolver, string) {
	return DirResolver{Root: filepath.Dir(path)}, filepath.Base(path)
}

// MapResolver resolves documents from an in-memory map. Useful for tests
// and embedded dialects.
type MapResolver map[string][]byte

func (r MapResolver) Resolve(_ context.Context, name string) ([]byte, error) {
	data, ok := r[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}
