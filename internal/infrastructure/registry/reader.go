package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/pkg/filesystem"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// FileReader reads the service registry from the first candidate path that exists.
type FileReader struct {
	candidates []string
}

// NewFileReader builds a reader over the ordered candidate paths. A leading
// "~/" is expanded.
func NewFileReader(candidates []string) *FileReader {
	if len(candidates) == 0 {
		candidates = domain.DefaultRegistryPaths
	}
	expanded := make([]string, len(candidates))
	for i, c := range candidates {
		expanded[i] = filesystem.ExpandPath(c)
	}
	return &FileReader{candidates: expanded}
}

// Candidates returns the lookup order.
func (r *FileReader) Candidates() []string {
	return append([]string(nil), r.candidates...)
}

// Load implements ports.RegistryReader. A malformed first match is an error;
// the reader never falls through to later candidates after a parse failure.
func (r *FileReader) Load(context.Context) (domain.Registry, error) {
	for _, path := range r.candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return domain.Registry{}, fmt.Errorf("%w: %s: %v", domain.ErrRegistryParse, path, err)
		}
		if info.IsDir() {
			return domain.Registry{}, fmt.Errorf("%w: %s is a directory", domain.ErrRegistryParse, path)
		}
		return parseFile(path)
	}
	return domain.Registry{}, fmt.Errorf("%w (tried %s)", domain.ErrRegistryNotFound, strings.Join(r.candidates, ", "))
}

func parseFile(path string) (domain.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Registry{}, fmt.Errorf("%w: %s: %v", domain.ErrRegistryParse, path, err)
	}

	reg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return domain.Registry{}, fmt.Errorf("%w: %s: %v", domain.ErrRegistryParse, path, err)
	}
	reg.Source = path
	return reg, nil
}

var _ ports.RegistryReader = (*FileReader)(nil)
