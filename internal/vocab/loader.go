package vocab

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader reads raw vocabulary document bytes. It is the external
// document-loader collaborator; the registry never touches storage itself.
type Loader interface {
	Load(path string) ([]byte, error)
}

// FileLoader reads documents from the filesystem. Root, when set, anchors
// relative paths.
type FileLoader struct {
	Root string
}

// Load reads the document at path.
func (l FileLoader) Load(path string) ([]byte, error) {
	if l.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.Root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("read vocabulary document: %w", err)
	}
	return data, nil
}

// MapLoader serves in-memory documents keyed by path. Test fixture.
type MapLoader map[string][]byte

// Load returns the document registered under path.
func (l MapLoader) Load(path string) ([]byte, error) {
	data, ok := l[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrDocumentNotFound)
	}
	return data, nil
}
