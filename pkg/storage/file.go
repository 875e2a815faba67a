package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/adrg/xdg"

	mterrors "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/format"
)

const fileExt = ".json"

// FileStore keeps one JSON envelope per map in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns the default map directory, $XDG_DATA_HOME/mindtree/maps.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "mindtree", "maps")
}

// NewFileStore creates a store rooted at baseDir, creating it if needed.
// An empty baseDir means [DefaultDir].
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		baseDir = DefaultDir()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeInvalidConfig, err, "create map dir %s", baseDir)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) mapPath(id string) string {
	return filepath.Join(s.baseDir, id+fileExt)
}

func (s *FileStore) Get(ctx context.Context, id string) (*format.Document, error) {
	if err := mterrors.ValidateMapID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.mapPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, wrapBackend(err, "read", id)
	}
	return format.UnmarshalDocument(data)
}

func (s *FileStore) Put(ctx context.Context, id string, doc *format.Document) error {
	if err := mterrors.ValidateMapID(id); err != nil {
		return err
	}
	if err := checkDoc(doc); err != nil {
		return err
	}
	data, err := format.MarshalDocument(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.mapPath(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return wrapBackend(err, "write", id)
	}
	if err := os.Rename(tmp, path); err != nil {
		return wrapBackend(err, "write", id)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := mterrors.ValidateMapID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.mapPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return wrapBackend(err, "remove", id)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeInternal, err, "read map dir")
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != fileExt {
			continue
		}
		id := strings.TrimSuffix(name, fileExt)
		if mterrors.ValidateMapID(id) == nil {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for map files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
