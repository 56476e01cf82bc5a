package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"item-catalog-service/internal/domain"
	"item-catalog-service/internal/logger"
	"item-catalog-service/internal/query"
)

// Predefined errors for store operations
var (
	ErrDatasetNotFound = errors.New("store: dataset not found")
	ErrItemNotFound    = errors.New("store: item not found")
	ErrInvalidCategory = errors.New("store: invalid category")
)

// ReadItems parses the whole dataset file as a JSON array.
func ReadItems(path string) ([]domain.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

// WriteItems replaces the dataset file with items. The array is written to
// a temporary file in the same directory and renamed over path, so readers
// see either the old or the new content.
func WriteItems(path string, items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("store: encode items: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("store: replace %s: %w", path, err)
	}
	return nil
}

// FileStore implements ItemStorer on top of a single JSON array file.
type FileStore struct {
	path     string
	lookup   query.LookupMode
	logger   *logger.Logger
	observer SizeObserver

	// mu serializes read-modify-write cycles inside this process. Other
	// processes writing the same file are not coordinated.
	mu sync.Mutex
}

// FileStoreOption customizes a FileStore.
type FileStoreOption func(*FileStore)

// WithSizeObserver reports the record count after each load.
func WithSizeObserver(o SizeObserver) FileStoreOption {
	return func(s *FileStore) { s.observer = o }
}

// WithLogger sets the store logger.
func WithLogger(l *logger.Logger) FileStoreOption {
	return func(s *FileStore) { s.logger = l }
}

// NewFileStore creates a FileStore for the dataset at path.
func NewFileStore(path string, lookup query.LookupMode, opts ...FileStoreOption) *FileStore {
	s := &FileStore{path: path, lookup: lookup, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load(ctx context.Context) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := ReadItems(s.path)
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.ObserveDatasetSize(len(items))
	}
	return items, nil
}

func (s *FileStore) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.load(ctx)
}

func (s *FileStore) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	pos, err := query.Locate(items, s.lookup, id)
	if err != nil {
		return nil, ErrItemNotFound
	}
	item := items[pos]
	return &item, nil
}

// CreateItem validates category, assigns id len+1 and appends the record.
// Nothing is written when the category is rejected.
func (s *FileStore) CreateItem(ctx context.Context, fields domain.ItemFields, category string) (*domain.Item, error) {
	c, err := domain.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	item := itemFromFields(int64(len(items)+1), fields, string(c))
	items = append(items, item)
	if err := WriteItems(s.path, items); err != nil {
		return nil, err
	}
	s.logger.Debugw("item created", "id", item.ID, "category", item.Category, "dataset_size", len(items))
	return &item, nil
}

// UpdateItem replaces the located record wholesale. The stored id is kept,
// and so is the stored category unless fields names a valid new one.
func (s *FileStore) UpdateItem(ctx context.Context, id int64, fields domain.ItemFields) (*domain.Item, error) {
	category := fields.Category
	if category != "" {
		if _, err := domain.ParseCategory(category); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	pos, err := query.Locate(items, s.lookup, id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	existing := items[pos]
	if category == "" {
		category = existing.Category
	}
	item := itemFromFields(existing.ID, fields, category)
	items[pos] = item
	if err := WriteItems(s.path, items); err != nil {
		return nil, err
	}
	s.logger.Debugw("item updated", "id", item.ID, "position", pos)
	return &item, nil
}

// Ping reports whether the dataset file is currently present.
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDatasetNotFound, s.path)
		}
		return fmt.Errorf("store: stat %s: %w", s.path, err)
	}
	return nil
}

func itemFromFields(id int64, f domain.ItemFields, category string) domain.Item {
	return domain.Item{
		ID:          id,
		Name:        f.Name,
		Description: f.Description,
		Brand:       f.Brand,
		Price:       f.Price,
		Rating:      f.Rating,
		InStock:     f.InStock,
		Category:    category,
	}
}
