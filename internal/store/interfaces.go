package store

import (
	"context"

	"item-catalog-service/internal/domain"
)

// ItemStorer defines the dataset operations used by the API layer.
// Every call reads the backing file afresh; nothing is cached between calls.
type ItemStorer interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	CreateItem(ctx context.Context, fields domain.ItemFields, category string) (*domain.Item, error)
	UpdateItem(ctx context.Context, id int64, fields domain.ItemFields) (*domain.Item, error)
	Ping(ctx context.Context) error
}

// SizeObserver is notified with the record count after every successful load.
type SizeObserver interface {
	ObserveDatasetSize(n int)
}
