package cache

import (
	"context"
	"time"

	"invoiceku/backend/internal/domain"
)

// InvoiceListCache holds rendered version-log listings for the invoice list
// screen. Entries are short-lived and dropped wholesale on every write, so a
// stale read window is bounded by the TTL.
type InvoiceListCache interface {
	Get(ctx context.Context, key string) ([]domain.InvoiceVersion, bool, error)
	Set(ctx context.Context, key string, entries []domain.InvoiceVersion, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type NoopInvoiceListCache struct{}

func (NoopInvoiceListCache) Get(_ context.Context, _ string) ([]domain.InvoiceVersion, bool, error) {
	return nil, false, nil
}

func (NoopInvoiceListCache) Set(_ context.Context, _ string, _ []domain.InvoiceVersion, _ time.Duration) error {
	return nil
}

func (NoopInvoiceListCache) Invalidate(_ context.Context, _ ...string) error {
	return nil
}
