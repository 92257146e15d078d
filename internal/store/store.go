package store

import (
	"context"
	"errors"

	"invoiceku/backend/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInvoice = errors.New("invalid invoice")
)

// Repository is the storage capability behind the invoice service: a keyed
// record space (invoice number -> current state) plus a shared append-only
// version log. Implementations must keep their own failure modes (file
// system, connection pool) behind this interface; the service never sees
// backend-specific errors beyond the sentinels above.
type Repository interface {
	// SaveInvoice writes the current-state record, overwriting any existing
	// record with the same invoice number.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error
	GetInvoice(ctx context.Context, invoiceNumber string) (*domain.Invoice, error)

	// AppendVersion appends a snapshot to the version log. The backend
	// assigns the next version number for the invoice number and flips the
	// prior active entry to inactive in the same step. The stored entry is
	// returned with Version and IsActive populated.
	AppendVersion(ctx context.Context, entry domain.InvoiceVersion) (*domain.InvoiceVersion, error)
	ActiveVersion(ctx context.Context, invoiceNumber string) (*domain.InvoiceVersion, error)

	// ListVersions returns log entries ordered by recording time descending.
	// With activeOnly set it returns one entry per invoice number.
	ListVersions(ctx context.Context, activeOnly bool) ([]domain.InvoiceVersion, error)
}
