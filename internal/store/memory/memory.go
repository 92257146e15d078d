package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"invoiceku/backend/internal/domain"
	"invoiceku/backend/internal/store"
)

// Store is the non-durable backend used for dev mode and tests. State lives
// for the lifetime of the process only.
type Store struct {
	mu       sync.RWMutex
	invoices map[string]domain.Invoice
	versions []domain.InvoiceVersion
}

func New() *Store {
	return &Store{
		invoices: make(map[string]domain.Invoice),
		versions: make([]domain.InvoiceVersion, 0, 64),
	}
}

func (s *Store) SaveInvoice(_ context.Context, invoice domain.Invoice) error {
	if invoice.InvoiceNumber == "" {
		return store.ErrInvalidInvoice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoices[invoice.InvoiceNumber] = cloneInvoice(invoice)
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invoiceNumber string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoice, exists := s.invoices[invoiceNumber]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := cloneInvoice(invoice)
	return &copied, nil
}

func (s *Store) AppendVersion(_ context.Context, entry domain.InvoiceVersion) (*domain.InvoiceVersion, error) {
	if entry.InvoiceNumber == "" {
		return nil, store.ErrInvalidInvoice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	last := 0
	for i := range s.versions {
		if s.versions[i].InvoiceNumber != entry.InvoiceNumber {
			continue
		}
		if s.versions[i].Version > last {
			last = s.versions[i].Version
		}
		s.versions[i].IsActive = false
	}

	entry.Invoice = cloneInvoice(entry.Invoice)
	entry.Version = last + 1
	entry.IsActive = true
	s.versions = append(s.versions, entry)

	stored := entry
	return &stored, nil
}

func (s *Store) ActiveVersion(_ context.Context, invoiceNumber string) (*domain.InvoiceVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.versions) - 1; i >= 0; i-- {
		if s.versions[i].InvoiceNumber == invoiceNumber && s.versions[i].IsActive {
			copied := s.versions[i]
			copied.Invoice = cloneInvoice(copied.Invoice)
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListVersions(_ context.Context, activeOnly bool) ([]domain.InvoiceVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.InvoiceVersion, 0, len(s.versions))
	for _, entry := range s.versions {
		if activeOnly && !entry.IsActive {
			continue
		}
		entry.Invoice = cloneInvoice(entry.Invoice)
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.InvoiceVersion) int {
		if a.RecordedAt.Equal(b.RecordedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.RecordedAt.After(b.RecordedAt) {
			return -1
		}
		return 1
	})

	return result, nil
}

func cloneInvoice(invoice domain.Invoice) domain.Invoice {
	copied := invoice
	copied.Items = slices.Clone(invoice.Items)
	copied.Payments = slices.Clone(invoice.Payments)
	return copied
}
