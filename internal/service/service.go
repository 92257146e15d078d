package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"invoiceku/backend/internal/cache"
	"invoiceku/backend/internal/domain"
	"invoiceku/backend/internal/logger"
	"invoiceku/backend/internal/store"
)

const (
	listCacheActiveKey = "invoice-list:active"
	listCacheAllKey    = "invoice-list:all"
)

// Service owns invoice semantics: it is the only place derived financial
// fields are computed, and the only writer of the version log. Writes for the
// same invoice number are serialized with a per-number mutex so a create and
// a payment cannot interleave their read-modify-write cycles.
type Service struct {
	repo     store.Repository
	cache    cache.InvoiceListCache
	cacheTTL time.Duration
	log      zerolog.Logger
	locks    keyedLocks
}

func New(repo store.Repository, listCache cache.InvoiceListCache, cacheTTL time.Duration) *Service {
	if listCache == nil {
		listCache = cache.NoopInvoiceListCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Service{
		repo:     repo,
		cache:    listCache,
		cacheTTL: cacheTTL,
		log:      logger.WithComponent("service"),
	}
}

// Create validates a draft, computes all derived financial fields, persists
// the invoice record and appends a version-log entry. Re-submitting an
// existing invoice number overwrites the record and chains a new version;
// it is not rejected as a duplicate.
func (s *Service) Create(ctx context.Context, draft domain.InvoiceDraft) (domain.Invoice, error) {
	number := strings.TrimSpace(draft.InvoiceNumber)
	customer := strings.TrimSpace(draft.Customer)

	if number == "" {
		return domain.Invoice{}, fmt.Errorf("%w: invoice number required", store.ErrInvalidInvoice)
	}
	if customer == "" {
		return domain.Invoice{}, fmt.Errorf("%w: customer name required", store.ErrInvalidInvoice)
	}
	if len(draft.Items) == 0 {
		return domain.Invoice{}, fmt.Errorf("%w: at least one item required", store.ErrInvalidInvoice)
	}
	if draft.DPAmount < 0 {
		return domain.Invoice{}, fmt.Errorf("%w: down payment cannot be negative", store.ErrInvalidInvoice)
	}

	items := make([]domain.LineItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		if item.Quantity < 1 {
			return domain.Invoice{}, fmt.Errorf("%w: item quantity must be positive", store.ErrInvalidInvoice)
		}
		if item.UnitPrice < 0 {
			return domain.Invoice{}, fmt.Errorf("%w: item unit price cannot be negative", store.ErrInvalidInvoice)
		}
		// Whatever total the client displayed, the stored one is recomputed.
		item.Total = int64(item.Quantity) * item.UnitPrice
		items = append(items, item)
	}

	now := time.Now().UTC()
	date := strings.TrimSpace(draft.Date)
	if date == "" {
		date = now.Format("2006-01-02")
	}

	grandTotal := domain.SumItemTotals(items)

	paid := int64(0)
	payments := make([]domain.PaymentEntry, 0, 1)
	if draft.DPAmount > 0 {
		paid = min(draft.DPAmount, grandTotal)
		// The entry records the amount as handed over, even when the balance
		// clamps at the grand total.
		payments = append(payments, domain.PaymentEntry{
			ID:     uuid.NewString(),
			Amount: draft.DPAmount,
			Method: domain.DownPaymentMethod,
			PaidAt: now,
		})
	}

	invoice := domain.Invoice{
		InvoiceNumber:   number,
		Customer:        customer,
		Address:         strings.TrimSpace(draft.Address),
		Phone:           strings.TrimSpace(draft.Phone),
		Date:            date,
		Items:           items,
		Note:            strings.TrimSpace(draft.Note),
		GrandTotal:      grandTotal,
		PaidAmount:      paid,
		RemainingAmount: grandTotal - paid,
		PaymentStatus:   domain.DerivePaymentStatus(paid, grandTotal),
		Payments:        payments,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	unlock := s.locks.lock(number)
	defer unlock()

	if err := s.repo.SaveInvoice(ctx, invoice); err != nil {
		return domain.Invoice{}, fmt.Errorf("saving invoice %s: %w", number, err)
	}
	s.appendVersion(ctx, invoice, domain.UpdateTypeCreate)
	s.invalidateListCache(ctx)

	s.log.Info().
		Str("invoice_number", number).
		Int64("grand_total", grandTotal).
		Int64("paid_amount", paid).
		Str("payment_status", invoice.PaymentStatus).
		Msg("invoice created")

	return invoice, nil
}

func (s *Service) GetByNumber(ctx context.Context, invoiceNumber string) (domain.Invoice, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return domain.Invoice{}, store.ErrNotFound
	}
	invoice, err := s.repo.GetInvoice(ctx, invoiceNumber)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

// ApplyPayment records an additional payment on an existing invoice. The
// stored balance clamps at the grand total while the appended payment entry
// keeps the requested amount verbatim. Calls are not idempotent; retrying
// applies the payment again.
func (s *Service) ApplyPayment(ctx context.Context, invoiceNumber string, req domain.PaymentRequest) (domain.Invoice, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if req.PaymentAmount <= 0 {
		return domain.Invoice{}, fmt.Errorf("%w: payment amount must be positive", store.ErrInvalidInvoice)
	}
	if invoiceNumber == "" {
		return domain.Invoice{}, store.ErrNotFound
	}

	unlock := s.locks.lock(invoiceNumber)
	defer unlock()

	current, err := s.repo.GetInvoice(ctx, invoiceNumber)
	if err != nil {
		return domain.Invoice{}, err
	}

	now := time.Now().UTC()
	invoice := *current
	invoice.Payments = append(invoice.Payments, domain.PaymentEntry{
		ID:     uuid.NewString(),
		Amount: req.PaymentAmount,
		Method: strings.TrimSpace(req.PaymentMethod),
		Note:   strings.TrimSpace(req.PaymentNote),
		PaidAt: now,
	})

	invoice.PaidAmount = min(current.PaidAmount+req.PaymentAmount, invoice.GrandTotal)
	invoice.RemainingAmount = max(invoice.GrandTotal-invoice.PaidAmount, 0)
	invoice.PaymentStatus = domain.DerivePaymentStatus(invoice.PaidAmount, invoice.GrandTotal)
	invoice.UpdatedAt = now

	if err := s.repo.SaveInvoice(ctx, invoice); err != nil {
		return domain.Invoice{}, fmt.Errorf("saving payment on %s: %w", invoiceNumber, err)
	}
	s.appendVersion(ctx, invoice, domain.UpdateTypePayment)
	s.invalidateListCache(ctx)

	s.log.Info().
		Str("invoice_number", invoiceNumber).
		Int64("amount", req.PaymentAmount).
		Int64("paid_amount", invoice.PaidAmount).
		Str("payment_status", invoice.PaymentStatus).
		Msg("payment applied")

	return invoice, nil
}

// ListVersions returns version-log entries, newest activity first. With
// includeHistory set every version is returned, otherwise only the active
// entry per invoice number. A non-empty query filters by invoice number or
// customer substring, case-insensitively.
func (s *Service) ListVersions(ctx context.Context, includeHistory bool, query string) ([]domain.InvoiceVersion, error) {
	key := listCacheActiveKey
	activeOnly := !includeHistory
	if includeHistory {
		key = listCacheAllKey
	}

	entries, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("list cache read failed")
	}
	if !hit {
		entries, err = s.repo.ListVersions(ctx, activeOnly)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, entries, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("list cache write failed")
		}
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries, nil
	}

	filtered := make([]domain.InvoiceVersion, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.InvoiceNumber), query) ||
			strings.Contains(strings.ToLower(entry.Customer), query) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// NewInvoiceNumber produces a fresh INV-YYYYMM-NNNN suggestion for the entry
// form. Uniqueness is a convention, not a guarantee; create keeps overwrite
// semantics either way.
func (s *Service) NewInvoiceNumber() string {
	now := time.Now()
	return fmt.Sprintf("INV-%s-%04d", now.Format("200601"), rand.Intn(10000))
}

// appendVersion is best-effort: the invoice record is the primary store and
// has already been written; a failed log append degrades history, not the
// operation.
func (s *Service) appendVersion(ctx context.Context, invoice domain.Invoice, updateType string) {
	entry := domain.InvoiceVersion{
		ID:         uuid.NewString(),
		UpdateType: updateType,
		RecordedAt: time.Now().UTC(),
		Invoice:    invoice,
	}
	if _, err := s.repo.AppendVersion(ctx, entry); err != nil {
		s.log.Warn().
			Str("invoice_number", invoice.InvoiceNumber).
			Str("update_type", updateType).
			Err(err).
			Msg("version log append failed, invoice saved without history entry")
	}
}

func (s *Service) invalidateListCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, listCacheActiveKey, listCacheAllKey); err != nil {
		s.log.Warn().Err(err).Msg("list cache invalidation failed")
	}
}

// keyedLocks hands out one mutex per invoice number. Locks are never
// reclaimed; the key space is bounded by the number of invoices a single
// shop writes in one process lifetime.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
