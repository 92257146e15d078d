// Package file implements the durable flat-file backend: one JSON document
// per invoice number under invoices/, plus a shared append-only JSONL version
// log. The log file is only ever appended to; the active flag of an entry is
// derived on read (an entry is active when it carries the highest version
// recorded for its invoice number), so history is never rewritten.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"invoiceku/backend/internal/domain"
	"invoiceku/backend/internal/logger"
	"invoiceku/backend/internal/store"
)

const (
	invoicesDirName = "invoices"
	logFileName     = "invoice_log.jsonl"

	retryAttempts = 3
	retryBaseWait = 50 * time.Millisecond
)

type Store struct {
	dir string
	log zerolog.Logger

	mu          sync.Mutex
	lastVersion map[string]int
}

func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("data directory required")
	}
	if err := os.MkdirAll(filepath.Join(dir, invoicesDirName), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{
		dir:         dir,
		log:         logger.WithComponent("store.file"),
		lastVersion: make(map[string]int),
	}
	s.loadLogIndex()
	return s, nil
}

// loadLogIndex scans the version log once at startup to rebuild the
// per-invoice-number version counters. Malformed lines are skipped: an
// unreadable log reads as "no history yet" rather than blocking startup.
func (s *Store) loadLogIndex() {
	f, err := os.Open(s.logPath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Msg("version log unreadable, starting with empty history")
		}
		return
	}
	defer f.Close()

	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry domain.InvoiceVersion
		if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.InvoiceNumber == "" {
			skipped++
			continue
		}
		if entry.Version > s.lastVersion[entry.InvoiceNumber] {
			s.lastVersion[entry.InvoiceNumber] = entry.Version
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Warn().Err(err).Msg("version log scan stopped early")
	}
	if skipped > 0 {
		s.log.Warn().Int("lines", skipped).Msg("skipped malformed version log lines")
	}
}

func (s *Store) SaveInvoice(_ context.Context, invoice domain.Invoice) error {
	if invoice.InvoiceNumber == "" {
		return store.ErrInvalidInvoice
	}

	payload, err := json.MarshalIndent(invoice, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding invoice %s: %w", invoice.InvoiceNumber, err)
	}

	path := s.invoicePath(invoice.InvoiceNumber)
	tmp := path + ".tmp"
	return withRetry(func() error {
		if err := os.WriteFile(tmp, payload, 0o644); err != nil {
			return err
		}
		return os.Rename(tmp, path)
	})
}

func (s *Store) GetInvoice(_ context.Context, invoiceNumber string) (*domain.Invoice, error) {
	if invoiceNumber == "" {
		return nil, store.ErrNotFound
	}

	raw, err := os.ReadFile(s.invoicePath(invoiceNumber))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading invoice %s: %w", invoiceNumber, err)
	}

	var invoice domain.Invoice
	if err := json.Unmarshal(raw, &invoice); err != nil {
		// A corrupt record reads as absent; the raw file stays on disk for
		// manual recovery.
		s.log.Warn().Str("invoice_number", invoiceNumber).Err(err).Msg("invoice record malformed, treating as absent")
		return nil, store.ErrNotFound
	}
	return &invoice, nil
}

func (s *Store) AppendVersion(_ context.Context, entry domain.InvoiceVersion) (*domain.InvoiceVersion, error) {
	if entry.InvoiceNumber == "" {
		return nil, store.ErrInvalidInvoice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Version = s.lastVersion[entry.InvoiceNumber] + 1
	entry.IsActive = true

	line, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encoding version entry: %w", err)
	}

	err = withRetry(func() error {
		f, err := os.OpenFile(s.logPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := f.Write(append(line, '\n')); err != nil {
			return err
		}
		return f.Sync()
	})
	if err != nil {
		return nil, fmt.Errorf("appending version log: %w", err)
	}

	s.lastVersion[entry.InvoiceNumber] = entry.Version
	stored := entry
	return &stored, nil
}

func (s *Store) ActiveVersion(_ context.Context, invoiceNumber string) (*domain.InvoiceVersion, error) {
	entries, err := s.readLog()
	if err != nil {
		return nil, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].InvoiceNumber == invoiceNumber && entries[i].IsActive {
			copied := entries[i]
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListVersions(_ context.Context, activeOnly bool) ([]domain.InvoiceVersion, error) {
	entries, err := s.readLog()
	if err != nil {
		return nil, err
	}

	result := make([]domain.InvoiceVersion, 0, len(entries))
	for _, entry := range entries {
		if activeOnly && !entry.IsActive {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.InvoiceVersion) int {
		if a.RecordedAt.Equal(b.RecordedAt) {
			return b.Version - a.Version
		}
		if a.RecordedAt.After(b.RecordedAt) {
			return -1
		}
		return 1
	})

	return result, nil
}

// readLog parses the whole version log in physical append order and stamps
// the derived active flag onto each entry.
func (s *Store) readLog() ([]domain.InvoiceVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.logPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening version log: %w", err)
	}
	defer f.Close()

	entries := make([]domain.InvoiceVersion, 0, 128)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry domain.InvoiceVersion
		if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.InvoiceNumber == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading version log: %w", err)
	}

	for i := range entries {
		entries[i].IsActive = entries[i].Version == s.lastVersion[entries[i].InvoiceNumber]
	}
	return entries, nil
}

func (s *Store) invoicePath(invoiceNumber string) string {
	return filepath.Join(s.dir, invoicesDirName, sanitizeName(invoiceNumber)+".json")
}

func (s *Store) logPath() string {
	return filepath.Join(s.dir, logFileName)
}

// sanitizeName keeps invoice numbers usable as file names. Path separators
// and parent references must not leak into the invoices directory.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", string(filepath.Separator), "_")
	return replacer.Replace(name)
}

// withRetry runs op up to retryAttempts times with doubling backoff. File
// writes on network mounts and busy disks fail transiently often enough that
// one-shot writes would surface avoidable errors to the caller.
func withRetry(op func() error) error {
	wait := retryBaseWait
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt < retryAttempts-1 {
			time.Sleep(wait)
			wait *= 2
		}
	}
	return err
}
