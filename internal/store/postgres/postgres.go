package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"invoiceku/backend/internal/domain"
	"invoiceku/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS invoices (
			invoice_number   TEXT PRIMARY KEY,
			customer         TEXT NOT NULL,
			address          TEXT NOT NULL DEFAULT '',
			phone            TEXT NOT NULL DEFAULT '',
			issue_date       TEXT NOT NULL DEFAULT '',
			note             TEXT NOT NULL DEFAULT '',
			items            JSONB NOT NULL,
			payments         JSONB NOT NULL DEFAULT '[]',
			grand_total      BIGINT NOT NULL,
			paid_amount      BIGINT NOT NULL,
			remaining_amount BIGINT NOT NULL,
			payment_status   TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS invoice_versions (
			id             TEXT PRIMARY KEY,
			invoice_number TEXT NOT NULL,
			version        INT NOT NULL,
			is_active      BOOLEAN NOT NULL,
			update_type    TEXT NOT NULL,
			recorded_at    TIMESTAMPTZ NOT NULL,
			snapshot       JSONB NOT NULL,
			UNIQUE (invoice_number, version)
		);

		CREATE INDEX IF NOT EXISTS idx_invoice_versions_active
			ON invoice_versions (invoice_number) WHERE is_active;
	`)
	return err
}

func (s *Store) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	if invoice.InvoiceNumber == "" {
		return store.ErrInvalidInvoice
	}

	items, err := json.Marshal(invoice.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}
	payments, err := json.Marshal(invoice.Payments)
	if err != nil {
		return fmt.Errorf("encoding payments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices (
			invoice_number, customer, address, phone, issue_date, note,
			items, payments, grand_total, paid_amount, remaining_amount,
			payment_status, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (invoice_number) DO UPDATE SET
			customer = EXCLUDED.customer,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			issue_date = EXCLUDED.issue_date,
			note = EXCLUDED.note,
			items = EXCLUDED.items,
			payments = EXCLUDED.payments,
			grand_total = EXCLUDED.grand_total,
			paid_amount = EXCLUDED.paid_amount,
			remaining_amount = EXCLUDED.remaining_amount,
			payment_status = EXCLUDED.payment_status,
			updated_at = EXCLUDED.updated_at
	`, invoice.InvoiceNumber, invoice.Customer, invoice.Address, invoice.Phone,
		invoice.Date, invoice.Note, items, payments, invoice.GrandTotal,
		invoice.PaidAmount, invoice.RemainingAmount, invoice.PaymentStatus,
		invoice.CreatedAt, invoice.UpdatedAt)
	return err
}

func (s *Store) GetInvoice(ctx context.Context, invoiceNumber string) (*domain.Invoice, error) {
	var (
		invoice  domain.Invoice
		items    []byte
		payments []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT invoice_number, customer, address, phone, issue_date, note,
		       items, payments, grand_total, paid_amount, remaining_amount,
		       payment_status, created_at, updated_at
		FROM invoices
		WHERE invoice_number = $1
	`, invoiceNumber).Scan(&invoice.InvoiceNumber, &invoice.Customer, &invoice.Address,
		&invoice.Phone, &invoice.Date, &invoice.Note, &items, &payments,
		&invoice.GrandTotal, &invoice.PaidAmount, &invoice.RemainingAmount,
		&invoice.PaymentStatus, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(items, &invoice.Items); err != nil {
		return nil, fmt.Errorf("decoding items for %s: %w", invoiceNumber, err)
	}
	if err := json.Unmarshal(payments, &invoice.Payments); err != nil {
		return nil, fmt.Errorf("decoding payments for %s: %w", invoiceNumber, err)
	}
	invoice.CreatedAt = invoice.CreatedAt.UTC()
	invoice.UpdatedAt = invoice.UpdatedAt.UTC()
	return &invoice, nil
}

func (s *Store) AppendVersion(ctx context.Context, entry domain.InvoiceVersion) (*domain.InvoiceVersion, error) {
	if entry.InvoiceNumber == "" {
		return nil, store.ErrInvalidInvoice
	}

	snapshot, err := json.Marshal(entry.Invoice)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var last sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT MAX(version) FROM invoice_versions WHERE invoice_number = $1
	`, entry.InvoiceNumber).Scan(&last)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE invoice_versions SET is_active = false
		WHERE invoice_number = $1 AND is_active
	`, entry.InvoiceNumber); err != nil {
		return nil, err
	}

	entry.Version = int(last.Int64) + 1
	entry.IsActive = true
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO invoice_versions (id, invoice_number, version, is_active, update_type, recorded_at, snapshot)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, entry.ID, entry.InvoiceNumber, entry.Version, entry.IsActive,
		entry.UpdateType, entry.RecordedAt, snapshot); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	stored := entry
	return &stored, nil
}

func (s *Store) ActiveVersion(ctx context.Context, invoiceNumber string) (*domain.InvoiceVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, invoice_number, version, is_active, update_type, recorded_at, snapshot
		FROM invoice_versions
		WHERE invoice_number = $1 AND is_active
	`, invoiceNumber)

	entry, err := scanVersion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *Store) ListVersions(ctx context.Context, activeOnly bool) ([]domain.InvoiceVersion, error) {
	query := `
		SELECT id, invoice_number, version, is_active, update_type, recorded_at, snapshot
		FROM invoice_versions
		ORDER BY recorded_at DESC, version DESC
	`
	if activeOnly {
		query = `
			SELECT id, invoice_number, version, is_active, update_type, recorded_at, snapshot
			FROM invoice_versions
			WHERE is_active
			ORDER BY recorded_at DESC, version DESC
		`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.InvoiceVersion, 0, 128)
	for rows.Next() {
		entry, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (*domain.InvoiceVersion, error) {
	var (
		entry    domain.InvoiceVersion
		snapshot []byte
	)
	err := row.Scan(&entry.ID, &entry.InvoiceNumber, &entry.Version, &entry.IsActive,
		&entry.UpdateType, &entry.RecordedAt, &snapshot)
	if err != nil {
		return nil, err
	}

	number := entry.InvoiceNumber
	if err := json.Unmarshal(snapshot, &entry.Invoice); err != nil {
		return nil, fmt.Errorf("decoding snapshot for %s: %w", number, err)
	}
	entry.InvoiceNumber = number
	entry.RecordedAt = entry.RecordedAt.UTC()
	return &entry, nil
}
