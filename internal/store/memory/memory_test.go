package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoiceku/backend/internal/domain"
	"invoiceku/backend/internal/store"
)

func testInvoice(number string) domain.Invoice {
	return domain.Invoice{
		InvoiceNumber: number,
		Customer:      "Budi Santoso",
		Items: []domain.LineItem{
			{Product: "Lengan Pendek Combed 30S", Color: "Hitam", Size: "M", Quantity: 1, UnitPrice: 42000, Total: 42000},
		},
		GrandTotal: 42000,
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SaveInvoice(ctx, testInvoice("INV-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetInvoice(ctx, "INV-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Customer != "Budi Santoso" {
		t.Fatalf("customer = %q", got.Customer)
	}

	if _, err := s.GetInvoice(ctx, "INV-2"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing: %v, want ErrNotFound", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SaveInvoice(ctx, testInvoice("INV-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetInvoice(ctx, "INV-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Items[0].Quantity = 99

	fresh, err := s.GetInvoice(ctx, "INV-1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if fresh.Items[0].Quantity != 1 {
		t.Fatalf("caller mutation leaked into store")
	}
}

func TestAppendVersionFlipsPriorActive(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		stored, err := s.AppendVersion(ctx, domain.InvoiceVersion{
			ID:         string(rune('a' + i)),
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
			Invoice:    testInvoice("INV-1"),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if stored.Version != i+1 {
			t.Fatalf("version = %d, want %d", stored.Version, i+1)
		}
	}

	active, err := s.ListVersions(ctx, true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].Version != 3 {
		t.Fatalf("active = %+v, want only version 3", active)
	}

	all, err := s.ListVersions(ctx, false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d entries, want 3", len(all))
	}
	// Newest activity first.
	if all[0].Version != 3 || all[2].Version != 1 {
		t.Fatalf("ordering wrong: %+v", all)
	}
}

func TestAppendVersionPerNumberCounters(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.AppendVersion(ctx, domain.InvoiceVersion{ID: "a", Invoice: testInvoice("INV-1")}); err != nil {
		t.Fatalf("append: %v", err)
	}
	stored, err := s.AppendVersion(ctx, domain.InvoiceVersion{ID: "b", Invoice: testInvoice("INV-2")})
	if err != nil {
		t.Fatalf("append other number: %v", err)
	}
	if stored.Version != 1 {
		t.Fatalf("version = %d, numbering must be per invoice number", stored.Version)
	}

	a, err := s.ActiveVersion(ctx, "INV-1")
	if err != nil {
		t.Fatalf("active INV-1: %v", err)
	}
	if !a.IsActive || a.Version != 1 {
		t.Fatalf("INV-1 active entry = %+v", a)
	}
}
