package builder

import (
	"testing"

	"invoiceku/backend/internal/catalog"
)

func TestAddItemUsesCatalogPrice(t *testing.T) {
	b := New(catalog.Default())

	if err := b.AddItem("Lengan Pendek Combed 30S", "Hitam", "L", 3); err != nil {
		t.Fatalf("add item: %v", err)
	}
	items := b.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].UnitPrice != 45000 {
		t.Fatalf("unit price = %d, want 45000", items[0].UnitPrice)
	}
	if items[0].Total != 135000 {
		t.Fatalf("total = %d, want 135000", items[0].Total)
	}
}

func TestAddItemUnknownCombination(t *testing.T) {
	b := New(nil)

	if err := b.AddItem("Lengan Pendek Combed 30S", "Ungu Neon", "L", 1); err == nil {
		t.Fatalf("expected error for unknown color")
	}
	if err := b.AddItem("Jaket Kulit", "Hitam", "L", 1); err == nil {
		t.Fatalf("expected error for unknown product")
	}
	if len(b.Items()) != 0 {
		t.Fatalf("failed adds must not append items")
	}
}

func TestRemoveItem(t *testing.T) {
	b := New(nil)
	if err := b.AddItem("Lengan Pendek Combed 30S", "Hitam", "M", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := b.AddCustomItem("Sablon nama punggung", "-", "-", 1, 15000); err != nil {
		t.Fatalf("add custom: %v", err)
	}

	if err := b.RemoveItem(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items := b.Items()
	if len(items) != 1 || items[0].Product != "Sablon nama punggung" {
		t.Fatalf("remaining items = %+v", items)
	}

	if err := b.RemoveItem(5); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestTotalsAndRemainingBalance(t *testing.T) {
	b := New(nil)
	if err := b.AddItem("Lengan Pendek Combed 30S", "Hitam", "L", 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := b.AddItem("Lengan Pendek Combed 30S", "Putih", "M", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if b.GrandTotal() != 175000 {
		t.Fatalf("grand total = %d, want 175000", b.GrandTotal())
	}

	b.SetDownPayment(50000)
	if b.RemainingBalance() != 125000 {
		t.Fatalf("remaining = %d, want 125000", b.RemainingBalance())
	}

	// A down payment above the total clamps, never going negative.
	b.SetDownPayment(500000)
	if b.RemainingBalance() != 0 {
		t.Fatalf("remaining = %d, want 0", b.RemainingBalance())
	}
}

func TestDraftSnapshot(t *testing.T) {
	b := New(nil)
	b.SetInvoiceNumber(" INV-202608-0042 ").
		SetDate("2026-08-15").
		SetCustomer("Budi Santoso", "Jl. Melati 12", "081234567890").
		SetNote("ambil sabtu").
		SetDownPayment(20000)
	if err := b.AddItem("Polo", "Semua Warna", "XL", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	draft := b.Draft()
	if draft.InvoiceNumber != "INV-202608-0042" {
		t.Fatalf("number = %q", draft.InvoiceNumber)
	}
	if draft.Customer != "Budi Santoso" || draft.DPAmount != 20000 {
		t.Fatalf("draft = %+v", draft)
	}
	if len(draft.Items) != 1 {
		t.Fatalf("draft items = %d, want 1", len(draft.Items))
	}

	// The draft is a snapshot; later edits must not leak into it.
	if err := b.RemoveItem(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(draft.Items) != 1 {
		t.Fatalf("draft mutated after builder edit")
	}
}
