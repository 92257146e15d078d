// Package builder assembles invoice drafts line by line, pricing items
// against the product catalog. A builder is ephemeral form state; nothing is
// persisted until the finished draft is handed to the service.
package builder

import (
	"fmt"
	"strings"

	"invoiceku/backend/internal/catalog"
	"invoiceku/backend/internal/domain"
)

type InvoiceBuilder struct {
	prices   catalog.Catalog
	number   string
	date     string
	customer string
	address  string
	phone    string
	note     string
	dp       int64
	items    []domain.LineItem
}

func New(prices catalog.Catalog) *InvoiceBuilder {
	if prices == nil {
		prices = catalog.Default()
	}
	return &InvoiceBuilder{prices: prices}
}

func (b *InvoiceBuilder) SetInvoiceNumber(number string) *InvoiceBuilder {
	b.number = strings.TrimSpace(number)
	return b
}

func (b *InvoiceBuilder) SetDate(date string) *InvoiceBuilder {
	b.date = strings.TrimSpace(date)
	return b
}

func (b *InvoiceBuilder) SetCustomer(name, address, phone string) *InvoiceBuilder {
	b.customer = strings.TrimSpace(name)
	b.address = strings.TrimSpace(address)
	b.phone = strings.TrimSpace(phone)
	return b
}

func (b *InvoiceBuilder) SetNote(note string) *InvoiceBuilder {
	b.note = strings.TrimSpace(note)
	return b
}

func (b *InvoiceBuilder) SetDownPayment(amount int64) *InvoiceBuilder {
	b.dp = amount
	return b
}

// AddItem appends a line priced from the catalog. Unknown product, color or
// size combinations are an error rather than a zero-priced line.
func (b *InvoiceBuilder) AddItem(product, color, size string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	price, ok := b.prices.Price(product, color, size)
	if !ok {
		return fmt.Errorf("no catalog price for %s / %s / %s", product, color, size)
	}
	b.items = append(b.items, domain.LineItem{
		Product:   product,
		Color:     color,
		Size:      size,
		Quantity:  quantity,
		UnitPrice: price,
		Total:     int64(quantity) * price,
	})
	return nil
}

// AddCustomItem appends a line with a caller-supplied price, for work the
// catalog does not cover.
func (b *InvoiceBuilder) AddCustomItem(product, color, size string, quantity int, unitPrice int64) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if unitPrice < 0 {
		return fmt.Errorf("unit price cannot be negative, got %d", unitPrice)
	}
	b.items = append(b.items, domain.LineItem{
		Product:   product,
		Color:     color,
		Size:      size,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     int64(quantity) * unitPrice,
	})
	return nil
}

func (b *InvoiceBuilder) RemoveItem(index int) error {
	if index < 0 || index >= len(b.items) {
		return fmt.Errorf("item index %d out of range", index)
	}
	b.items = append(b.items[:index], b.items[index+1:]...)
	return nil
}

func (b *InvoiceBuilder) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(b.items))
	copy(out, b.items)
	return out
}

func (b *InvoiceBuilder) GrandTotal() int64 {
	return domain.SumItemTotals(b.items)
}

// RemainingBalance previews what would be owed after the down payment,
// clamped at zero the same way the service clamps on create.
func (b *InvoiceBuilder) RemainingBalance() int64 {
	total := b.GrandTotal()
	paid := min(b.dp, total)
	if paid < 0 {
		paid = 0
	}
	return total - paid
}

// Draft snapshots the builder into a draft ready for the service. The
// builder stays usable afterwards.
func (b *InvoiceBuilder) Draft() domain.InvoiceDraft {
	return domain.InvoiceDraft{
		InvoiceNumber: b.number,
		Date:          b.date,
		Customer:      b.customer,
		Address:       b.address,
		Phone:         b.phone,
		Items:         b.Items(),
		Note:          b.note,
		DPAmount:      b.dp,
	}
}
