package domain

import "time"

// LineItem is one purchased unit on an invoice. Items are immutable once
// added; Total is stored redundantly so stored records stay auditable even
// if catalog prices change later.
type LineItem struct {
	Product   string `json:"product"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Total     int64  `json:"total"`
}

// PaymentEntry is one payment event on an invoice. The sequence is
// append-only: entries are never edited or removed. Amount records what the
// payer handed over, even when the stored balance clamps at the grand total.
type PaymentEntry struct {
	ID     string    `json:"id"`
	Amount int64     `json:"amount"`
	Method string    `json:"method"`
	Note   string    `json:"note,omitempty"`
	PaidAt time.Time `json:"paid_at"`
}

// Invoice is the current-state record for one invoice number. All financial
// fields (GrandTotal, PaidAmount, RemainingAmount, PaymentStatus) are derived
// by the service layer and never accepted from callers.
type Invoice struct {
	InvoiceNumber   string         `json:"invoice_number"`
	Customer        string         `json:"customer"`
	Address         string         `json:"address,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	Date            string         `json:"date"`
	Items           []LineItem     `json:"items"`
	Note            string         `json:"note,omitempty"`
	GrandTotal      int64          `json:"grand_total"`
	PaidAmount      int64          `json:"paid_amount"`
	RemainingAmount int64          `json:"remaining_amount"`
	PaymentStatus   string         `json:"payment_status"`
	Payments        []PaymentEntry `json:"payments"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// InvoiceVersion is a point-in-time snapshot of an Invoice appended to the
// shared version log on create and on every payment update. Versions for a
// given invoice number form a gap-free sequence starting at 1, and exactly
// one of them is active at any time.
type InvoiceVersion struct {
	ID         string    `json:"id"`
	Version    int       `json:"version"`
	IsActive   bool      `json:"is_active"`
	UpdateType string    `json:"update_type"`
	RecordedAt time.Time `json:"recorded_at"`
	Invoice
}

// InvoiceDraft is the submission payload composed by the entry form. Items
// arrive with whatever totals the client displayed; the service recomputes
// them before persisting.
type InvoiceDraft struct {
	InvoiceNumber string     `json:"invoice_number"`
	Date          string     `json:"date"`
	Customer      string     `json:"customer"`
	Address       string     `json:"address"`
	Phone         string     `json:"phone"`
	Items         []LineItem `json:"items"`
	Note          string     `json:"note"`
	DPAmount      int64      `json:"dp_amount"`
}

type PaymentRequest struct {
	PaymentAmount int64  `json:"payment_amount"`
	PaymentMethod string `json:"payment_method"`
	PaymentNote   string `json:"payment_note"`
}

const (
	StatusUnpaid  = "unpaid"
	StatusPartial = "partial"
	StatusPaid    = "paid"
)

const (
	UpdateTypeCreate  = "create"
	UpdateTypePayment = "payment"
)

// DownPaymentMethod tags the payment entry seeded when an invoice is created
// with an initial down payment.
const DownPaymentMethod = "DP"

// DerivePaymentStatus is the single source of truth for the payment status
// enum: unpaid when nothing is paid, paid once the grand total is covered,
// partial otherwise.
func DerivePaymentStatus(paidAmount, grandTotal int64) string {
	switch {
	case paidAmount <= 0:
		return StatusUnpaid
	case grandTotal > 0 && paidAmount >= grandTotal:
		return StatusPaid
	default:
		return StatusPartial
	}
}

// SumItemTotals returns the grand total for a list of items.
func SumItemTotals(items []LineItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.Total
	}
	return sum
}
