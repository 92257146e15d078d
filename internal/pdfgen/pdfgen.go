// Package pdfgen renders printable invoices. The layout mirrors the sales
// note handed to walk-in customers: shop header, customer block, item table,
// totals with down payment, and the transfer details for the balance.
package pdfgen

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"invoiceku/backend/internal/domain"
)

// Profile carries the shop identity printed on every document.
type Profile struct {
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	BankTransfer   string
}

type RenderOptions struct {
	// Watermark prints the shop name faintly across the body, for copies
	// sent ahead of payment.
	Watermark bool
}

type Renderer interface {
	RenderInvoice(ctx context.Context, invoice domain.Invoice, opts RenderOptions) ([]byte, error)
}

// Noop satisfies Renderer where PDF output is not wired, such as tests.
type Noop struct{}

func (Noop) RenderInvoice(context.Context, domain.Invoice, RenderOptions) ([]byte, error) {
	return nil, errors.New("pdf rendering not configured")
}

type MarotoRenderer struct {
	profile Profile
}

func NewMarotoRenderer(profile Profile) *MarotoRenderer {
	return &MarotoRenderer{profile: profile}
}

var (
	mutedGray = &props.Color{Red: 150, Green: 150, Blue: 150}
	paidGreen = &props.Color{Red: 22, Green: 130, Blue: 60}
	faintGray = &props.Color{Red: 225, Green: 225, Blue: 225}
)

func (r *MarotoRenderer) RenderInvoice(ctx context.Context, invoice domain.Invoice, opts RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Halaman {current} dari {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, r.profile.CompanyName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "INVOICE", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Right,
			Color: mutedGray,
		}),
	)
	m.AddRow(12,
		col.New(8).Add(
			text.New(r.profile.CompanyAddress, props.Text{Size: 9}),
			text.New(r.profile.CompanyPhone, props.Text{Size: 9, Top: 4}),
		),
		col.New(4).Add(
			text.New(invoice.InvoiceNumber, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
			text.New("Tanggal: "+invoice.Date, props.Text{Size: 9, Top: 5, Align: align.Right}),
		),
	)
	m.AddRow(2, line.NewCol(12))

	if opts.Watermark {
		m.AddRow(8,
			text.NewCol(12, r.profile.CompanyName, props.Text{
				Size:  26,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: faintGray,
			}),
		)
	}

	m.AddRow(22,
		col.New(6).Add(
			text.New("Kepada:", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(invoice.Customer, props.Text{Size: 10, Top: 4}),
			text.New(invoice.Address, props.Text{Size: 9, Top: 9}),
			text.New(invoice.Phone, props.Text{Size: 9, Top: 14}),
		),
		col.New(6),
	)

	m.AddRow(8,
		text.NewCol(5, "Produk", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Warna / Ukuran", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Harga", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Jumlah", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(1, line.NewCol(12))

	for _, item := range invoice.Items {
		m.AddRow(7,
			text.NewCol(5, item.Product, props.Text{Size: 9}),
			text.NewCol(2, item.Color+" / "+item.Size, props.Text{Size: 9}),
			text.NewCol(1, strconv.Itoa(item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, FormatRupiah(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, FormatRupiah(item.Total), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(1, line.NewCol(12))
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, FormatRupiah(invoice.GrandTotal), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Dibayar", props.Text{Size: 9}),
		text.NewCol(2, FormatRupiah(invoice.PaidAmount), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Sisa", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, FormatRupiah(invoice.RemainingAmount), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)

	if invoice.PaymentStatus == domain.StatusPaid {
		m.AddRow(14,
			text.NewCol(12, "LUNAS", props.Text{
				Size:  22,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: paidGreen,
			}),
		)
	} else if r.profile.BankTransfer != "" {
		m.AddRow(16,
			col.New(12).Add(
				text.New("Pembayaran sisa dapat ditransfer ke:", props.Text{Size: 9, Style: fontstyle.Bold}),
				text.New(r.profile.BankTransfer, props.Text{Size: 9, Top: 5}),
			),
		)
	}

	if invoice.Note != "" {
		m.AddRow(10,
			text.NewCol(12, "Catatan: "+invoice.Note, props.Text{Size: 9}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// FormatRupiah renders an amount the way receipts print it locally:
// "Rp 1.250.000" with dot-separated thousands.
func FormatRupiah(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}

	if negative {
		return "Rp -" + string(out)
	}
	return "Rp " + string(out)
}
