package domain

import "testing"

func TestDerivePaymentStatus(t *testing.T) {
	cases := []struct {
		name       string
		paid       int64
		grandTotal int64
		want       string
	}{
		{"nothing paid", 0, 100000, StatusUnpaid},
		{"negative treated as unpaid", -500, 100000, StatusUnpaid},
		{"partially paid", 50000, 100000, StatusPartial},
		{"exactly paid", 100000, 100000, StatusPaid},
		{"over paid", 150000, 100000, StatusPaid},
		{"zero total stays unpaid", 0, 0, StatusUnpaid},
		{"zero total never reaches paid", 10, 0, StatusPartial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DerivePaymentStatus(tc.paid, tc.grandTotal); got != tc.want {
				t.Fatalf("DerivePaymentStatus(%d, %d) = %q, want %q", tc.paid, tc.grandTotal, got, tc.want)
			}
		})
	}
}

func TestSumItemTotals(t *testing.T) {
	items := []LineItem{
		{Quantity: 3, UnitPrice: 42000, Total: 126000},
		{Quantity: 1, UnitPrice: 45000, Total: 45000},
	}
	if got := SumItemTotals(items); got != 171000 {
		t.Fatalf("SumItemTotals = %d, want 171000", got)
	}
	if got := SumItemTotals(nil); got != 0 {
		t.Fatalf("SumItemTotals(nil) = %d, want 0", got)
	}
}
