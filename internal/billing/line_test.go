package billing

import "testing"

func TestParseMoney(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"1,250.50", 1250.50},
		{" 300 ", 300},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-45", -45},
	}
	for _, tc := range cases {
		if got := ParseMoney(tc.raw); got != tc.want {
			t.Fatalf("ParseMoney(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestComputeLinePercentDiscount(t *testing.T) {
	totals := ComputeLine(CartLine{
		Barcode:           "B-100",
		UnitPrice:         100,
		Qty:               3,
		ItemDiscountType:  DiscountPercent,
		ItemDiscountValue: 10,
	})
	if totals.Base != 300 {
		t.Fatalf("base = %v, want 300", totals.Base)
	}
	if totals.ItemDiscount != 30 {
		t.Fatalf("item discount = %v, want 30", totals.ItemDiscount)
	}
	if totals.NetTotal != 270 {
		t.Fatalf("net total = %v, want 270", totals.NetTotal)
	}
}

func TestComputeLineAmountDiscountClampedToBase(t *testing.T) {
	totals := ComputeLine(CartLine{
		UnitPrice:         50,
		Qty:               2,
		ItemDiscountType:  DiscountAmount,
		ItemDiscountValue: 500,
	})
	if totals.ItemDiscount != 100 {
		t.Fatalf("item discount = %v, want clamp to base 100", totals.ItemDiscount)
	}
	if totals.NetTotal != 0 {
		t.Fatalf("net total = %v, want 0", totals.NetTotal)
	}
}

func TestComputeLinePercentClampedToHundred(t *testing.T) {
	totals := ComputeLine(CartLine{
		UnitPrice:         80,
		Qty:               1,
		ItemDiscountType:  DiscountPercent,
		ItemDiscountValue: 250,
	})
	if totals.ItemDiscount != 80 {
		t.Fatalf("item discount = %v, want 80", totals.ItemDiscount)
	}
	if totals.NetTotal != 0 {
		t.Fatalf("net total = %v, want 0", totals.NetTotal)
	}
}

func TestComputeLineFreeQtyExcludedFromBase(t *testing.T) {
	totals := ComputeLine(CartLine{UnitPrice: 40, Qty: 2, FreeQty: 5})
	if totals.Base != 80 {
		t.Fatalf("base = %v, want 80 (free qty excluded)", totals.Base)
	}
}

func TestComputeLinePercentRoundsHalfUp(t *testing.T) {
	// 3 * 33 = 99; 5% of 99 = 4.95 -> rounds to 5.
	totals := ComputeLine(CartLine{
		UnitPrice:         33,
		Qty:               3,
		ItemDiscountType:  DiscountPercent,
		ItemDiscountValue: 5,
	})
	if totals.ItemDiscount != 5 {
		t.Fatalf("item discount = %v, want 5", totals.ItemDiscount)
	}
}

func TestComputeLineNeverNegativeOnGarbage(t *testing.T) {
	totals := ComputeLine(CartLine{UnitPrice: -10, Qty: -3, ItemDiscountType: "bogus", ItemDiscountValue: -99})
	if totals.Base != 0 || totals.ItemDiscount != 0 || totals.NetTotal != 0 {
		t.Fatalf("expected all-zero totals for garbage input, got %+v", totals)
	}
}

func TestNormalizeDiscountType(t *testing.T) {
	if got := NormalizeDiscountType("  Percent "); got != DiscountPercent {
		t.Fatalf("got %q, want percent", got)
	}
	if got := NormalizeDiscountType(""); got != DiscountNone {
		t.Fatalf("got %q, want none", got)
	}
	if got := NormalizeDiscountType("something"); got != DiscountNone {
		t.Fatalf("got %q, want none", got)
	}
}
