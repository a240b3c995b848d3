package billing

import (
	"reflect"
	"testing"
)

func sampleLines() []CartLine {
	return []CartLine{
		{Barcode: "B-1", Name: "Rice 5kg", UnitPrice: 100, Qty: 3, ItemDiscountType: DiscountPercent, ItemDiscountValue: 10},
		{Barcode: "B-2", Name: "Flour 1kg", UnitPrice: 50, Qty: 2, FreeQty: 1},
		{Barcode: "B-3", Name: "Sugar 1kg", UnitPrice: 80, Qty: 1, FreeQty: 2, ItemDiscountType: DiscountAmount, ItemDiscountValue: 30},
	}
}

func TestComputeCartTotals(t *testing.T) {
	totals := ComputeCart(sampleLines(), DiscountNone, 0)

	// 270 + 100 + 50
	if totals.Subtotal != 420 {
		t.Fatalf("subtotal = %v, want 420", totals.Subtotal)
	}
	if totals.TotalItemDiscount != 60 {
		t.Fatalf("total item discount = %v, want 60", totals.TotalItemDiscount)
	}
	if totals.GrandTotal != 420 {
		t.Fatalf("grand total = %v, want 420", totals.GrandTotal)
	}
}

func TestComputeCartAmountDiscountClamped(t *testing.T) {
	lines := []CartLine{{Barcode: "B-1", UnitPrice: 1000, Qty: 1}}
	totals := ComputeCart(lines, DiscountAmount, 1500)
	if totals.CartDiscount != 1000 {
		t.Fatalf("cart discount = %v, want clamp to subtotal 1000", totals.CartDiscount)
	}
	if totals.GrandTotal != 0 {
		t.Fatalf("grand total = %v, want 0 (never negative)", totals.GrandTotal)
	}
}

func TestComputeCartPercentDiscount(t *testing.T) {
	lines := []CartLine{{Barcode: "B-1", UnitPrice: 500, Qty: 2}}
	totals := ComputeCart(lines, DiscountPercent, 25)
	if totals.CartDiscount != 250 {
		t.Fatalf("cart discount = %v, want 250", totals.CartDiscount)
	}
	if totals.GrandTotal != 750 {
		t.Fatalf("grand total = %v, want 750", totals.GrandTotal)
	}
}

func TestComputeCartIdempotent(t *testing.T) {
	lines := sampleLines()
	first := ComputeCart(lines, DiscountPercent, 5)
	second := ComputeCart(lines, DiscountPercent, 5)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("totals differ between identical calls: %+v vs %+v", first, second)
	}
}

func TestComputeCartFreeItemsManifestPreservesLineOrder(t *testing.T) {
	totals := ComputeCart(sampleLines(), DiscountNone, 0)
	want := []FreeItem{
		{Barcode: "B-2", Name: "Flour 1kg", Qty: 1},
		{Barcode: "B-3", Name: "Sugar 1kg", Qty: 2},
	}
	if !reflect.DeepEqual(totals.FreeItems, want) {
		t.Fatalf("free items = %+v, want %+v", totals.FreeItems, want)
	}
}

func TestComputeCartEmpty(t *testing.T) {
	totals := ComputeCart(nil, DiscountAmount, 100)
	if totals.Subtotal != 0 || totals.CartDiscount != 0 || totals.GrandTotal != 0 {
		t.Fatalf("expected zero totals for empty cart, got %+v", totals)
	}
}
