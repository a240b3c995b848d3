package billing

import "testing"

func TestRemainingForDisplay(t *testing.T) {
	lines := []CartLine{
		{Barcode: "B-1", Qty: 3, FreeQty: 1},
		{Barcode: "B-2", Qty: 2},
	}

	if got := RemainingForDisplay("B-1", 5, lines); got != 1 {
		t.Fatalf("remaining = %d, want 1", got)
	}
	if got := RemainingForDisplay("B-2", 2, lines); got != 0 {
		t.Fatalf("remaining = %d, want 0 when paid+free equals stock", got)
	}
	if got := RemainingForDisplay("B-3", 10, lines); got != 10 {
		t.Fatalf("remaining = %d, want full stock for item not in cart", got)
	}
	// Never negative even when the cart overshoots stock.
	if got := RemainingForDisplay("B-1", 2, lines); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
}

func TestAvailableForEdit(t *testing.T) {
	lines := []CartLine{{Barcode: "B-1", Qty: 3, FreeQty: 1}}

	// Editing the line itself: its own qty must not count against it.
	if got := AvailableForEdit("B-1", 5, lines, 3); got != 5 {
		t.Fatalf("available = %d, want 5", got)
	}
	if got := AvailableForEdit("B-1", 5, lines, 0); got != 2 {
		t.Fatalf("available = %d, want 2", got)
	}
	if got := AvailableForEdit("B-1", 1, lines, 0); got != 0 {
		t.Fatalf("available = %d, want 0 (never negative)", got)
	}
}

func TestQtySumsSkipNegativeEntries(t *testing.T) {
	lines := []CartLine{
		{Barcode: "B-1", Qty: -4, FreeQty: -2},
		{Barcode: "B-1", Qty: 2, FreeQty: 1},
	}
	if got := PaidQtyInCart("B-1", lines); got != 2 {
		t.Fatalf("paid qty = %d, want 2", got)
	}
	if got := FreeQtyInCart("B-1", lines); got != 1 {
		t.Fatalf("free qty = %d, want 1", got)
	}
}
