package billing

// The availability guard is advisory: it gives the cashier a fast-fail answer
// before submission, but the store remains the authority and may still reject
// a sale on its own stock check.

// PaidQtyInCart sums paid units for a barcode across all cart lines.
func PaidQtyInCart(barcode string, lines []CartLine) int {
	total := 0
	for _, line := range lines {
		if line.Barcode == barcode && line.Qty > 0 {
			total += line.Qty
		}
	}
	return total
}

// FreeQtyInCart sums free-issue units for a barcode across all cart lines.
func FreeQtyInCart(barcode string, lines []CartLine) int {
	total := 0
	for _, line := range lines {
		if line.Barcode == barcode && line.FreeQty > 0 {
			total += line.FreeQty
		}
	}
	return total
}

// RemainingForDisplay is how many more units (paid or free) of a product may
// be added to the cart. Used when deciding whether an item can be added or
// shown in a picker.
func RemainingForDisplay(barcode string, stock int, lines []CartLine) int {
	remaining := stock - PaidQtyInCart(barcode, lines) - FreeQtyInCart(barcode, lines)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AvailableForEdit is the ceiling for editing an existing line's paid
// quantity in place. The line's own current quantity is passed as
// excludingLineQty so it is not counted against itself.
func AvailableForEdit(barcode string, stock int, lines []CartLine, excludingLineQty int) int {
	available := stock - (PaidQtyInCart(barcode, lines) - excludingLineQty)
	if available < 0 {
		return 0
	}
	return available
}
