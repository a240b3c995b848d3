package billing

// FreeItem is one entry in the free-items manifest disclosed on receipts.
type FreeItem struct {
	Barcode string `json:"barcode"`
	Name    string `json:"name"`
	Qty     int    `json:"qty"`
}

type CartTotals struct {
	Subtotal          float64    `json:"subtotal"`
	TotalItemDiscount float64    `json:"totalItemDiscount"`
	CartDiscount      float64    `json:"cartDiscount"`
	GrandTotal        float64    `json:"grandTotal"`
	FreeItems         []FreeItem `json:"freeItems"`
}

// ComputeCart aggregates line totals into a cart. The cart-level discount
// follows the same amount/percent rules as a line discount, applied to the
// subtotal, and the grand total is floored at zero. The free-items manifest
// preserves line order and is excluded from all discount math.
func ComputeCart(lines []CartLine, cartDiscountType string, cartDiscountValue float64) CartTotals {
	totals := CartTotals{FreeItems: make([]FreeItem, 0, 4)}
	for _, line := range lines {
		lt := ComputeLine(line)
		totals.Subtotal += lt.NetTotal
		totals.TotalItemDiscount += lt.ItemDiscount
		if line.FreeQty > 0 {
			totals.FreeItems = append(totals.FreeItems, FreeItem{
				Barcode: line.Barcode,
				Name:    line.Name,
				Qty:     line.FreeQty,
			})
		}
	}

	totals.CartDiscount = discountAmount(cartDiscountType, cartDiscountValue, totals.Subtotal)
	totals.GrandTotal = totals.Subtotal - totals.CartDiscount
	if totals.GrandTotal < 0 {
		totals.GrandTotal = 0
	}
	return totals
}
