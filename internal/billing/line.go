package billing

import "strings"

const (
	DiscountNone    = "none"
	DiscountAmount  = "amount"
	DiscountPercent = "percent"
)

// NormalizeDiscountType maps empty or unknown discount types to "none".
func NormalizeDiscountType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case DiscountAmount:
		return DiscountAmount
	case DiscountPercent:
		return DiscountPercent
	default:
		return DiscountNone
	}
}

// CartLine is one product line in an in-progress sale. Qty counts paid units;
// FreeQty counts free-issue units, which never enter discount math.
type CartLine struct {
	Barcode           string  `json:"barcode"`
	Name              string  `json:"name"`
	UnitPrice         float64 `json:"unitPrice"`
	Qty               int     `json:"qty"`
	FreeQty           int     `json:"freeQty"`
	ItemDiscountType  string  `json:"itemDiscountType"`
	ItemDiscountValue float64 `json:"itemDiscountValue"`
	StockAtAdd        int     `json:"stockAtAdd"`
}

type LineTotals struct {
	Base         float64 `json:"base"`
	ItemDiscount float64 `json:"itemDiscount"`
	NetTotal     float64 `json:"netTotal"`
}

// ComputeLine prices a single cart line. Base excludes free quantity, an
// amount discount is clamped to the base, a percent discount is clamped to
// [0,100] and rounded to a whole unit, and the net total is floored at zero.
func ComputeLine(line CartLine) LineTotals {
	qty := line.Qty
	if qty < 0 {
		qty = 0
	}
	base := sanitize(line.UnitPrice) * float64(qty)
	discount := discountAmount(line.ItemDiscountType, line.ItemDiscountValue, base)
	net := base - discount
	if net < 0 {
		net = 0
	}
	return LineTotals{Base: base, ItemDiscount: discount, NetTotal: net}
}

func discountAmount(discountType string, value, base float64) float64 {
	value = sanitize(value)
	switch NormalizeDiscountType(discountType) {
	case DiscountAmount:
		return Clamp(value, 0, base)
	case DiscountPercent:
		return RoundMoney(base * Clamp(value, 0, 100) / 100)
	default:
		return 0
	}
}
