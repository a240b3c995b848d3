package billing

import (
	"errors"
	"regexp"
	"strings"
)

const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentCredit = "credit"
	PaymentCheque = "cheque"
)

var (
	ErrCashReceivedRequired = errors.New("cash received required")
	ErrCashNotEnough        = errors.New("cash received is not enough")
	ErrChequeDateRequired   = errors.New("cheque date is required")
	ErrUnsupportedPayment   = errors.New("unsupported payment method")
)

// cashEpsilon tolerates float noise when comparing received cash against the
// grand total: payment at exact equality must be accepted.
const cashEpsilon = 1e-9

var chequeDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizePaymentMethod lowercases the method and maps the "check" spelling
// used by some clients onto "cheque".
func NormalizePaymentMethod(raw string) string {
	method := strings.ToLower(strings.TrimSpace(raw))
	if method == "check" {
		return PaymentCheque
	}
	return method
}

type PaymentResult struct {
	Method                 string  `json:"method"`
	Received               float64 `json:"received"`
	Balance                float64 `json:"balance"`
	SaleOutstanding        float64 `json:"saleOutstanding"`
	NewCustomerOutstanding float64 `json:"newCustomerOutstanding"`
}

// ComputePayment validates the payment and derives change and outstanding
// amounts. Cash requires enough received money; cheque requires an ISO date.
// Credit and cheque may carry a partial cash receipt, with the uncollected
// remainder added to the customer's running outstanding balance.
func ComputePayment(grandTotal float64, method string, cashReceivedRaw string, chequeDate string, priorOutstanding float64) (PaymentResult, error) {
	grandTotal = sanitize(grandTotal)
	if priorOutstanding = sanitize(priorOutstanding); priorOutstanding < 0 {
		priorOutstanding = 0
	}

	result := PaymentResult{Method: NormalizePaymentMethod(method)}
	switch result.Method {
	case PaymentCash:
		received, ok := parseFinite(cashReceivedRaw)
		if !ok {
			return PaymentResult{}, ErrCashReceivedRequired
		}
		if received+cashEpsilon < grandTotal {
			return PaymentResult{}, ErrCashNotEnough
		}
		result.Received = received
		result.Balance = received - grandTotal
		result.SaleOutstanding = maxZero(grandTotal - received)
	case PaymentCard:
		// Fully settled at the terminal.
		result.SaleOutstanding = 0
	case PaymentCredit:
		received, _ := parseFinite(cashReceivedRaw)
		result.Received = maxZero(received)
		result.SaleOutstanding = maxZero(grandTotal - result.Received)
	case PaymentCheque:
		if !chequeDatePattern.MatchString(strings.TrimSpace(chequeDate)) {
			return PaymentResult{}, ErrChequeDateRequired
		}
		received, _ := parseFinite(cashReceivedRaw)
		result.Received = maxZero(received)
		result.SaleOutstanding = maxZero(grandTotal - result.Received)
	default:
		return PaymentResult{}, ErrUnsupportedPayment
	}

	result.NewCustomerOutstanding = maxZero(priorOutstanding + result.SaleOutstanding)
	return result, nil
}

func maxZero(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}
