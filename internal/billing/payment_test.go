package billing

import (
	"errors"
	"testing"
)

func TestComputePaymentCash(t *testing.T) {
	if _, err := ComputePayment(500, "cash", "499.99", "", 0); !errors.Is(err, ErrCashNotEnough) {
		t.Fatalf("err = %v, want ErrCashNotEnough", err)
	}

	result, err := ComputePayment(500, "cash", "500", "", 0)
	if err != nil {
		t.Fatalf("exact cash rejected: %v", err)
	}
	if result.Balance != 0 || result.SaleOutstanding != 0 {
		t.Fatalf("balance = %v outstanding = %v, want 0 and 0", result.Balance, result.SaleOutstanding)
	}

	result, err = ComputePayment(500, "cash", "1,000", "", 0)
	if err != nil {
		t.Fatalf("overpayment rejected: %v", err)
	}
	if result.Balance != 500 {
		t.Fatalf("balance = %v, want 500", result.Balance)
	}
}

func TestComputePaymentCashRequiresAmount(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "NaN"} {
		if _, err := ComputePayment(100, "cash", raw, "", 0); !errors.Is(err, ErrCashReceivedRequired) {
			t.Fatalf("received %q: err = %v, want ErrCashReceivedRequired", raw, err)
		}
	}
}

func TestComputePaymentCardSettles(t *testing.T) {
	result, err := ComputePayment(320, "card", "", "", 150)
	if err != nil {
		t.Fatalf("card payment failed: %v", err)
	}
	if result.SaleOutstanding != 0 {
		t.Fatalf("outstanding = %v, want 0", result.SaleOutstanding)
	}
	if result.NewCustomerOutstanding != 150 {
		t.Fatalf("customer outstanding = %v, want unchanged 150", result.NewCustomerOutstanding)
	}
}

func TestComputePaymentCreditAccumulatesOutstanding(t *testing.T) {
	result, err := ComputePayment(750, "credit", "", "", 200)
	if err != nil {
		t.Fatalf("credit payment failed: %v", err)
	}
	if result.SaleOutstanding != 750 {
		t.Fatalf("sale outstanding = %v, want 750", result.SaleOutstanding)
	}
	if result.NewCustomerOutstanding != 950 {
		t.Fatalf("customer outstanding = %v, want 950", result.NewCustomerOutstanding)
	}
}

func TestComputePaymentCreditPartialCash(t *testing.T) {
	result, err := ComputePayment(750, "credit", "300", "", 0)
	if err != nil {
		t.Fatalf("partial cash on credit failed: %v", err)
	}
	if result.Received != 300 || result.SaleOutstanding != 450 {
		t.Fatalf("received = %v outstanding = %v, want 300 and 450", result.Received, result.SaleOutstanding)
	}
}

func TestComputePaymentChequeDate(t *testing.T) {
	for _, date := range []string{"", "soon", "2026-9-01", "01-09-2026"} {
		if _, err := ComputePayment(100, "cheque", "", date, 0); !errors.Is(err, ErrChequeDateRequired) {
			t.Fatalf("date %q: err = %v, want ErrChequeDateRequired", date, err)
		}
	}

	result, err := ComputePayment(100, "check", "", "2026-09-01", 0)
	if err != nil {
		t.Fatalf("cheque payment failed: %v", err)
	}
	if result.Method != PaymentCheque {
		t.Fatalf("method = %q, want %q after normalizing the check spelling", result.Method, PaymentCheque)
	}
	if result.SaleOutstanding != 100 {
		t.Fatalf("sale outstanding = %v, want 100", result.SaleOutstanding)
	}
}

func TestComputePaymentUnsupportedMethod(t *testing.T) {
	if _, err := ComputePayment(100, "barter", "", "", 0); !errors.Is(err, ErrUnsupportedPayment) {
		t.Fatalf("err = %v, want ErrUnsupportedPayment", err)
	}
}
