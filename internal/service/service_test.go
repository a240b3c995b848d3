package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"apexpos/backend/internal/cache"
	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/store/memory"
)

func newTestService() *Service {
	repo := memory.NewSeeded()
	return New(repo, cache.NoopSearchCache{}, 5*time.Second, "APEX LOGISTICS")
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func cashierCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "cashier", Role: "cashier"})
}

func TestFinalizeSaleCashHappyPath(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	// Wheat Flour is seeded at 180 with stock 140.
	sale, err := svc.FinalizeSale(ctx, domain.SaleRequest{
		Lines: []domain.SaleLine{
			{Barcode: "8901002", Qty: 3, ItemDiscountType: "percent", ItemDiscountValue: 10},
		},
		PaymentMethod: "cash",
		CashReceived:  "486",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if sale.Subtotal != 486 {
		t.Fatalf("subtotal = %v, want 486", sale.Subtotal)
	}
	if sale.TotalItemDiscount != 54 {
		t.Fatalf("item discount = %v, want 54", sale.TotalItemDiscount)
	}
	if sale.GrandTotal != 486 || sale.Balance != 0 || sale.SaleOutstanding != 0 {
		t.Fatalf("grand = %v balance = %v outstanding = %v", sale.GrandTotal, sale.Balance, sale.SaleOutstanding)
	}

	product, err := svc.GetProduct(ctx, "8901002")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product.Stock != 137 {
		t.Fatalf("stock after sale = %d, want 137", product.Stock)
	}
}

func TestFinalizeSaleRequiresAdmin(t *testing.T) {
	svc := newTestService()

	_, err := svc.FinalizeSale(cashierCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 1}},
		PaymentMethod: "cash",
		CashReceived:  "180",
	})
	if !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("err = %v, want ErrAdminRequired", err)
	}
}

func TestFinalizeSaleCashNotEnough(t *testing.T) {
	svc := newTestService()

	_, err := svc.FinalizeSale(adminCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 1}},
		PaymentMethod: "cash",
		CashReceived:  "179.99",
	})
	if err == nil || !strings.Contains(err.Error(), "not enough") {
		t.Fatalf("err = %v, want cash-not-enough", err)
	}
}

func TestFinalizeSaleInsufficientStock(t *testing.T) {
	svc := newTestService()

	_, err := svc.FinalizeSale(adminCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 100, FreeQty: 50}},
		PaymentMethod: "cash",
		CashReceived:  "999999",
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	// The rejection names the exact remaining ceiling so the terminal can
	// tell the cashier how many units are still sellable.
	if !strings.Contains(err.Error(), "only 140 available for 8901002") {
		t.Fatalf("err = %v, want remaining-stock ceiling in message", err)
	}
}

func TestFinalizeSaleCreditRollsOutstanding(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	// Sunil is seeded with a 1500 outstanding balance.
	sale, err := svc.FinalizeSale(ctx, domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 1}},
		PaymentMethod: "credit",
		Customer:      &domain.SaleCustomer{Phone: "0770001111"},
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if sale.SaleOutstanding != 180 {
		t.Fatalf("sale outstanding = %v, want 180", sale.SaleOutstanding)
	}
	if sale.CustomerOutstandingNow != 1680 {
		t.Fatalf("customer outstanding = %v, want 1680", sale.CustomerOutstandingNow)
	}

	customer, err := svc.GetCustomer(ctx, sale.CustomerID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if customer.Outstanding != 1680 {
		t.Fatalf("stored outstanding = %v, want 1680", customer.Outstanding)
	}
}

func TestFinalizeSaleCreditWithoutCustomerFails(t *testing.T) {
	svc := newTestService()

	_, err := svc.FinalizeSale(adminCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 1}},
		PaymentMethod: "credit",
	})
	if !errors.Is(err, ErrCustomerRequired) {
		t.Fatalf("err = %v, want ErrCustomerRequired", err)
	}
}

func TestFinalizeSaleChequeRecordsDueDate(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	sale, err := svc.FinalizeSale(ctx, domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 2}},
		PaymentMethod: "check",
		ChequeDate:    "2026-09-05",
		Customer:      &domain.SaleCustomer{Phone: "0712345678"},
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if sale.PaymentMethod != "cheque" {
		t.Fatalf("method = %q, want cheque after normalizing", sale.PaymentMethod)
	}

	customer, err := svc.GetCustomer(ctx, sale.CustomerID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	found := false
	for _, due := range customer.ChequeDues {
		if due.Date == "2026-09-05" && due.SaleID == sale.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("cheque due not recorded: %+v", customer.ChequeDues)
	}
}

func TestFinalizeSaleCreatesCustomerOnTheFly(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	sale, err := svc.FinalizeSale(ctx, domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901003", Qty: 1}},
		PaymentMethod: "credit",
		Customer:      &domain.SaleCustomer{Name: "Kamala Silva", Phone: "0759998888"},
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if sale.CustomerName != "Kamala Silva" {
		t.Fatalf("customer name = %q", sale.CustomerName)
	}

	customer, err := svc.GetCustomer(ctx, sale.CustomerID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if customer.Outstanding != 210 {
		t.Fatalf("new customer outstanding = %v, want 210", customer.Outstanding)
	}
}

func TestSubmitSaleRoutesByRole(t *testing.T) {
	svc := newTestService()

	resp, err := svc.SubmitSale(cashierCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 1}},
		PaymentMethod: "cash",
		CashReceived:  "200",
	})
	if err != nil {
		t.Fatalf("cashier submit failed: %v", err)
	}
	if resp.Pending == nil || resp.Sale != nil {
		t.Fatalf("cashier submit should queue a pending sale, got %+v", resp)
	}
	if resp.Pending.Status != domain.PendingStatusPending {
		t.Fatalf("status = %q", resp.Pending.Status)
	}

	resp, err = svc.SubmitSale(adminCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 1}},
		PaymentMethod: "cash",
		CashReceived:  "200",
	})
	if err != nil {
		t.Fatalf("admin submit failed: %v", err)
	}
	if resp.Sale == nil || resp.Pending != nil {
		t.Fatalf("admin submit should finalize immediately, got %+v", resp)
	}
}

func TestApprovePendingSaleLifecycle(t *testing.T) {
	svc := newTestService()

	submitted, err := svc.SubmitSale(cashierCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 2}},
		PaymentMethod: "cash",
		CashReceived:  "360",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	pendingID := submitted.Pending.ID

	approved, err := svc.ApprovePendingSale(adminCtx(), pendingID, "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != domain.PendingStatusApproved || approved.SaleID == "" {
		t.Fatalf("approved = %+v", approved)
	}

	if _, err := svc.GetSale(adminCtx(), approved.SaleID); err != nil {
		t.Fatalf("linked sale missing: %v", err)
	}

	// The record left the pending state; a second decision must fail.
	if _, err := svc.ApprovePendingSale(adminCtx(), pendingID, ""); !errors.Is(err, store.ErrNotPending) {
		t.Fatalf("second approve err = %v, want ErrNotPending", err)
	}
	if _, err := svc.DeletePendingSale(adminCtx(), pendingID); !errors.Is(err, store.ErrNotPending) {
		t.Fatalf("delete after approve err = %v, want ErrNotPending", err)
	}
}

func TestApprovePendingSaleRequiresAdmin(t *testing.T) {
	svc := newTestService()

	submitted, err := svc.SubmitSale(cashierCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 1}},
		PaymentMethod: "cash",
		CashReceived:  "180",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := svc.ApprovePendingSale(cashierCtx(), submitted.Pending.ID, ""); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("err = %v, want ErrAdminRequired", err)
	}
}

func TestApprovePendingSaleConcurrentSingleWinner(t *testing.T) {
	svc := newTestService()

	submitted, err := svc.SubmitSale(cashierCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 2}},
		PaymentMethod: "cash",
		CashReceived:  "360",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	pendingID := submitted.Pending.ID

	errs := make([]error, 4)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ApprovePendingSale(adminCtx(), pendingID, "")
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, store.ErrNotPending):
			lost++
		default:
			t.Fatalf("unexpected approve err: %v", err)
		}
	}
	if won != 1 || lost != len(errs)-1 {
		t.Fatalf("won = %d lost = %d, want exactly one winner", won, lost)
	}

	// Stock moved once: the cart sold 2 of the 140 seeded units.
	product, err := svc.GetProduct(adminCtx(), "8901002")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 138 {
		t.Fatalf("stock = %d, want 138 after a single finalize", product.Stock)
	}
	sales, err := svc.ListSales(adminCtx(), 50)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("sales = %d, want the cart finalized once", len(sales))
	}
}

func TestApprovePendingSaleReopensAfterFailedFinalize(t *testing.T) {
	svc := newTestService()

	// Cashiers park carts without payment validation, so the shortfall only
	// surfaces when the admin finalizes.
	submitted, err := svc.SubmitSale(cashierCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 2}},
		PaymentMethod: "cash",
		CashReceived:  "10",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	pendingID := submitted.Pending.ID

	if _, err := svc.ApprovePendingSale(adminCtx(), pendingID, ""); err == nil || !strings.Contains(err.Error(), "not enough") {
		t.Fatalf("err = %v, want cash-not-enough", err)
	}

	// The failed approval must hand the record back so the admin can fix the
	// payment and retry.
	pending, err := svc.GetPendingSale(adminCtx(), pendingID)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if pending.Status != domain.PendingStatusPending {
		t.Fatalf("status = %q, want pending again after failed finalize", pending.Status)
	}

	fixed := pending.Payload
	fixed.CashReceived = "360"
	if _, err := svc.UpdatePendingSale(adminCtx(), pendingID, domain.PendingSaleCreateRequest{Payload: fixed}); err != nil {
		t.Fatalf("update pending: %v", err)
	}
	approved, err := svc.ApprovePendingSale(adminCtx(), pendingID, "")
	if err != nil {
		t.Fatalf("retry approve failed: %v", err)
	}
	if approved.Status != domain.PendingStatusApproved || approved.SaleID == "" {
		t.Fatalf("approved = %+v", approved)
	}
}

func TestUpdatePendingSaleOnlyWhilePending(t *testing.T) {
	svc := newTestService()

	submitted, err := svc.SubmitSale(cashierCtx(), domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 1}},
		PaymentMethod: "cash",
		CashReceived:  "180",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	pendingID := submitted.Pending.ID

	name := "Evening order"
	updated, err := svc.UpdatePendingSale(cashierCtx(), pendingID, domain.PendingSaleCreateRequest{
		Name: &name,
		Payload: domain.SaleRequest{
			Lines:         []domain.SaleLine{{Barcode: "8901003", Qty: 4}},
			PaymentMethod: "cash",
			CashReceived:  "840",
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name == nil || *updated.Name != "Evening order" {
		t.Fatalf("name = %v", updated.Name)
	}

	if _, err := svc.DeletePendingSale(adminCtx(), pendingID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.UpdatePendingSale(cashierCtx(), pendingID, domain.PendingSaleCreateRequest{
		Payload: domain.SaleRequest{Lines: []domain.SaleLine{{Barcode: "8901002", Qty: 1}}},
	}); !errors.Is(err, store.ErrNotPending) {
		t.Fatalf("update after delete err = %v, want ErrNotPending", err)
	}
}

func TestSaveDraftSkipsSingleLineCarts(t *testing.T) {
	svc := newTestService()
	ctx := cashierCtx()

	draft, err := svc.SaveDraft(ctx, domain.SaleRequest{
		Lines: []domain.SaleLine{{Barcode: "8901002", Qty: 1}},
	})
	if err != nil {
		t.Fatalf("save draft failed: %v", err)
	}
	if draft != nil {
		t.Fatalf("single-line cart should not produce a draft")
	}

	draft, err = svc.SaveDraft(ctx, domain.SaleRequest{
		Lines: []domain.SaleLine{
			{Barcode: "8901002", Qty: 1},
			{Barcode: "8901003", Qty: 2},
		},
	})
	if err != nil {
		t.Fatalf("save draft failed: %v", err)
	}
	if draft == nil || draft.Name != nil {
		t.Fatalf("draft = %+v, want unnamed pending record", draft)
	}
}

func TestRehydratePendingCart(t *testing.T) {
	svc := newTestService()

	submitted, err := svc.SubmitSale(cashierCtx(), domain.SaleRequest{
		Lines: []domain.SaleLine{
			{Barcode: "8901002", Qty: 0, FreeQty: -3, ItemDiscountType: "weird", ItemDiscountValue: 5},
			{Barcode: "no-such-item", Qty: 2},
			{Barcode: "8901003", Qty: 2, FreeQty: 1},
		},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	lines, err := svc.RehydratePendingCart(cashierCtx(), submitted.Pending.ID)
	if err != nil {
		t.Fatalf("rehydrate failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (unknown barcode dropped)", len(lines))
	}

	first := lines[0]
	if first.Qty != 1 || first.FreeQty != 0 {
		t.Fatalf("qty = %d freeQty = %d, want clamped to 1 and 0", first.Qty, first.FreeQty)
	}
	if first.ItemDiscountType != "none" {
		t.Fatalf("discount type = %q, want normalized none", first.ItemDiscountType)
	}
	if first.UnitPrice != 180 || first.Stock != 140 {
		t.Fatalf("fresh price/stock not joined: price=%v stock=%d", first.UnitPrice, first.Stock)
	}
}

func TestChequeDueAlertsExactWindow(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	customer, err := svc.CreateCustomer(ctx, domain.CustomerCreateRequest{
		Name:  "Ranil Jayasuriya",
		Phone: "0711112222",
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	for _, date := range []string{"2026-08-30", "2026-08-31", "2026-09-01"} {
		if err := svc.repo.AppendChequeDue(ctx, customer.ID, domain.ChequeDueAnnotation{Date: date, SaleID: "sale-x"}); err != nil {
			t.Fatalf("append cheque due failed: %v", err)
		}
	}

	alerts, err := svc.ChequeDueAlerts(ctx, now)
	if err != nil {
		t.Fatalf("alerts failed: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Date != "2026-08-31" || alerts[0].DaysLeft != 2 {
		t.Fatalf("alerts = %+v, want only the date exactly two days out", alerts)
	}
}

func TestDailySummarySplitsOutstandingAddedFromBook(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()
	today := time.Now().UTC()

	baseline, err := svc.DailySummary(ctx, today)
	if err != nil {
		t.Fatalf("baseline summary failed: %v", err)
	}

	if _, err := svc.FinalizeSale(ctx, domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 1}},
		PaymentMethod: "cash",
		CashReceived:  "200",
	}); err != nil {
		t.Fatalf("cash sale failed: %v", err)
	}
	if _, err := svc.FinalizeSale(ctx, domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 2}},
		PaymentMethod: "credit",
		CashReceived:  "100",
		Customer:      &domain.SaleCustomer{Phone: "0770001111"},
	}); err != nil {
		t.Fatalf("credit sale failed: %v", err)
	}

	summary, err := svc.DailySummary(ctx, today)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	// The credit sale left 360-100 unpaid; the cash sale adds nothing.
	if summary.OutstandingAdded != 260 {
		t.Fatalf("outstanding added = %v, want 260", summary.OutstandingAdded)
	}
	if summary.OutstandingBook != baseline.OutstandingBook+260 {
		t.Fatalf("outstanding book = %v, want baseline %v + 260", summary.OutstandingBook, baseline.OutstandingBook)
	}
	if summary.Sales != baseline.Sales+2 || summary.NetSales != baseline.NetSales+540 {
		t.Fatalf("sales = %d net = %v, want two more sales worth 540", summary.Sales, summary.NetSales)
	}
}

func TestBuildReceiptUsesSaleSnapshots(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	sale, err := svc.FinalizeSale(ctx, domain.SaleRequest{
		Lines:         []domain.SaleLine{{Barcode: "8901002", Qty: 2}},
		PaymentMethod: "cash",
		CashReceived:  "400",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	newPrice := 999.0
	if _, err := svc.UpdateProduct(ctx, "8901002", domain.ProductUpdateRequest{Price: &newPrice}); err != nil {
		t.Fatalf("update product failed: %v", err)
	}

	receipt, err := svc.BuildReceipt(ctx, sale.ID)
	if err != nil {
		t.Fatalf("receipt failed: %v", err)
	}
	if receipt.BusinessName != "APEX LOGISTICS" {
		t.Fatalf("business name = %q", receipt.BusinessName)
	}
	if len(receipt.Lines) != 1 || receipt.Lines[0].UnitPrice != 180 {
		t.Fatalf("receipt should keep the price at sale time, got %+v", receipt.Lines)
	}
	if !strings.Contains(receipt.Text, "APEX LOGISTICS") || !strings.Contains(receipt.Text, "Bill Total: 360.00") {
		t.Fatalf("unexpected receipt text:\n%s", receipt.Text)
	}
}

func TestQuoteCartComputesTotalsWithoutSelling(t *testing.T) {
	svc := newTestService()

	quote, err := svc.QuoteCart(cashierCtx(), domain.SaleRequest{
		Lines: []domain.SaleLine{
			{Barcode: "8901002", Qty: 2},
			{Barcode: "8901003", Qty: 1, FreeQty: 1},
		},
		CartDiscountType:  "amount",
		CartDiscountValue: 70,
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.Totals.Subtotal != 570 {
		t.Fatalf("subtotal = %v, want 570", quote.Totals.Subtotal)
	}
	if quote.Totals.GrandTotal != 500 {
		t.Fatalf("grand = %v, want 500", quote.Totals.GrandTotal)
	}
	if len(quote.Totals.FreeItems) != 1 || quote.Totals.FreeItems[0].Qty != 1 {
		t.Fatalf("free items = %+v", quote.Totals.FreeItems)
	}

	// Quoting must not touch stock.
	product, err := svc.GetProduct(adminCtx(), "8901002")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product.Stock != 140 {
		t.Fatalf("stock = %d, want untouched 140", product.Stock)
	}
}
