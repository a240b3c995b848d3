package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"apexpos/backend/internal/billing"
	"apexpos/backend/internal/cache"
	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

var (
	ErrAdminRequired    = errors.New("admin role required")
	ErrCustomerRequired = errors.New("customer required")
)

const outstandingReportCacheKey = "report:customer-outstanding"

type Service struct {
	repo         store.Repository
	searchCache  cache.SearchCache
	searchTTL    time.Duration
	businessName string
}

func New(repo store.Repository, searchCache cache.SearchCache, searchTTL time.Duration, businessName string) *Service {
	if searchCache == nil {
		searchCache = cache.NoopSearchCache{}
	}
	if searchTTL < time.Second {
		searchTTL = 20 * time.Second
	}
	if businessName == "" {
		businessName = "APEX LOGISTICS"
	}

	return &Service{
		repo:         repo,
		searchCache:  searchCache,
		searchTTL:    searchTTL,
		businessName: businessName,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Product{}, nil
	}
	if limit < 1 {
		limit = 20
	}

	key := fmt.Sprintf("search:products:%s:%d", query, limit)
	if payload, hit, err := s.searchCache.Get(ctx, key); err == nil && hit {
		var cached []domain.Product
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	} else if err != nil {
		log.Printf("[service] WARN: product search cache read failed: %v", err)
	}

	products, err := s.repo.SearchProducts(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(products); err == nil {
		if err := s.searchCache.Set(ctx, key, payload, s.searchTTL); err != nil {
			log.Printf("[service] WARN: product search cache write failed: %v", err)
		}
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, barcode string) (domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return domain.Product{}, store.ErrInvalidSale
	}
	product, err := s.repo.GetProductByBarcode(ctx, barcode)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Product{}, ErrAdminRequired
	}

	product := domain.Product{
		Barcode:   strings.TrimSpace(req.Barcode),
		Name:      strings.TrimSpace(req.Name),
		Price:     billing.RoundMoney(req.Price*100) / 100,
		Stock:     req.Stock,
		CreatedAt: time.Now().UTC(),
	}
	if product.Barcode == "" || product.Name == "" || product.Price < 0 || product.Stock < 0 {
		return domain.Product{}, store.ErrInvalidSale
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.Barcode, fmt.Sprintf("name=%s,price=%.2f,stock=%d", created.Name, created.Price, created.Stock))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, barcode string, req domain.ProductUpdateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Product{}, ErrAdminRequired
	}

	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return domain.Product{}, store.ErrInvalidSale
	}

	existing, err := s.repo.GetProductByBarcode(ctx, barcode)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidSale
		}
		updated.Name = name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.Product{}, store.ErrInvalidSale
		}
		updated.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return domain.Product{}, store.ErrInvalidSale
		}
		updated.Stock = *req.Stock
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", saved.Barcode, fmt.Sprintf("name=%s,price=%.2f,stock=%d", saved.Name, saved.Price, saved.Stock))
	return *saved, nil
}

func (s *Service) DeleteProduct(ctx context.Context, barcode string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return ErrAdminRequired
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return store.ErrInvalidSale
	}
	if err := s.repo.DeleteProduct(ctx, barcode); err != nil {
		return err
	}
	s.logAudit(ctx, "product_delete", "product", barcode, "")
	return nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	customer := domain.Customer{
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}
	s.logAudit(ctx, "customer_create", "customer", created.ID, fmt.Sprintf("name=%s,phone=%s", created.Name, created.Phone))
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	existing, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		updated.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		updated.Address = strings.TrimSpace(*req.Address)
	}
	if req.Notes != nil {
		updated.Notes = strings.TrimSpace(*req.Notes)
	}

	saved, err := s.repo.UpdateCustomer(ctx, updated)
	if err != nil {
		return domain.Customer{}, err
	}
	s.logAudit(ctx, "customer_update", "customer", saved.ID, fmt.Sprintf("name=%s,phone=%s", saved.Name, saved.Phone))
	return *saved, nil
}

// QuoteCart prices a cart without selling anything. Unknown barcodes are
// dropped so a stale client cart cannot block the quote.
func (s *Service) QuoteCart(ctx context.Context, req domain.SaleRequest) (domain.CartQuote, error) {
	joined, err := s.joinLines(ctx, req.Lines, true)
	if err != nil {
		return domain.CartQuote{}, err
	}

	cartLines := make([]billing.CartLine, 0, len(joined))
	for _, line := range joined {
		cartLines = append(cartLines, line.CartLine)
	}
	totals := billing.ComputeCart(cartLines, req.CartDiscountType, req.CartDiscountValue)

	return domain.CartQuote{Lines: joined, Totals: totals}, nil
}

// Availability answers the advisory stock question for one product against
// the caller's current cart.
func (s *Service) Availability(ctx context.Context, barcode string, lines []domain.SaleLine, excludingLineQty int) (domain.Availability, error) {
	product, err := s.repo.GetProductByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		return domain.Availability{}, err
	}

	cartLines := make([]billing.CartLine, 0, len(lines))
	for _, line := range lines {
		cartLines = append(cartLines, billing.CartLine{Barcode: line.Barcode, Qty: line.Qty, FreeQty: line.FreeQty})
	}

	return domain.Availability{
		Barcode:             product.Barcode,
		Stock:               product.Stock,
		RemainingForDisplay: billing.RemainingForDisplay(product.Barcode, product.Stock, cartLines),
		AvailableForEdit:    billing.AvailableForEdit(product.Barcode, product.Stock, cartLines, excludingLineQty),
	}, nil
}

// SubmitSale routes by role: admins finalize immediately, cashiers queue the
// sale for approval.
func (s *Service) SubmitSale(ctx context.Context, req domain.SaleRequest) (domain.SubmitSaleResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.SubmitSaleResponse{}, ErrAdminRequired
	}

	if actor.Role == "admin" {
		sale, err := s.FinalizeSale(ctx, req)
		if err != nil {
			return domain.SubmitSaleResponse{}, err
		}
		return domain.SubmitSaleResponse{Sale: &sale}, nil
	}

	pending, err := s.CreatePendingSale(ctx, domain.PendingSaleCreateRequest{Payload: req})
	if err != nil {
		return domain.SubmitSaleResponse{}, err
	}
	return domain.SubmitSaleResponse{Pending: &pending}, nil
}

// FinalizeSale prices the cart against the current catalog, validates the
// payment, persists the sale and rolls the customer's outstanding balance
// forward. Admin only: cashiers go through the pending queue.
func (s *Service) FinalizeSale(ctx context.Context, req domain.SaleRequest) (domain.Sale, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Sale{}, ErrAdminRequired
	}

	joined, err := s.joinLines(ctx, req.Lines, false)
	if err != nil {
		return domain.Sale{}, err
	}
	if len(joined) == 0 {
		return domain.Sale{}, store.ErrInvalidSale
	}

	cartLines := make([]billing.CartLine, 0, len(joined))
	for _, line := range joined {
		cartLines = append(cartLines, line.CartLine)
	}
	totals := billing.ComputeCart(cartLines, req.CartDiscountType, req.CartDiscountValue)

	method := billing.NormalizePaymentMethod(req.PaymentMethod)
	customer, err := s.resolveCustomer(ctx, req.Customer)
	if err != nil {
		return domain.Sale{}, err
	}
	if customer == nil && (method == billing.PaymentCredit || method == billing.PaymentCheque) {
		return domain.Sale{}, ErrCustomerRequired
	}

	priorOutstanding := 0.0
	if customer != nil {
		priorOutstanding = customer.Outstanding
	}
	payment, err := billing.ComputePayment(totals.GrandTotal, method, req.CashReceived, req.ChequeDate, priorOutstanding)
	if err != nil {
		return domain.Sale{}, err
	}

	saleLines := make([]domain.SaleLine, 0, len(joined))
	for _, line := range joined {
		saleLines = append(saleLines, domain.SaleLine{
			Barcode:           line.Barcode,
			Qty:               line.Qty,
			FreeQty:           line.FreeQty,
			ItemDiscountType:  line.ItemDiscountType,
			ItemDiscountValue: line.ItemDiscountValue,
			Name:              line.Name,
			UnitPrice:         line.UnitPrice,
		})
	}

	sale := domain.Sale{
		ID:                     xid.New("sale"),
		Lines:                  saleLines,
		FreeItems:              totals.FreeItems,
		PaymentMethod:          payment.Method,
		CartDiscountType:       billing.NormalizeDiscountType(req.CartDiscountType),
		CartDiscountValue:      req.CartDiscountValue,
		Subtotal:               totals.Subtotal,
		TotalItemDiscount:      totals.TotalItemDiscount,
		CartDiscount:           totals.CartDiscount,
		GrandTotal:             totals.GrandTotal,
		CashReceived:           payment.Received,
		Balance:                payment.Balance,
		SaleOutstanding:        payment.SaleOutstanding,
		ChequeDate:             strings.TrimSpace(req.ChequeDate),
		CustomerOutstandingNow: payment.NewCustomerOutstanding,
		CreatedBy:              actor.Username,
		CreatedAt:              time.Now().UTC(),
	}
	if customer != nil {
		sale.CustomerID = customer.ID
		sale.CustomerName = customer.Name
	}
	if payment.Method != billing.PaymentCheque {
		sale.ChequeDate = ""
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}

	if customer != nil {
		if err := s.repo.SetCustomerOutstanding(ctx, customer.ID, payment.NewCustomerOutstanding); err != nil {
			log.Printf("[service] WARN: failed to update outstanding customer=%s sale=%s: %v", customer.ID, created.ID, err)
		}
		if payment.Method == billing.PaymentCheque {
			if err := s.repo.AppendChequeDue(ctx, customer.ID, domain.ChequeDueAnnotation{Date: created.ChequeDate, SaleID: created.ID}); err != nil {
				log.Printf("[service] WARN: failed to record cheque due customer=%s sale=%s: %v", customer.ID, created.ID, err)
			}
		}
		if err := s.searchCache.Delete(ctx, outstandingReportCacheKey); err != nil {
			log.Printf("[service] WARN: failed to invalidate outstanding report cache: %v", err)
		}
	}

	s.logAudit(ctx, "sale_finalize", "sale", created.ID,
		fmt.Sprintf("total=%.2f,payment=%s,outstanding=%.2f,customer=%s", created.GrandTotal, created.PaymentMethod, created.SaleOutstanding, created.CustomerID))

	return *created, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	sale, err := s.repo.GetSaleByID(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, limit)
}

// BuildReceipt renders the printable receipt from the sale's own catalog
// snapshots, so later price changes never rewrite history.
func (s *Service) BuildReceipt(ctx context.Context, saleID string) (domain.Receipt, error) {
	sale, err := s.repo.GetSaleByID(ctx, saleID)
	if err != nil {
		return domain.Receipt{}, err
	}

	receipt := domain.Receipt{
		SaleID:                 sale.ID,
		BusinessName:           s.businessName,
		FreeItems:              sale.FreeItems,
		Subtotal:               sale.Subtotal,
		CartDiscount:           sale.CartDiscount,
		GrandTotal:             sale.GrandTotal,
		PaymentMethod:          sale.PaymentMethod,
		CashReceived:           sale.CashReceived,
		Balance:                sale.Balance,
		SaleOutstanding:        sale.SaleOutstanding,
		CustomerName:           sale.CustomerName,
		CustomerOutstandingNow: sale.CustomerOutstandingNow,
		CreatedAt:              sale.CreatedAt.Format(time.RFC3339),
	}

	for _, line := range sale.Lines {
		lineTotals := billing.ComputeLine(billing.CartLine{
			Barcode:           line.Barcode,
			UnitPrice:         line.UnitPrice,
			Qty:               line.Qty,
			FreeQty:           line.FreeQty,
			ItemDiscountType:  line.ItemDiscountType,
			ItemDiscountValue: line.ItemDiscountValue,
		})
		receipt.Lines = append(receipt.Lines, domain.ReceiptLine{
			Barcode:      line.Barcode,
			Name:         line.Name,
			UnitPrice:    line.UnitPrice,
			Qty:          line.Qty,
			ItemDiscount: lineTotals.ItemDiscount,
			NetTotal:     lineTotals.NetTotal,
		})
	}

	receipt.Text = renderReceiptText(receipt)
	return receipt, nil
}

func (s *Service) CreatePendingSale(ctx context.Context, req domain.PendingSaleCreateRequest) (domain.PendingSale, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.PendingSale{}, ErrAdminRequired
	}
	if len(req.Payload.Lines) == 0 {
		return domain.PendingSale{}, store.ErrInvalidSale
	}

	pending := domain.PendingSale{
		ID:          xid.New("pend"),
		Name:        trimmedNamePtr(req.Name),
		Payload:     req.Payload,
		RequestedBy: actor.Username,
		CreatedAt:   time.Now().UTC(),
	}
	created, err := s.repo.CreatePendingSale(ctx, pending)
	if err != nil {
		return domain.PendingSale{}, err
	}
	s.logAudit(ctx, "pending_create", "pending_sale", created.ID, fmt.Sprintf("lines=%d", len(created.Payload.Lines)))
	return *created, nil
}

// SaveDraft auto-saves an abandoned cart as an unnamed pending record.
// Single-line carts are not worth keeping and nil is returned for them.
func (s *Service) SaveDraft(ctx context.Context, req domain.SaleRequest) (*domain.PendingSale, error) {
	if len(req.Lines) <= 1 {
		return nil, nil
	}
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, ErrAdminRequired
	}

	pending := domain.PendingSale{
		ID:          xid.New("pend"),
		Name:        nil,
		Payload:     req,
		RequestedBy: actor.Username,
		CreatedAt:   time.Now().UTC(),
	}
	created, err := s.repo.CreatePendingSale(ctx, pending)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "pending_draft", "pending_sale", created.ID, fmt.Sprintf("lines=%d", len(created.Payload.Lines)))
	return created, nil
}

func (s *Service) ListPendingSales(ctx context.Context, status string, limit int) ([]domain.PendingSale, error) {
	return s.repo.ListPendingSales(ctx, strings.TrimSpace(status), limit)
}

func (s *Service) GetPendingSale(ctx context.Context, id string) (domain.PendingSale, error) {
	pending, err := s.repo.GetPendingSaleByID(ctx, id)
	if err != nil {
		return domain.PendingSale{}, err
	}
	return *pending, nil
}

func (s *Service) UpdatePendingSale(ctx context.Context, id string, req domain.PendingSaleCreateRequest) (domain.PendingSale, error) {
	if len(req.Payload.Lines) == 0 {
		return domain.PendingSale{}, store.ErrInvalidSale
	}
	updated, err := s.repo.UpdatePendingSale(ctx, id, trimmedNamePtr(req.Name), req.Payload, time.Now().UTC())
	if err != nil {
		return domain.PendingSale{}, err
	}
	s.logAudit(ctx, "pending_update", "pending_sale", updated.ID, fmt.Sprintf("lines=%d", len(updated.Payload.Lines)))
	return *updated, nil
}

// ApprovePendingSale moves a pending record to approved. With an empty
// saleID the stored payload is finalized here and the new sale linked; with
// a saleID the link is taken on trust (the caller already completed the sale)
// and a missing sale only logs a warning.
func (s *Service) ApprovePendingSale(ctx context.Context, id string, saleID string) (domain.PendingSale, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.PendingSale{}, ErrAdminRequired
	}

	saleID = strings.TrimSpace(saleID)
	if saleID == "" {
		// Claim the record before finalizing: the pending->approved
		// transition is atomic in the store, so a concurrent approval loses
		// here with ErrNotPending instead of finalizing the cart twice.
		claimed, err := s.repo.ApprovePendingSale(ctx, id, "", time.Now().UTC())
		if err != nil {
			return domain.PendingSale{}, err
		}
		sale, err := s.FinalizeSale(ctx, claimed.Payload)
		if err != nil {
			if _, reopenErr := s.repo.ReopenPendingSale(ctx, id, time.Now().UTC()); reopenErr != nil {
				log.Printf("[service] WARN: reopening pending=%s after failed finalize: %v", id, reopenErr)
			}
			return domain.PendingSale{}, err
		}
		linked, err := s.repo.LinkPendingSale(ctx, id, sale.ID, time.Now().UTC())
		if err != nil {
			return domain.PendingSale{}, err
		}
		s.logAudit(ctx, "pending_approve", "pending_sale", linked.ID, fmt.Sprintf("sale=%s", sale.ID))
		return *linked, nil
	}

	if _, err := s.repo.GetSaleByID(ctx, saleID); err != nil {
		log.Printf("[service] WARN: approving pending=%s with unresolvable sale=%s: %v", id, saleID, err)
	}
	approved, err := s.repo.ApprovePendingSale(ctx, id, saleID, time.Now().UTC())
	if err != nil {
		return domain.PendingSale{}, err
	}
	s.logAudit(ctx, "pending_approve", "pending_sale", approved.ID, fmt.Sprintf("sale=%s", saleID))
	return *approved, nil
}

func (s *Service) DeletePendingSale(ctx context.Context, id string) (domain.PendingSale, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.PendingSale{}, ErrAdminRequired
	}
	deleted, err := s.repo.DeletePendingSale(ctx, id, time.Now().UTC())
	if err != nil {
		return domain.PendingSale{}, err
	}
	s.logAudit(ctx, "pending_delete", "pending_sale", deleted.ID, "")
	return *deleted, nil
}

// RehydratePendingCart re-joins a stored cart against the current catalog:
// fresh price and stock, the cashier's knobs preserved, unknown barcodes
// dropped.
func (s *Service) RehydratePendingCart(ctx context.Context, id string) ([]domain.RehydratedLine, error) {
	pending, err := s.repo.GetPendingSaleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.joinLines(ctx, pending.Payload.Lines, true)
}

func (s *Service) CustomerOutstandingReport(ctx context.Context) ([]domain.OutstandingRow, error) {
	if payload, hit, err := s.searchCache.Get(ctx, outstandingReportCacheKey); err == nil && hit {
		var cached []domain.OutstandingRow
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	} else if err != nil {
		log.Printf("[service] WARN: outstanding report cache read failed: %v", err)
	}

	rows, err := s.repo.CustomerOutstandingRows(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(rows); err == nil {
		if err := s.searchCache.Set(ctx, outstandingReportCacheKey, payload, s.searchTTL); err != nil {
			log.Printf("[service] WARN: outstanding report cache write failed: %v", err)
		}
	}
	return rows, nil
}

func (s *Service) DailySummary(ctx context.Context, day time.Time) (domain.DailySummary, error) {
	if day.IsZero() {
		day = time.Now().UTC()
	}
	return s.repo.GetDailySummary(ctx, day)
}

// ChequeDueAlerts lists every recorded cheque date that is exactly two days
// out from now.
func (s *Service) ChequeDueAlerts(ctx context.Context, now time.Time) ([]domain.ChequeDueAlert, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.ChequeDueAlert, 0, 8)
	for _, customer := range customers {
		for _, due := range customer.ChequeDues {
			days, ok := billing.DaysUntil(due.Date, now)
			if !ok || days != 2 {
				continue
			}
			alerts = append(alerts, domain.ChequeDueAlert{
				CustomerID:   customer.ID,
				CustomerName: customer.Name,
				Date:         due.Date,
				SaleID:       due.SaleID,
				DaysLeft:     days,
			})
		}
	}
	return alerts, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return nil, ErrAdminRequired
	}
	if to.IsZero() {
		to = time.Now().UTC().Add(time.Minute)
	}
	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

// joinLines resolves catalog rows for stored cart lines. With dropUnknown
// the join silently skips barcodes no longer in the catalog; without it the
// first unknown barcode fails the whole join.
func (s *Service) joinLines(ctx context.Context, lines []domain.SaleLine, dropUnknown bool) ([]domain.RehydratedLine, error) {
	if len(lines) == 0 {
		return []domain.RehydratedLine{}, nil
	}

	barcodes := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		barcode := strings.TrimSpace(line.Barcode)
		if barcode == "" {
			continue
		}
		if _, dup := seen[barcode]; dup {
			continue
		}
		seen[barcode] = struct{}{}
		barcodes = append(barcodes, barcode)
	}

	products, err := s.repo.GetProductsByBarcodes(ctx, barcodes)
	if err != nil {
		return nil, err
	}

	joined := make([]domain.RehydratedLine, 0, len(lines))
	for _, line := range lines {
		product, exists := products[strings.TrimSpace(line.Barcode)]
		if !exists {
			if dropUnknown {
				continue
			}
			return nil, store.ErrNotFound
		}

		qty := line.Qty
		if qty < 1 {
			qty = 1
		}
		freeQty := line.FreeQty
		if freeQty < 0 {
			freeQty = 0
		}

		joined = append(joined, domain.RehydratedLine{
			CartLine: billing.CartLine{
				Barcode:           product.Barcode,
				Name:              product.Name,
				UnitPrice:         product.Price,
				Qty:               qty,
				FreeQty:           freeQty,
				ItemDiscountType:  billing.NormalizeDiscountType(line.ItemDiscountType),
				ItemDiscountValue: line.ItemDiscountValue,
				StockAtAdd:        product.Stock,
			},
			Stock: product.Stock,
		})
	}
	return joined, nil
}

// resolveCustomer finds or creates the buyer for a sale. A nil request means
// a walk-in sale with no customer record.
func (s *Service) resolveCustomer(ctx context.Context, ref *domain.SaleCustomer) (*domain.Customer, error) {
	if ref == nil {
		return nil, nil
	}

	if id := strings.TrimSpace(ref.ID); id != "" {
		return s.repo.GetCustomerByID(ctx, id)
	}

	phone := strings.TrimSpace(ref.Phone)
	if phone == "" {
		return nil, ErrCustomerRequired
	}
	existing, err := s.repo.FindCustomerByPhone(ctx, phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return nil, ErrCustomerRequired
	}
	return s.repo.CreateCustomer(ctx, domain.Customer{
		Name:      name,
		Phone:     phone,
		Address:   strings.TrimSpace(ref.Address),
		CreatedAt: time.Now().UTC(),
	})
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

func trimmedNamePtr(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func renderReceiptText(receipt domain.Receipt) string {
	var b strings.Builder
	line := strings.Repeat("-", 32)

	fmt.Fprintf(&b, "%s\n", receipt.BusinessName)
	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, "Sale: %s\n", receipt.SaleID)
	fmt.Fprintf(&b, "Date: %s\n", receipt.CreatedAt)
	if receipt.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", receipt.CustomerName)
	}
	fmt.Fprintf(&b, "%s\n", line)

	for _, item := range receipt.Lines {
		fmt.Fprintf(&b, "%s\n", item.Name)
		fmt.Fprintf(&b, "  %d x %.2f", item.Qty, item.UnitPrice)
		if item.ItemDiscount > 0 {
			fmt.Fprintf(&b, "  -%.2f", item.ItemDiscount)
		}
		fmt.Fprintf(&b, "  = %.2f\n", item.NetTotal)
	}

	if len(receipt.FreeItems) > 0 {
		fmt.Fprintf(&b, "%s\nFREE ITEMS\n", line)
		for _, free := range receipt.FreeItems {
			fmt.Fprintf(&b, "%s x %d\n", free.Name, free.Qty)
		}
	}

	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, "SUBTOTAL: %.2f\n", receipt.Subtotal)
	if receipt.CartDiscount > 0 {
		fmt.Fprintf(&b, "Discount: -%.2f\n", receipt.CartDiscount)
	}
	fmt.Fprintf(&b, "Bill Total: %.2f\n", receipt.GrandTotal)
	fmt.Fprintf(&b, "Payment: %s\n", receipt.PaymentMethod)
	if receipt.PaymentMethod == billing.PaymentCash {
		fmt.Fprintf(&b, "Cash Received: %.2f\n", receipt.CashReceived)
		fmt.Fprintf(&b, "Balance: %.2f\n", receipt.Balance)
	}
	if receipt.SaleOutstanding > 0 {
		fmt.Fprintf(&b, "Outstanding: %.2f\n", receipt.SaleOutstanding)
	}
	if receipt.CustomerName != "" {
		fmt.Fprintf(&b, "Customer Outstanding Now: %.2f\n", receipt.CustomerOutstandingNow)
	}
	fmt.Fprintf(&b, "%s\nTHANK YOU!\n", line)

	return b.String()
}
