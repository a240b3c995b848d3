package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

type Store struct {
	mu                sync.RWMutex
	products          map[string]domain.Product
	customersByID     map[string]domain.Customer
	customerIDByPhone map[string]string
	salesByID         map[string]*domain.Sale
	pendingByID       map[string]domain.PendingSale
	auditLogs         []domain.AuditLog
	usersByUsername   map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	products := []domain.Product{
		{Barcode: "8901001", Name: "Basmati Rice 5kg", Price: 1250, Stock: 60, CreatedAt: now},
		{Barcode: "8901002", Name: "Wheat Flour 1kg", Price: 180, Stock: 140, CreatedAt: now},
		{Barcode: "8901003", Name: "White Sugar 1kg", Price: 210, Stock: 110, CreatedAt: now},
		{Barcode: "8901004", Name: "Sunflower Oil 1L", Price: 640, Stock: 75, CreatedAt: now},
		{Barcode: "8901005", Name: "Black Tea 400g", Price: 520, Stock: 90, CreatedAt: now},
		{Barcode: "8901006", Name: "Red Lentils 1kg", Price: 330, Stock: 85, CreatedAt: now},
		{Barcode: "8901007", Name: "Full Cream Milk Powder 400g", Price: 980, Stock: 50, CreatedAt: now},
		{Barcode: "8901008", Name: "Laundry Soap Bar", Price: 95, Stock: 200, CreatedAt: now},
		{Barcode: "8901009", Name: "Canned Fish 425g", Price: 560, Stock: 64, CreatedAt: now},
		{Barcode: "8901010", Name: "Salt 1kg", Price: 80, Stock: 180, CreatedAt: now},
	}

	customers := []domain.Customer{
		{ID: xid.New("cust"), Name: "Nimal Perera", Phone: "0712345678", Address: "12 Harbor Road", Outstanding: 0, CreatedAt: now},
		{ID: xid.New("cust"), Name: "Sunil Fernando", Phone: "0770001111", Address: "4 Market Lane", Outstanding: 1500, CreatedAt: now},
	}

	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productMap[p.Barcode] = p
	}
	customerMap := make(map[string]domain.Customer, len(customers))
	phoneIndex := make(map[string]string, len(customers))
	for _, c := range customers {
		customerMap[c.ID] = c
		phoneIndex[c.Phone] = c.ID
	}

	return &Store{
		products:          productMap,
		customersByID:     customerMap,
		customerIDByPhone: phoneIndex,
		salesByID:         make(map[string]*domain.Sale),
		pendingByID:       make(map[string]domain.PendingSale),
		auditLogs:         make([]domain.AuditLog, 0, 128),
		usersByUsername:   seedUsers(),
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	return products, nil
}

// SearchProducts returns an exact barcode hit first, followed by barcode
// prefix and case-insensitive name matches.
func (s *Store) SearchProducts(_ context.Context, query string, limit int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Product{}, nil
	}
	if limit < 1 {
		limit = 20
	}

	result := make([]domain.Product, 0, limit)
	if exact, ok := s.products[query]; ok {
		result = append(result, exact)
	}

	lowered := strings.ToLower(query)
	rest := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Barcode == query {
			continue
		}
		if strings.HasPrefix(p.Barcode, query) || strings.Contains(strings.ToLower(p.Name), lowered) {
			rest = append(rest, p)
		}
	}
	slices.SortFunc(rest, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	result = append(result, rest...)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) GetProductByBarcode(_ context.Context, barcode string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[barcode]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) GetProductsByBarcodes(_ context.Context, barcodes []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(barcodes))
	for _, barcode := range barcodes {
		if p, ok := s.products[barcode]; ok {
			result[barcode] = p
		}
	}
	return result, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.Barcode = strings.TrimSpace(product.Barcode)
	product.Name = strings.TrimSpace(product.Name)
	if product.Barcode == "" || product.Name == "" || product.Price < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidSale
	}
	if _, exists := s.products[product.Barcode]; exists {
		return nil, store.ErrInvalidSale
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	s.products[product.Barcode] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Barcode == "" || product.Name == "" || product.Price < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidSale
	}
	existing, exists := s.products[product.Barcode]
	if !exists {
		return nil, store.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt

	s.products[product.Barcode] = product
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, barcode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[barcode]; !exists {
		return store.ErrNotFound
	}
	delete(s.products, barcode)
	return nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customersByID))
	for _, c := range s.customersByID {
		customers = append(customers, cloneCustomer(c))
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		return cmpString(a.Name, b.Name)
	})
	return customers, nil
}

func (s *Store) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customersByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCustomer := cloneCustomer(customer)
	return &copyCustomer, nil
}

func (s *Store) FindCustomerByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.customerIDByPhone[phone]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCustomer := cloneCustomer(s.customersByID[id])
	return &copyCustomer, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrInvalidSale
	}
	if _, exists := s.customerIDByPhone[customer.Phone]; exists {
		return nil, store.ErrInvalidSale
	}
	if customer.ID == "" {
		customer.ID = xid.New("cust")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	if customer.Outstanding < 0 {
		customer.Outstanding = 0
	}

	s.customersByID[customer.ID] = cloneCustomer(customer)
	s.customerIDByPhone[customer.Phone] = customer.ID
	created := cloneCustomer(customer)
	return &created, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.customersByID[customer.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrInvalidSale
	}
	if other, taken := s.customerIDByPhone[customer.Phone]; taken && other != customer.ID {
		return nil, store.ErrInvalidSale
	}

	delete(s.customerIDByPhone, existing.Phone)
	customer.CreatedAt = existing.CreatedAt
	s.customersByID[customer.ID] = cloneCustomer(customer)
	s.customerIDByPhone[customer.Phone] = customer.ID
	updated := cloneCustomer(customer)
	return &updated, nil
}

func (s *Store) SetCustomerOutstanding(_ context.Context, id string, outstanding float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, exists := s.customersByID[id]
	if !exists {
		return store.ErrNotFound
	}
	if outstanding < 0 {
		outstanding = 0
	}
	customer.Outstanding = outstanding
	s.customersByID[id] = customer
	return nil
}

func (s *Store) AppendChequeDue(_ context.Context, id string, due domain.ChequeDueAnnotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, exists := s.customersByID[id]
	if !exists {
		return store.ErrNotFound
	}
	for _, existing := range customer.ChequeDues {
		if existing.Date == due.Date && existing.SaleID == due.SaleID {
			return nil
		}
	}
	customer.ChequeDues = append(slices.Clone(customer.ChequeDues), due)
	s.customersByID[id] = customer
	return nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sale.Lines) == 0 {
		return nil, store.ErrInvalidSale
	}

	// Aggregate paid+free per barcode first so split lines of the same
	// product cannot slip past the stock check.
	needed := map[string]int{}
	for _, line := range sale.Lines {
		if line.Qty < 1 || line.FreeQty < 0 {
			return nil, store.ErrInvalidSale
		}
		if _, exists := s.products[line.Barcode]; !exists {
			return nil, store.ErrNotFound
		}
		needed[line.Barcode] += line.Qty + line.FreeQty
	}
	for barcode, qty := range needed {
		if stock := s.products[barcode].Stock; stock < qty {
			return nil, fmt.Errorf("only %d available for %s: %w", stock, barcode, store.ErrInsufficientStock)
		}
	}
	for barcode, qty := range needed {
		product := s.products[barcode]
		product.Stock -= qty
		s.products[barcode] = product
	}

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	saved := cloneSale(&sale)
	s.salesByID[sale.ID] = saved
	return cloneSale(saved), nil
}

func (s *Store) GetSaleByID(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.salesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) ListSales(_ context.Context, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Sale, 0, len(s.salesByID))
	for _, sale := range s.salesByID {
		result = append(result, *cloneSale(sale))
	}
	slices.SortFunc(result, func(a, b domain.Sale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreatePendingSale(_ context.Context, pending domain.PendingSale) (*domain.PendingSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(pending.Payload.Lines) == 0 {
		return nil, store.ErrInvalidSale
	}
	if pending.ID == "" {
		pending.ID = xid.New("pend")
	}
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = time.Now().UTC()
	}
	pending.UpdatedAt = pending.CreatedAt
	pending.Status = domain.PendingStatusPending
	pending.SaleID = ""

	s.pendingByID[pending.ID] = clonePendingSale(pending)
	created := clonePendingSale(pending)
	return &created, nil
}

func (s *Store) GetPendingSaleByID(_ context.Context, id string) (*domain.PendingSale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending, exists := s.pendingByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyPending := clonePendingSale(pending)
	return &copyPending, nil
}

func (s *Store) ListPendingSales(_ context.Context, status string, limit int) ([]domain.PendingSale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.PendingSale, 0, len(s.pendingByID))
	for _, pending := range s.pendingByID {
		if status != "" && pending.Status != status {
			continue
		}
		result = append(result, clonePendingSale(pending))
	}
	slices.SortFunc(result, func(a, b domain.PendingSale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) UpdatePendingSale(_ context.Context, id string, name *string, payload domain.SaleRequest, at time.Time) (*domain.PendingSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, exists := s.pendingByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	if pending.Status != domain.PendingStatusPending {
		return nil, store.ErrNotPending
	}
	if len(payload.Lines) == 0 {
		return nil, store.ErrInvalidSale
	}

	pending.Name = name
	pending.Payload = payload
	pending.UpdatedAt = at
	s.pendingByID[id] = clonePendingSale(pending)
	updated := clonePendingSale(pending)
	return &updated, nil
}

func (s *Store) ApprovePendingSale(_ context.Context, id string, saleID string, at time.Time) (*domain.PendingSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, exists := s.pendingByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	if pending.Status != domain.PendingStatusPending {
		return nil, store.ErrNotPending
	}

	pending.Status = domain.PendingStatusApproved
	pending.SaleID = saleID
	pending.UpdatedAt = at
	s.pendingByID[id] = clonePendingSale(pending)
	approved := clonePendingSale(pending)
	return &approved, nil
}

func (s *Store) LinkPendingSale(_ context.Context, id string, saleID string, at time.Time) (*domain.PendingSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, exists := s.pendingByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	if pending.Status != domain.PendingStatusApproved || pending.SaleID != "" {
		return nil, store.ErrNotPending
	}

	pending.SaleID = saleID
	pending.UpdatedAt = at
	s.pendingByID[id] = clonePendingSale(pending)
	linked := clonePendingSale(pending)
	return &linked, nil
}

func (s *Store) ReopenPendingSale(_ context.Context, id string, at time.Time) (*domain.PendingSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, exists := s.pendingByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	if pending.Status != domain.PendingStatusApproved || pending.SaleID != "" {
		return nil, store.ErrNotPending
	}

	pending.Status = domain.PendingStatusPending
	pending.UpdatedAt = at
	s.pendingByID[id] = clonePendingSale(pending)
	reopened := clonePendingSale(pending)
	return &reopened, nil
}

func (s *Store) DeletePendingSale(_ context.Context, id string, at time.Time) (*domain.PendingSale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, exists := s.pendingByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	if pending.Status != domain.PendingStatusPending {
		return nil, store.ErrNotPending
	}

	pending.Status = domain.PendingStatusDeleted
	pending.UpdatedAt = at
	s.pendingByID[id] = clonePendingSale(pending)
	deleted := clonePendingSale(pending)
	return &deleted, nil
}

func (s *Store) CustomerOutstandingRows(_ context.Context) ([]domain.OutstandingRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.OutstandingRow, 0, len(s.customersByID))
	for _, customer := range s.customersByID {
		if customer.Outstanding <= 0 {
			continue
		}
		rows = append(rows, domain.OutstandingRow{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			Phone:        customer.Phone,
			Outstanding:  customer.Outstanding,
		})
	}
	slices.SortFunc(rows, func(a, b domain.OutstandingRow) int {
		if a.Outstanding == b.Outstanding {
			return cmpString(a.CustomerName, b.CustomerName)
		}
		if a.Outstanding > b.Outstanding {
			return -1
		}
		return 1
	})
	return rows, nil
}

func (s *Store) GetDailySummary(_ context.Context, day time.Time) (domain.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	summary := domain.DailySummary{
		Date:      from.Format("2006-01-02"),
		ByPayment: make([]domain.DailySummaryPayment, 0, 4),
	}
	byPayment := map[string]*domain.DailySummaryPayment{}

	for _, sale := range s.salesByID {
		if sale.CreatedAt.Before(from) || !sale.CreatedAt.Before(to) {
			continue
		}
		summary.Sales++
		summary.GrossSales += sale.Subtotal
		summary.TotalDiscount += sale.TotalItemDiscount + sale.CartDiscount
		summary.NetSales += sale.GrandTotal
		summary.OutstandingAdded += sale.SaleOutstanding

		payment := byPayment[sale.PaymentMethod]
		if payment == nil {
			payment = &domain.DailySummaryPayment{PaymentMethod: sale.PaymentMethod}
			byPayment[sale.PaymentMethod] = payment
		}
		payment.Sales++
		payment.Total += sale.GrandTotal
	}

	for _, customer := range s.customersByID {
		summary.OutstandingBook += customer.Outstanding
	}

	for _, entry := range byPayment {
		summary.ByPayment = append(summary.ByPayment, *entry)
	}
	slices.SortFunc(summary.ByPayment, func(a, b domain.DailySummaryPayment) int {
		return cmpString(a.PaymentMethod, b.PaymentMethod)
	})

	return summary, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for _, entry := range s.auditLogs {
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidSale
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidSale
	}
	user.Username = username
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidSale
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneSale(src *domain.Sale) *domain.Sale {
	if src == nil {
		return nil
	}
	dup := *src
	dup.Lines = slices.Clone(src.Lines)
	dup.FreeItems = slices.Clone(src.FreeItems)
	return &dup
}

func cloneCustomer(src domain.Customer) domain.Customer {
	dup := src
	dup.ChequeDues = slices.Clone(src.ChequeDues)
	return dup
}

func clonePendingSale(src domain.PendingSale) domain.PendingSale {
	dup := src
	if src.Name != nil {
		name := *src.Name
		dup.Name = &name
	}
	dup.Payload.Lines = slices.Clone(src.Payload.Lines)
	if src.Payload.Customer != nil {
		customer := *src.Payload.Customer
		dup.Payload.Customer = &customer
	}
	return dup
}
