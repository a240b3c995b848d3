package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"apexpos/backend/internal/billing"
	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/store"
	"apexpos/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT barcode, name, price, stock, created_at
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.Barcode, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Product{}, nil
	}
	if limit < 1 {
		limit = 20
	}

	// Exact barcode hits sort ahead of prefix and name matches.
	rows, err := s.db.QueryContext(ctx, `
		SELECT barcode, name, price, stock, created_at
		FROM products
		WHERE barcode = $1 OR barcode LIKE $1 || '%' OR name ILIKE '%' || $1 || '%'
		ORDER BY (barcode = $1) DESC, name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.Barcode, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	var product domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT barcode, name, price, stock, created_at
		FROM products
		WHERE barcode = $1
	`, barcode).Scan(&product.Barcode, &product.Name, &product.Price, &product.Stock, &product.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	product.CreatedAt = product.CreatedAt.UTC()
	return &product, nil
}

func (s *Store) GetProductsByBarcodes(ctx context.Context, barcodes []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(barcodes))
	if len(barcodes) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT barcode, name, price, stock, created_at
		FROM products
		WHERE barcode = ANY($1)
	`, barcodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.Barcode, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		result[p.Barcode] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Barcode = strings.TrimSpace(product.Barcode)
	product.Name = strings.TrimSpace(product.Name)
	if product.Barcode == "" || product.Name == "" || product.Price < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidSale
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (barcode, name, price, stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, product.Barcode, product.Name, product.Price, product.Stock, product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidSale
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Barcode == "" || product.Name == "" || product.Price < 0 || product.Stock < 0 {
		return nil, store.ErrInvalidSale
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, price = $3, stock = $4, updated_at = now()
		WHERE barcode = $1
	`, product.Barcode, product.Name, product.Price, product.Stock)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, barcode string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE barcode = $1`, barcode)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, address, notes, outstanding, created_at
		FROM customers
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range customers {
		dues, err := s.listChequeDues(ctx, customers[i].ID)
		if err != nil {
			return nil, err
		}
		customers[i].ChequeDues = dues
	}
	return customers, nil
}

func (s *Store) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, address, notes, outstanding, created_at
		FROM customers
		WHERE id = $1
	`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	dues, err := s.listChequeDues(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	customer.ChequeDues = dues
	return &customer, nil
}

func (s *Store) FindCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, address, notes, outstanding, created_at
		FROM customers
		WHERE phone = $1
	`, phone)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	dues, err := s.listChequeDues(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	customer.ChequeDues = dues
	return &customer, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if customer.Name == "" || customer.Phone == "" {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, phone, address, notes, outstanding, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
	`, customer.ID, customer.Name, customer.Phone, nullIfEmpty(customer.Address), nullIfEmpty(customer.Notes), customer.Outstanding, customer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidSale
		}
		return nil, err
	}

	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if customer.ID == "" || customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrInvalidSale
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $2, phone = $3, address = $4, notes = $5, updated_at = now()
		WHERE id = $1
	`, customer.ID, customer.Name, customer.Phone, nullIfEmpty(customer.Address), nullIfEmpty(customer.Notes))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidSale
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetCustomerByID(ctx, customer.ID)
}

func (s *Store) SetCustomerOutstanding(ctx context.Context, id string, outstanding float64) error {
	if outstanding < 0 {
		outstanding = 0
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET outstanding = $2, updated_at = now()
		WHERE id = $1
	`, id, outstanding)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AppendChequeDue(ctx context.Context, id string, due domain.ChequeDueAnnotation) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customer_cheque_dues (customer_id, due_date, sale_id, created_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (customer_id, due_date, sale_id) DO NOTHING
	`, id, due.Date, due.SaleID)
	return err
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if len(sale.Lines) == 0 {
		return nil, store.ErrInvalidSale
	}
	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	// Split lines for the same product count as one stock draw.
	needed := map[string]int{}
	for _, line := range sale.Lines {
		if line.Qty < 1 || line.FreeQty < 0 {
			return nil, store.ErrInvalidSale
		}
		needed[line.Barcode] += line.Qty + line.FreeQty
	}
	barcodes := make([]string, 0, len(needed))
	for barcode := range needed {
		barcodes = append(barcodes, barcode)
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	stockRows, err := pgTx.QueryContext(ctx, `
		SELECT barcode, stock
		FROM products
		WHERE barcode = ANY($1)
		FOR UPDATE
	`, barcodes)
	if err != nil {
		return nil, err
	}
	stockMap := make(map[string]int, len(barcodes))
	for stockRows.Next() {
		var barcode string
		var stock int
		if err := stockRows.Scan(&barcode, &stock); err != nil {
			_ = stockRows.Close()
			return nil, err
		}
		stockMap[barcode] = stock
	}
	if err := stockRows.Err(); err != nil {
		_ = stockRows.Close()
		return nil, err
	}
	_ = stockRows.Close()

	for barcode, qty := range needed {
		stock, exists := stockMap[barcode]
		if !exists {
			return nil, store.ErrNotFound
		}
		if stock < qty {
			return nil, fmt.Errorf("only %d available for %s: %w", stock, barcode, store.ErrInsufficientStock)
		}
	}
	for barcode, qty := range needed {
		_, err = pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = now()
			WHERE barcode = $2
		`, qty, barcode)
		if err != nil {
			return nil, err
		}
	}

	linesJSON, err := json.Marshal(sale.Lines)
	if err != nil {
		return nil, err
	}
	freeItemsJSON, err := json.Marshal(sale.FreeItems)
	if err != nil {
		return nil, err
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO sales (
			id, lines, free_items, payment_method, cart_discount_type, cart_discount_value,
			subtotal, total_item_discount, cart_discount, grand_total,
			cash_received, balance, sale_outstanding, cheque_date,
			customer_id, customer_name, customer_outstanding_now, created_by, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`, sale.ID, linesJSON, freeItemsJSON, sale.PaymentMethod, sale.CartDiscountType, sale.CartDiscountValue,
		sale.Subtotal, sale.TotalItemDiscount, sale.CartDiscount, sale.GrandTotal,
		sale.CashReceived, sale.Balance, sale.SaleOutstanding, nullIfEmpty(sale.ChequeDate),
		nullIfEmpty(sale.CustomerID), nullIfEmpty(sale.CustomerName), sale.CustomerOutstandingNow, sale.CreatedBy, sale.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	created := sale
	return &created, nil
}

func (s *Store) GetSaleByID(ctx context.Context, id string) (*domain.Sale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, lines, free_items, payment_method, cart_discount_type, cart_discount_value,
			subtotal, total_item_discount, cart_discount, grand_total,
			cash_received, balance, sale_outstanding, cheque_date,
			customer_id, customer_name, customer_outstanding_now, created_by, created_at
		FROM sales
		WHERE id = $1
	`, id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (s *Store) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lines, free_items, payment_method, cart_discount_type, cart_discount_value,
			subtotal, total_item_discount, cart_discount, grand_total,
			cash_received, balance, sale_outstanding, cheque_date,
			customer_id, customer_name, customer_outstanding_now, created_by, created_at
		FROM sales
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, limit)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) CreatePendingSale(ctx context.Context, pending domain.PendingSale) (*domain.PendingSale, error) {
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

	payloadJSON, err := json.Marshal(pending.Payload)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pending_sales (id, status, name, payload, requested_by, sale_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NULL,$6,$7)
	`, pending.ID, pending.Status, nullIfNilString(pending.Name), payloadJSON, pending.RequestedBy, pending.CreatedAt, pending.UpdatedAt)
	if err != nil {
		return nil, err
	}

	created := pending
	return &created, nil
}

func (s *Store) GetPendingSaleByID(ctx context.Context, id string) (*domain.PendingSale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, status, name, payload, requested_by, sale_id, created_at, updated_at
		FROM pending_sales
		WHERE id = $1
	`, id)
	pending, err := scanPendingSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return pending, nil
}

func (s *Store) ListPendingSales(ctx context.Context, status string, limit int) ([]domain.PendingSale, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, name, payload, requested_by, sale_id, created_at, updated_at
		FROM pending_sales
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.PendingSale, 0, limit)
	for rows.Next() {
		pending, err := scanPendingSale(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *pending)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) UpdatePendingSale(ctx context.Context, id string, name *string, payload domain.SaleRequest, at time.Time) (*domain.PendingSale, error) {
	if len(payload.Lines) == 0 {
		return nil, store.ErrInvalidSale
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_sales
		SET name = $2, payload = $3, updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`, id, nullIfNilString(name), payloadJSON, at)
	if err != nil {
		return nil, err
	}
	if err := s.requirePendingAffected(ctx, res, id); err != nil {
		return nil, err
	}
	return s.GetPendingSaleByID(ctx, id)
}

func (s *Store) ApprovePendingSale(ctx context.Context, id string, saleID string, at time.Time) (*domain.PendingSale, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_sales
		SET status = 'approved', sale_id = $2, updated_at = $3
		WHERE id = $1 AND status = 'pending'
	`, id, nullIfEmpty(saleID), at)
	if err != nil {
		return nil, err
	}
	if err := s.requirePendingAffected(ctx, res, id); err != nil {
		return nil, err
	}
	return s.GetPendingSaleByID(ctx, id)
}

func (s *Store) LinkPendingSale(ctx context.Context, id string, saleID string, at time.Time) (*domain.PendingSale, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_sales
		SET sale_id = $2, updated_at = $3
		WHERE id = $1 AND status = 'approved' AND sale_id IS NULL
	`, id, nullIfEmpty(saleID), at)
	if err != nil {
		return nil, err
	}
	if err := s.requireClaimAffected(ctx, res, id); err != nil {
		return nil, err
	}
	return s.GetPendingSaleByID(ctx, id)
}

func (s *Store) ReopenPendingSale(ctx context.Context, id string, at time.Time) (*domain.PendingSale, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_sales
		SET status = 'pending', updated_at = $2
		WHERE id = $1 AND status = 'approved' AND sale_id IS NULL
	`, id, at)
	if err != nil {
		return nil, err
	}
	if err := s.requireClaimAffected(ctx, res, id); err != nil {
		return nil, err
	}
	return s.GetPendingSaleByID(ctx, id)
}

func (s *Store) DeletePendingSale(ctx context.Context, id string, at time.Time) (*domain.PendingSale, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_sales
		SET status = 'deleted', updated_at = $2
		WHERE id = $1 AND status = 'pending'
	`, id, at)
	if err != nil {
		return nil, err
	}
	if err := s.requirePendingAffected(ctx, res, id); err != nil {
		return nil, err
	}
	return s.GetPendingSaleByID(ctx, id)
}

// requireClaimAffected guards the link/reopen updates, which only act on an
// approved record with no sale attached yet.
func (s *Store) requireClaimAffected(ctx context.Context, res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM pending_sales WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrNotPending
}

// requirePendingAffected tells a missing record apart from one that already
// reached a terminal status.
func (s *Store) requirePendingAffected(ctx context.Context, res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM pending_sales WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return store.ErrNotPending
}

func (s *Store) CustomerOutstandingRows(ctx context.Context) ([]domain.OutstandingRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, outstanding
		FROM customers
		WHERE outstanding > 0
		ORDER BY outstanding DESC, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.OutstandingRow, 0, 64)
	for rows.Next() {
		var row domain.OutstandingRow
		if err := rows.Scan(&row.CustomerID, &row.CustomerName, &row.Phone, &row.Outstanding); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) GetDailySummary(ctx context.Context, day time.Time) (domain.DailySummary, error) {
	from := nowDateUTC(day)
	to := from.Add(24 * time.Hour)

	summary := domain.DailySummary{
		Date:      from.Format("2006-01-02"),
		ByPayment: make([]domain.DailySummaryPayment, 0, 4),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(subtotal), 0),
			COALESCE(SUM(total_item_discount + cart_discount), 0),
			COALESCE(SUM(grand_total), 0),
			COALESCE(SUM(sale_outstanding), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
	`, from, to).Scan(&summary.Sales, &summary.GrossSales, &summary.TotalDiscount, &summary.NetSales, &summary.OutstandingAdded)
	if err != nil {
		return domain.DailySummary{}, err
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(outstanding), 0) FROM customers
	`).Scan(&summary.OutstandingBook); err != nil {
		return domain.DailySummary{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_method, COUNT(*), COALESCE(SUM(grand_total), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY payment_method
		ORDER BY payment_method
	`, from, to)
	if err != nil {
		return domain.DailySummary{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.DailySummaryPayment
		if err := rows.Scan(&entry.PaymentMethod, &entry.Sales, &entry.Total); err != nil {
			return domain.DailySummary{}, err
		}
		summary.ByPayment = append(summary.ByPayment, entry)
	}
	if err := rows.Err(); err != nil {
		return domain.DailySummary{}, err
	}

	return summary, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidSale
	}
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,true,$4)
	`, username, user.Password, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidSale
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidSale
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) listChequeDues(ctx context.Context, customerID string) ([]domain.ChequeDueAnnotation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT due_date, sale_id
		FROM customer_cheque_dues
		WHERE customer_id = $1
		ORDER BY due_date, sale_id
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dues := make([]domain.ChequeDueAnnotation, 0, 4)
	for rows.Next() {
		var due domain.ChequeDueAnnotation
		var saleID sql.NullString
		if err := rows.Scan(&due.Date, &saleID); err != nil {
			return nil, err
		}
		if saleID.Valid {
			due.SaleID = saleID.String
		}
		dues = append(dues, due)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(dues) == 0 {
		return nil, nil
	}
	return dues, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var customer domain.Customer
	var address, notes sql.NullString
	if err := row.Scan(&customer.ID, &customer.Name, &customer.Phone, &address, &notes, &customer.Outstanding, &customer.CreatedAt); err != nil {
		return domain.Customer{}, err
	}
	if address.Valid {
		customer.Address = address.String
	}
	if notes.Valid {
		customer.Notes = notes.String
	}
	customer.CreatedAt = customer.CreatedAt.UTC()
	return customer, nil
}

func scanSale(row rowScanner) (*domain.Sale, error) {
	var sale domain.Sale
	var linesJSON, freeItemsJSON []byte
	var chequeDate, customerID, customerName sql.NullString
	err := row.Scan(&sale.ID, &linesJSON, &freeItemsJSON, &sale.PaymentMethod, &sale.CartDiscountType, &sale.CartDiscountValue,
		&sale.Subtotal, &sale.TotalItemDiscount, &sale.CartDiscount, &sale.GrandTotal,
		&sale.CashReceived, &sale.Balance, &sale.SaleOutstanding, &chequeDate,
		&customerID, &customerName, &sale.CustomerOutstandingNow, &sale.CreatedBy, &sale.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(linesJSON, &sale.Lines); err != nil {
		return nil, err
	}
	if len(freeItemsJSON) > 0 {
		var freeItems []billing.FreeItem
		if err := json.Unmarshal(freeItemsJSON, &freeItems); err != nil {
			return nil, err
		}
		sale.FreeItems = freeItems
	}
	if chequeDate.Valid {
		sale.ChequeDate = chequeDate.String
	}
	if customerID.Valid {
		sale.CustomerID = customerID.String
	}
	if customerName.Valid {
		sale.CustomerName = customerName.String
	}
	sale.CreatedAt = sale.CreatedAt.UTC()
	return &sale, nil
}

func scanPendingSale(row rowScanner) (*domain.PendingSale, error) {
	var pending domain.PendingSale
	var name, saleID sql.NullString
	var payloadJSON []byte
	err := row.Scan(&pending.ID, &pending.Status, &name, &payloadJSON, &pending.RequestedBy, &saleID, &pending.CreatedAt, &pending.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if name.Valid {
		value := name.String
		pending.Name = &value
	}
	if saleID.Valid {
		pending.SaleID = saleID.String
	}
	if err := json.Unmarshal(payloadJSON, &pending.Payload); err != nil {
		return nil, err
	}
	pending.CreatedAt = pending.CreatedAt.UTC()
	pending.UpdatedAt = pending.UpdatedAt.UTC()
	return &pending, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nowDateUTC(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullIfNilString(val *string) any {
	if val == nil {
		return nil
	}
	return *val
}
