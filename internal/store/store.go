package store

import (
	"context"
	"errors"
	"time"

	"apexpos/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidSale       = errors.New("invalid sale")
	ErrNotPending        = errors.New("not pending")
)

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	GetProductsByBarcodes(ctx context.Context, barcodes []string) (map[string]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, barcode string) error

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	FindCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	SetCustomerOutstanding(ctx context.Context, id string, outstanding float64) error
	AppendChequeDue(ctx context.Context, id string, due domain.ChequeDueAnnotation) error

	// CreateSale persists the sale and decrements stock (paid plus free
	// units per line) in one atomic step. The store is the authority on
	// availability and returns ErrInsufficientStock when a line cannot be
	// covered.
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	GetSaleByID(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, limit int) ([]domain.Sale, error)

	CreatePendingSale(ctx context.Context, pending domain.PendingSale) (*domain.PendingSale, error)
	GetPendingSaleByID(ctx context.Context, id string) (*domain.PendingSale, error)
	ListPendingSales(ctx context.Context, status string, limit int) ([]domain.PendingSale, error)
	// UpdatePendingSale replaces name and payload; ApprovePendingSale and
	// DeletePendingSale move the record to its terminal status. All three
	// return ErrNotPending unless the record is still pending, which makes
	// ApprovePendingSale with an empty saleID the claim that serializes
	// concurrent approvals.
	UpdatePendingSale(ctx context.Context, id string, name *string, payload domain.SaleRequest, at time.Time) (*domain.PendingSale, error)
	ApprovePendingSale(ctx context.Context, id string, saleID string, at time.Time) (*domain.PendingSale, error)
	DeletePendingSale(ctx context.Context, id string, at time.Time) (*domain.PendingSale, error)
	// LinkPendingSale attaches the finalized sale to a claimed approval;
	// ReopenPendingSale returns an unlinked claim to pending after a failed
	// finalize. Both act only on an approved record with no sale attached.
	LinkPendingSale(ctx context.Context, id string, saleID string, at time.Time) (*domain.PendingSale, error)
	ReopenPendingSale(ctx context.Context, id string, at time.Time) (*domain.PendingSale, error)

	CustomerOutstandingRows(ctx context.Context) ([]domain.OutstandingRow, error)
	GetDailySummary(ctx context.Context, day time.Time) (domain.DailySummary, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
