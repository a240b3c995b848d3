package domain

import (
	"time"

	"apexpos/backend/internal/billing"
)

type Product struct {
	Barcode   string    `json:"barcode"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProductCreateRequest struct {
	Barcode string  `json:"barcode" validate:"required,max=64"`
	Name    string  `json:"name" validate:"required,max=200"`
	Price   float64 `json:"price" validate:"gte=0"`
	Stock   int     `json:"stock" validate:"gte=0"`
}

type ProductUpdateRequest struct {
	Name  *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Price *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
}

// ChequeDueAnnotation records one cheque collection date attached to a
// customer, linked back to the sale it settles.
type ChequeDueAnnotation struct {
	Date   string `json:"date"`
	SaleID string `json:"saleId,omitempty"`
}

type Customer struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Phone       string                `json:"phone"`
	Address     string                `json:"address,omitempty"`
	// Notes is freeform text; machine-read state lives in Outstanding and
	// ChequeDues, never in markers embedded here.
	Notes       string                `json:"notes,omitempty"`
	Outstanding float64               `json:"outstanding"`
	ChequeDues  []ChequeDueAnnotation `json:"chequeDues,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

type CustomerCreateRequest struct {
	Name    string `json:"name" validate:"required,max=120,alphaspace"`
	Phone   string `json:"phone" validate:"required,len=10,numeric"`
	Address string `json:"address" validate:"max=300"`
	Notes   string `json:"notes" validate:"max=500"`
}

type CustomerUpdateRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=120,alphaspace"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,len=10,numeric"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// SaleLine is the persisted shape of one cart row: a reference to the
// catalog plus the knobs the cashier set. Prices are re-joined against the
// current catalog when a pending cart is reopened.
type SaleLine struct {
	Barcode           string  `json:"barcode" validate:"required"`
	Qty               int     `json:"qty" validate:"gte=1"`
	FreeQty           int     `json:"freeQty" validate:"gte=0"`
	ItemDiscountType  string  `json:"itemDiscountType,omitempty"`
	ItemDiscountValue float64 `json:"itemDiscountValue,omitempty"`

	// Name and UnitPrice are catalog snapshots filled when a sale is
	// finalized. They are ignored on input.
	Name      string  `json:"name,omitempty"`
	UnitPrice float64 `json:"unitPrice,omitempty"`
}

// SaleCustomer identifies the buyer on a sale request. Either an existing
// customer ID or enough detail to create one on the fly.
type SaleCustomer struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type SaleRequest struct {
	Lines             []SaleLine    `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod     string        `json:"paymentMethod" validate:"required"`
	CartDiscountType  string        `json:"cartDiscountType,omitempty"`
	CartDiscountValue float64       `json:"cartDiscountValue,omitempty"`
	CashReceived      string        `json:"cashReceived,omitempty"`
	ChequeDate        string        `json:"chequeDate,omitempty"`
	Customer          *SaleCustomer `json:"customer,omitempty"`
}

type Sale struct {
	ID                     string             `json:"id"`
	Lines                  []SaleLine         `json:"lines"`
	FreeItems              []billing.FreeItem `json:"freeItems,omitempty"`
	PaymentMethod          string             `json:"paymentMethod"`
	CartDiscountType       string             `json:"cartDiscountType"`
	CartDiscountValue      float64            `json:"cartDiscountValue"`
	Subtotal               float64            `json:"subtotal"`
	TotalItemDiscount      float64            `json:"totalItemDiscount"`
	CartDiscount           float64            `json:"cartDiscount"`
	GrandTotal             float64            `json:"grandTotal"`
	CashReceived           float64            `json:"cashReceived"`
	Balance                float64            `json:"balance"`
	SaleOutstanding        float64            `json:"saleOutstanding"`
	ChequeDate             string             `json:"chequeDate,omitempty"`
	CustomerID             string             `json:"customerId,omitempty"`
	CustomerName           string             `json:"customerName,omitempty"`
	CustomerOutstandingNow float64            `json:"customerOutstandingNow"`
	CreatedBy              string             `json:"createdBy"`
	CreatedAt              time.Time          `json:"createdAt"`
}

// ReceiptLine is a fully-priced row for a printed receipt.
type ReceiptLine struct {
	Barcode      string  `json:"barcode"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	Qty          int     `json:"qty"`
	ItemDiscount float64 `json:"itemDiscount"`
	NetTotal     float64 `json:"netTotal"`
}

type Receipt struct {
	SaleID                 string             `json:"saleId"`
	BusinessName           string             `json:"businessName"`
	Lines                  []ReceiptLine      `json:"lines"`
	FreeItems              []billing.FreeItem `json:"freeItems,omitempty"`
	Subtotal               float64            `json:"subtotal"`
	CartDiscount           float64            `json:"cartDiscount"`
	GrandTotal             float64            `json:"grandTotal"`
	PaymentMethod          string             `json:"paymentMethod"`
	CashReceived           float64            `json:"cashReceived"`
	Balance                float64            `json:"balance"`
	SaleOutstanding        float64            `json:"saleOutstanding"`
	CustomerName           string             `json:"customerName,omitempty"`
	CustomerOutstandingNow float64            `json:"customerOutstandingNow"`
	Text                   string             `json:"text"`
	CreatedAt              string             `json:"createdAt"`
}

const (
	PendingStatusPending  = "pending"
	PendingStatusApproved = "approved"
	PendingStatusDeleted  = "deleted"
)

// PendingSale is a cashier-submitted sale awaiting an admin decision. Drafts
// are the same record with a nil Name.
type PendingSale struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	Name        *string     `json:"name"`
	Payload     SaleRequest `json:"payload"`
	RequestedBy string      `json:"requestedBy"`
	SaleID      string      `json:"saleId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type PendingSaleCreateRequest struct {
	Name    *string     `json:"name"`
	Payload SaleRequest `json:"payload" validate:"required"`
}

type PendingSaleApproveRequest struct {
	SaleID string `json:"saleId,omitempty"`
}

// RehydratedLine is a stored cart row joined back against the current
// catalog: fresh price and stock, with the cashier's knobs preserved.
type RehydratedLine struct {
	billing.CartLine
	Stock int `json:"stock"`
}

// CartQuote prices a cart without selling anything: joined lines with fresh
// stock plus the cart totals.
type CartQuote struct {
	Lines  []RehydratedLine   `json:"lines"`
	Totals billing.CartTotals `json:"totals"`
}

// Availability is the advisory stock answer for one product against the
// current cart. The store remains authoritative at sale time.
type Availability struct {
	Barcode             string `json:"barcode"`
	Stock               int    `json:"stock"`
	RemainingForDisplay int    `json:"remainingForDisplay"`
	AvailableForEdit    int    `json:"availableForEdit"`
}

type SubmitSaleResponse struct {
	// Exactly one of Sale or Pending is set, depending on who submitted.
	Sale    *Sale        `json:"sale,omitempty"`
	Pending *PendingSale `json:"pending,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type OutstandingRow struct {
	CustomerID   string  `json:"customerId"`
	CustomerName string  `json:"customerName"`
	Phone        string  `json:"phone"`
	Outstanding  float64 `json:"outstanding"`
}

type ChequeDueAlert struct {
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
	Date         string `json:"date"`
	SaleID       string `json:"saleId,omitempty"`
	DaysLeft     int    `json:"daysLeft"`
}

type DailySummaryPayment struct {
	PaymentMethod string  `json:"paymentMethod"`
	Sales         int64   `json:"sales"`
	Total         float64 `json:"total"`
}

type DailySummary struct {
	Date          string  `json:"date"`
	Sales         int64   `json:"sales"`
	GrossSales    float64 `json:"grossSales"`
	TotalDiscount float64 `json:"totalDiscount"`
	NetSales      float64 `json:"netSales"`
	// OutstandingAdded is the credit extended by the day's sales;
	// OutstandingBook is the whole customer book at report time.
	OutstandingAdded float64               `json:"outstandingAdded"`
	OutstandingBook  float64               `json:"outstandingBook"`
	ByPayment        []DailySummaryPayment `json:"byPayment"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actorUsername"`
	ActorRole     string    `json:"actorRole"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entityType"`
	EntityID      string    `json:"entityId"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"createdAt"`
}
