package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id" validate:"required,uuid"`
	Items      []OrderItemRequest `json:"items"       validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved cancelled"`
}

// OrderFilter is bound from the query string of GET /v1/orders.
type OrderFilter struct {
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	CustomerID    string              `json:"customer_id"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	TaxTotal      decimal.Decimal     `json:"tax_total"`
	Total         decimal.Decimal     `json:"total"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     string              `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
