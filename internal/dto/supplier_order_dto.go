package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SupplierOrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

// CreateSupplierOrderRequest is a manually placed purchase order.
type CreateSupplierOrderRequest struct {
	SupplierID string                     `json:"supplier_id" validate:"required,uuid"`
	Note       string                     `json:"note"`
	Items      []SupplierOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateSupplierOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved shipped delivered completed cancelled"`
}

// ItemOverride adjusts the received quantity of one order item at completion.
// Zero is allowed (line not received); negative quantities are rejected.
type ItemOverride struct {
	ItemID   string `json:"item_id"  validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

type CompleteSupplierOrderRequest struct {
	Overrides []ItemOverride `json:"overrides" validate:"omitempty,dive"`
}

type SupplierOrderFilter struct {
	Status     string `form:"status"`
	SupplierID string `form:"supplier_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SupplierOrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type SupplierOrderResponse struct {
	ID            string                      `json:"id"`
	SupplierID    string                      `json:"supplier_id"`
	Supplier      string                      `json:"supplier"`
	Status        string                      `json:"status"`
	TotalAmount   decimal.Decimal             `json:"total_amount"`
	AutoGenerated bool                        `json:"auto_generated"`
	Note          string                      `json:"note,omitempty"`
	Items         []SupplierOrderItemResponse `json:"items"`
	CreatedAt     string                      `json:"created_at"`
}

type SupplierOrderListResponse struct {
	Data  []SupplierOrderResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
