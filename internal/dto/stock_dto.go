package dto

// ─── Stock movement (manual ledger entry) ────────────────────────────────────

type StockMovementRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Kind      string `json:"kind"       validate:"required,oneof=receipt supplier_return waste adjustment"`
	// Quantity is a magnitude for directional kinds and a signed delta for
	// kind=adjustment.
	Quantity int    `json:"quantity" validate:"required"`
	Note     string `json:"note"`
}

type StockMovementResponse struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	Product       string `json:"product,omitempty"`
	Kind          string `json:"kind"`
	Quantity      int    `json:"quantity"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
	Note          string `json:"note,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

// ─── Barcode scan ────────────────────────────────────────────────────────────

type BarcodeScanRequest struct {
	Code string `json:"code" validate:"required"`
}

type BarcodeScanResponse struct {
	ProductID       string   `json:"product_id"`
	Product         string   `json:"product"`
	SKU             string   `json:"sku"`
	Stock           int      `json:"stock"`
	ConfirmedOrders []string `json:"confirmed_orders"`
}
