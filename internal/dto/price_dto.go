package dto

import "github.com/shopspring/decimal"

// PriceResponse is the Redis-cached price lookup payload.
type PriceResponse struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}
