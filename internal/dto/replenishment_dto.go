package dto

import "encoding/json"

// RunContext carries the reasoning context recorded in the AI action audit.
type RunContext struct {
	Season    string `json:"season,omitempty"`
	Holiday   bool   `json:"holiday,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

// RunReplenishmentRequest feeds a recommendation document straight into the
// pipeline. When Document is omitted the service calls the recommendation
// sidecar itself to obtain one.
type RunReplenishmentRequest struct {
	Document json.RawMessage `json:"document,omitempty"`
	Context  RunContext      `json:"context"`
}

// RunReplenishmentResponse lists the purchase orders that were created.
// Each supplier group is emitted in its own transaction, so a partial result
// with group-level errors is a normal outcome.
type RunReplenishmentResponse struct {
	Orders []SupplierOrderResponse `json:"orders"`
	Errors []string                `json:"errors,omitempty"`
}
