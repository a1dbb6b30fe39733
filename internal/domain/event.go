package domain

// Payloads published to the purchase_events topic through the outbox.

type PurchaseLineEvent struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type PurchaseCreatedEvent struct {
	PurchaseID  int64               `json:"purchase_id"`
	Phone       string              `json:"phone"`
	TotalAmount float64             `json:"total_amount"`
	Lines       []PurchaseLineEvent `json:"lines"`
}

type PurchaseResolvedEvent struct {
	PurchaseID int64  `json:"purchase_id"`
	Action     string `json:"action"`
}
