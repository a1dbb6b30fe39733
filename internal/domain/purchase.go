package domain

import "time"

// Purchase is a customer order awaiting admin resolution. Stock is taken at
// creation time; validation keeps it, refusal puts it back and deletes the
// record.
type Purchase struct {
	ID          int64          `json:"id" db:"id"`
	FirstName   string         `json:"first_name" db:"first_name"`
	LastName    string         `json:"last_name" db:"last_name"`
	Phone       string         `json:"phone" db:"phone"`
	Region      string         `json:"region" db:"region"`
	City        string         `json:"city" db:"city"`
	TotalAmount float64        `json:"total_amount" db:"total_amount"`
	Validated   bool           `json:"validated" db:"validated"`
	Lines       []PurchaseLine `json:"lines"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PurchaseLine snapshots one cart entry. UnitPrice is the price at purchase
// time, not a live reference to the product row.
type PurchaseLine struct {
	ID           int64   `json:"id" db:"id"`
	PurchaseID   int64   `json:"purchase_id" db:"purchase_id"`
	ProductID    int64   `json:"product_id" db:"product_id"`
	ProductTitle string  `json:"product_title,omitempty" db:"-"`
	Quantity     int64   `json:"quantity" db:"quantity"`
	UnitPrice    float64 `json:"unit_price" db:"unit_price"`
}

func (p *Purchase) CalculateTotal() {
	var total float64
	for _, line := range p.Lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	p.TotalAmount = total
}

// ResolveAction is the admin decision on a pending purchase.
type ResolveAction string

const (
	ActionValidate ResolveAction = "validate"
	ActionRefuse   ResolveAction = "refuse"
)

func (a ResolveAction) Valid() bool {
	return a == ActionValidate || a == ActionRefuse
}
