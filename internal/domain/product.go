package domain

import "time"

type Product struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	Price           float64   `json:"price" db:"price"`
	StockQuantity   int64     `json:"stock_quantity" db:"stock_quantity"`
	DiscountPercent float64   `json:"discount_percent" db:"discount_percent"`
	Category        string    `json:"category" db:"category"`
	ImageUrl        string    `json:"image_url" db:"image_url"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateProductInput struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	StockQuantity   *int64   `json:"stock_quantity"`
	DiscountPercent *float64 `json:"discount_percent"`
	Category        *string  `json:"category"`
	ImageUrl        *string  `json:"image_url"`
}
