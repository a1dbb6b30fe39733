package domain

import "time"

// RevenueBucket is one time slice of validated revenue. Period is the start
// of the bucket (date_trunc on the purchase creation date).
type RevenueBucket struct {
	Period  time.Time `json:"period"`
	Revenue float64   `json:"revenue"`
}

// ProductSales pairs a product with the quantity sold across validated
// purchase lines.
type ProductSales struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int64  `json:"quantity"`
}

// StockInfo is the subset of product fields the stock partitions report.
type StockInfo struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	StockQuantity   int64   `json:"stock_quantity"`
	DiscountPercent float64 `json:"discount_percent"`
	Category        string  `json:"category"`
}

// Customer is one distinct buyer, keyed by phone number.
type Customer struct {
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ValidatedPurchase is a line of the validated-purchases listing.
type ValidatedPurchase struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatsReport is the full read-side report. Every field is recomputable from
// the purchase and product tables; an empty database yields zeros and empty
// slices.
type StatsReport struct {
	TotalRevenue            float64            `json:"total_revenue"`
	RevenueToday            float64            `json:"revenue_today"`
	AverageDailyRevenue     float64            `json:"average_daily_revenue"`
	TotalValidatedPurchases int64              `json:"total_validated_purchases"`
	TotalUnitsInStock       int64              `json:"total_units_in_stock"`
	TotalUsers              int64              `json:"total_users"`
	Categories              []string           `json:"categories"`
	RevenueByCategory       map[string]float64 `json:"revenue_by_category"`

	DailyRevenue   []RevenueBucket `json:"daily_revenue"`
	WeeklyRevenue  []RevenueBucket `json:"weekly_revenue"`
	MonthlyRevenue []RevenueBucket `json:"monthly_revenue"`
	YearlyRevenue  []RevenueBucket `json:"yearly_revenue"`

	TopSellingProducts   []ProductSales `json:"top_selling_products"`
	LeastSellingProducts []ProductSales `json:"least_selling_products"`

	LowStockProducts        []StockInfo `json:"low_stock_products"`
	SufficientStockProducts []StockInfo `json:"sufficient_stock_products"`
	DiscountedProducts      []StockInfo `json:"discounted_products"`

	Customers          []Customer          `json:"customers"`
	ValidatedPurchases []ValidatedPurchase `json:"validated_purchases"`
}
