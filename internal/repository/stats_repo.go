package repository

import (
	"context"
	"fmt"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// LowStockThreshold splits the stock partitions in the statistics report.
const LowStockThreshold = 10

type StatsRepository interface {
	TotalRevenue(ctx context.Context) (float64, error)
	RevenueToday(ctx context.Context) (float64, error)
	DistinctPurchaseDays(ctx context.Context) (int64, error)
	CountValidatedPurchases(ctx context.Context) (int64, error)
	TotalUnitsInStock(ctx context.Context) (int64, error)
	RevenueByCategory(ctx context.Context) (map[string]float64, error)
	RevenueByPeriod(ctx context.Context, bucket string) ([]domain.RevenueBucket, error)
	ProductsBySales(ctx context.Context, limit int, ascending bool) ([]domain.ProductSales, error)
	StockPartitions(ctx context.Context) (low, sufficient, discounted []domain.StockInfo, err error)
	DistinctCustomers(ctx context.Context) ([]domain.Customer, error)
	ValidatedPurchases(ctx context.Context) ([]domain.ValidatedPurchase, error)
}

type statsRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewStatsRepository(pool *pgxpool.Pool, logger *zap.Logger) StatsRepository {
	return &statsRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("contract/stats_repo"),
	}
}

func (r *statsRepo) TotalRevenue(ctx context.Context) (float64, error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.TotalRevenue")
	defer span.End()

	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM purchases
		WHERE validated = TRUE;
	`

	var total float64
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		span.RecordError(err)

		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return total, nil
}

func (r *statsRepo) RevenueToday(ctx context.Context) (float64, error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.RevenueToday")
	defer span.End()

	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM purchases
		WHERE validated = TRUE
			AND created_at >= date_trunc('day', NOW())
			AND created_at < date_trunc('day', NOW()) + INTERVAL '1 day';
	`

	var total float64
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		span.RecordError(err)

		return 0, fmt.Errorf("failed to sum today's revenue: %w", err)
	}

	return total, nil
}

func (r *statsRepo) DistinctPurchaseDays(ctx context.Context) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.DistinctPurchaseDays")
	defer span.End()

	query := `
		SELECT COUNT(DISTINCT created_at::date)
		FROM purchases
		WHERE validated = TRUE;
	`

	var days int64
	if err := r.pool.QueryRow(ctx, query).Scan(&days); err != nil {
		span.RecordError(err)

		return 0, fmt.Errorf("failed to count purchase days: %w", err)
	}

	return days, nil
}

func (r *statsRepo) CountValidatedPurchases(ctx context.Context) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.CountValidatedPurchases")
	defer span.End()

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases WHERE validated = TRUE`).
		Scan(&count); err != nil {
		span.RecordError(err)

		return 0, fmt.Errorf("failed to count validated purchases: %w", err)
	}

	return count, nil
}

func (r *statsRepo) TotalUnitsInStock(ctx context.Context) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.TotalUnitsInStock")
	defer span.End()

	query := `
		SELECT COALESCE(SUM(stock_quantity), 0)
		FROM products
		WHERE deleted_at IS NULL;
	`

	var total int64
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		span.RecordError(err)

		return 0, fmt.Errorf("failed to sum stock: %w", err)
	}

	return total, nil
}

func (r *statsRepo) RevenueByCategory(ctx context.Context) (map[string]float64, error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.RevenueByCategory")
	defer span.End()

	query := `
		SELECT pr.category, COALESCE(SUM(l.unit_price * l.quantity), 0)
		FROM purchase_lines l
		JOIN purchases p ON p.id = l.purchase_id AND p.validated = TRUE
		JOIN products pr ON pr.id = l.product_id
		GROUP BY pr.category;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query revenue by category: %w", err)
	}
	defer rows.Close()

	result := map[string]float64{}
	for rows.Next() {
		var category string
		var revenue float64
		if err := rows.Scan(&category, &revenue); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("failed to scan category revenue: %w", err)
		}
		result[category] = revenue
	}

	return result, rows.Err()
}

// RevenueByPeriod buckets validated revenue with date_trunc. The bucket name
// is whitelisted before interpolation.
func (r *statsRepo) RevenueByPeriod(ctx context.Context, bucket string) ([]domain.RevenueBucket, error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.RevenueByPeriod")
	defer span.End()

	span.SetAttributes(
		attribute.String("bucket", bucket),
	)

	switch bucket {
	case "day", "week", "month", "year":
	default:
		return nil, fmt.Errorf("unsupported revenue bucket %q", bucket)
	}

	query := fmt.Sprintf(`
		SELECT date_trunc('%s', created_at) AS period, SUM(total_amount)
		FROM purchases
		WHERE validated = TRUE
		GROUP BY period
		ORDER BY period;
	`, bucket)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query %s revenue: %w", bucket, err)
	}
	defer rows.Close()

	buckets := []domain.RevenueBucket{}
	for rows.Next() {
		var b domain.RevenueBucket
		if err := rows.Scan(&b.Period, &b.Revenue); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("failed to scan revenue bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

func (r *statsRepo) ProductsBySales(ctx context.Context, limit int, ascending bool) ([]domain.ProductSales, error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.ProductsBySales")
	defer span.End()

	span.SetAttributes(
		attribute.Int("limit", limit),
		attribute.Bool("ascending", ascending),
	)

	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT pr.id, pr.title, COALESCE(SUM(l.quantity), 0) AS sold
		FROM products pr
		LEFT JOIN purchase_lines l ON l.product_id = pr.id
		LEFT JOIN purchases p ON p.id = l.purchase_id AND p.validated = TRUE
		WHERE pr.deleted_at IS NULL
		GROUP BY pr.id, pr.title
		ORDER BY sold %s, pr.id
		LIMIT $1;
	`, direction)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query products by sales: %w", err)
	}
	defer rows.Close()

	result := []domain.ProductSales{}
	for rows.Next() {
		var ps domain.ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Title, &ps.Quantity); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("failed to scan product sales: %w", err)
		}
		result = append(result, ps)
	}

	return result, rows.Err()
}

func (r *statsRepo) StockPartitions(ctx context.Context) (low, sufficient, discounted []domain.StockInfo, err error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.StockPartitions")
	defer span.End()

	query := `
		SELECT id, title, stock_quantity, discount_percent, category
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY id;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		return nil, nil, nil, fmt.Errorf("failed to query stock partitions: %w", err)
	}
	defer rows.Close()

	low = []domain.StockInfo{}
	sufficient = []domain.StockInfo{}
	discounted = []domain.StockInfo{}

	for rows.Next() {
		var info domain.StockInfo
		if err := rows.Scan(
			&info.ID,
			&info.Title,
			&info.StockQuantity,
			&info.DiscountPercent,
			&info.Category,
		); err != nil {
			span.RecordError(err)

			return nil, nil, nil, fmt.Errorf("failed to scan stock info: %w", err)
		}

		if info.StockQuantity < LowStockThreshold {
			low = append(low, info)
		} else {
			sufficient = append(sufficient, info)
		}

		if info.DiscountPercent > 0 {
			discounted = append(discounted, info)
		}
	}

	return low, sufficient, discounted, rows.Err()
}

func (r *statsRepo) DistinctCustomers(ctx context.Context) ([]domain.Customer, error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.DistinctCustomers")
	defer span.End()

	query := `
		SELECT phone, MIN(first_name), MIN(last_name)
		FROM purchases
		GROUP BY phone
		ORDER BY phone;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.Phone, &c.FirstName, &c.LastName); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	return customers, rows.Err()
}

func (r *statsRepo) ValidatedPurchases(ctx context.Context) ([]domain.ValidatedPurchase, error) {
	ctx, span := r.tracer.Start(ctx, "StatsRepository.ValidatedPurchases")
	defer span.End()

	query := `
		SELECT first_name, last_name, phone, total_amount, created_at
		FROM purchases
		WHERE validated = TRUE
		ORDER BY created_at DESC;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query validated purchases: %w", err)
	}
	defer rows.Close()

	purchases := []domain.ValidatedPurchase{}
	for rows.Next() {
		var vp domain.ValidatedPurchase
		if err := rows.Scan(
			&vp.FirstName,
			&vp.LastName,
			&vp.Phone,
			&vp.TotalAmount,
			&vp.CreatedAt,
		); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("failed to scan validated purchase: %w", err)
		}
		purchases = append(purchases, vp)
	}

	return purchases, rows.Err()
}
