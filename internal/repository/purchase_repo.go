package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type PurchaseRepository interface {
	Create(ctx context.Context, tx pgx.Tx, purchase *domain.Purchase) error
	GetPendingForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Purchase, error)
	MarkValidated(ctx context.Context, tx pgx.Tx, id int64) error
	Delete(ctx context.Context, tx pgx.Tx, id int64) error
	ListPending(ctx context.Context) ([]domain.Purchase, error)
	CountPending(ctx context.Context) (int64, error)
}

type purchaseRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewPurchaseRepository(pool *pgxpool.Pool, logger *zap.Logger) PurchaseRepository {
	return &purchaseRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("contract/purchase_repo"),
	}
}

func (r *purchaseRepo) Create(ctx context.Context, tx pgx.Tx, purchase *domain.Purchase) error {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("phone", purchase.Phone),
		attribute.Int("lines_count", len(purchase.Lines)),
	)

	queryHeader := `
		INSERT INTO purchases (first_name, last_name, phone, region, city, total_amount, validated)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING id, created_at
	`

	if err := tx.QueryRow(
		ctx,
		queryHeader,
		purchase.FirstName,
		purchase.LastName,
		purchase.Phone,
		purchase.Region,
		purchase.City,
		purchase.TotalAmount,
	).Scan(
		&purchase.ID,
		&purchase.CreatedAt,
	); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to insert purchase",
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert purchase: %w", err)
	}

	queryLine := `
		INSERT INTO purchase_lines (purchase_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	for i := range purchase.Lines {
		line := &purchase.Lines[i]
		line.PurchaseID = purchase.ID

		if err := tx.QueryRow(
			ctx,
			queryLine,
			purchase.ID,
			line.ProductID,
			line.Quantity,
			line.UnitPrice,
		).Scan(&line.ID); err != nil {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Failed to insert purchase line",
				zap.Int64("product_id", line.ProductID),
				zap.Error(err),
			)

			return fmt.Errorf("failed to insert purchase line: %w", err)
		}
	}

	return nil
}

// GetPendingForUpdate fetches an unvalidated purchase with its lines, locking
// the header row. A purchase that was already validated or deleted is not
// found, which is what makes double resolution fail cleanly.
func (r *purchaseRepo) GetPendingForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Purchase, error) {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.GetPendingForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("purchase_id", id),
	)

	query := `
		SELECT id, first_name, last_name, phone, region, city, total_amount, validated, created_at
		FROM purchases
		WHERE id = $1 AND validated = FALSE
		FOR UPDATE;
	`

	var p domain.Purchase
	if err := tx.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Phone,
		&p.Region,
		&p.City,
		&p.TotalAmount,
		&p.Validated,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to lock purchase",
			zap.Int64("purchase_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to lock purchase %d: %w", id, err)
	}

	linesQuery := `
		SELECT id, purchase_id, product_id, quantity, unit_price
		FROM purchase_lines
		WHERE purchase_id = $1;
	`

	rows, err := tx.Query(ctx, linesQuery, id)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query purchase lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.PurchaseLine
		if err := rows.Scan(
			&line.ID,
			&line.PurchaseID,
			&line.ProductID,
			&line.Quantity,
			&line.UnitPrice,
		); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("failed to scan purchase line: %w", err)
		}

		p.Lines = append(p.Lines, line)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, err
	}

	return &p, nil
}

func (r *purchaseRepo) MarkValidated(ctx context.Context, tx pgx.Tx, id int64) error {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.MarkValidated")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("purchase_id", id),
	)

	query := `
		UPDATE purchases
		SET validated = TRUE
		WHERE id = $1 AND validated = FALSE;
	`

	commandTag, err := tx.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to validate purchase",
			zap.Int64("purchase_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("failed to validate purchase: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrPurchaseNotFound
	}

	return nil
}

func (r *purchaseRepo) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("purchase_id", id),
	)

	// purchase_lines go with the header via ON DELETE CASCADE
	query := `
		DELETE FROM purchases
		WHERE id = $1;
	`

	commandTag, err := tx.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to delete purchase",
			zap.Int64("purchase_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("failed to delete purchase: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrPurchaseNotFound
	}

	return nil
}

func (r *purchaseRepo) ListPending(ctx context.Context) ([]domain.Purchase, error) {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.ListPending")
	defer span.End()

	query := `
		SELECT p.id, p.first_name, p.last_name, p.phone, p.region, p.city,
			p.total_amount, p.validated, p.created_at,
			l.id, l.product_id, l.quantity, l.unit_price,
			COALESCE(pr.title, '')
		FROM purchases p
		JOIN purchase_lines l ON l.purchase_id = p.id
		LEFT JOIN products pr ON pr.id = l.product_id
		WHERE p.validated = FALSE
		ORDER BY p.created_at DESC, p.id, l.id;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query pending purchases",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query pending purchases: %w", err)
	}
	defer rows.Close()

	purchases := []domain.Purchase{}
	index := map[int64]int{}

	for rows.Next() {
		var p domain.Purchase
		var line domain.PurchaseLine

		if err := rows.Scan(
			&p.ID,
			&p.FirstName,
			&p.LastName,
			&p.Phone,
			&p.Region,
			&p.City,
			&p.TotalAmount,
			&p.Validated,
			&p.CreatedAt,
			&line.ID,
			&line.ProductID,
			&line.Quantity,
			&line.UnitPrice,
			&line.ProductTitle,
		); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("failed to scan pending purchase: %w", err)
		}

		line.PurchaseID = p.ID

		if pos, ok := index[p.ID]; ok {
			purchases[pos].Lines = append(purchases[pos].Lines, line)
		} else {
			p.Lines = []domain.PurchaseLine{line}
			index[p.ID] = len(purchases)
			purchases = append(purchases, p)
		}
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("result_count", len(purchases)),
	)

	return purchases, nil
}

func (r *purchaseRepo) CountPending(ctx context.Context) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.CountPending")
	defer span.End()

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases WHERE validated = FALSE`).
		Scan(&count); err != nil {
		span.RecordError(err)

		return 0, fmt.Errorf("failed to count pending purchases: %w", err)
	}

	return count, nil
}
