package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/metrics"
	"github.com/Belkadi-Amine23/mystore/internal/repository"
	"github.com/Belkadi-Amine23/mystore/pkg/mylogger"
	outboxDomain "github.com/Belkadi-Amine23/mystore/pkg/outbox/domain"
	"github.com/Belkadi-Amine23/mystore/pkg/outbox/worker"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrInvalidAction means the admin asked for something other than validate or
// refuse.
var ErrInvalidAction = errors.New("invalid action")

const purchaseTopic = "purchase_events"

type CreatePurchaseLine struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"required,gt=0"`
}

type CreatePurchaseInput struct {
	FirstName string               `json:"first_name" validate:"required,max=100"`
	LastName  string               `json:"last_name" validate:"required,max=100"`
	Phone     string               `json:"phone" validate:"required,max=30"`
	Region    string               `json:"region" validate:"required,max=100"`
	City      string               `json:"city" validate:"required,max=100"`
	Lines     []CreatePurchaseLine `json:"lines" validate:"required,min=1,dive"`
}

type PurchaseService interface {
	Create(ctx context.Context, input *CreatePurchaseInput) (*domain.Purchase, error)
	Resolve(ctx context.Context, id int64, action domain.ResolveAction) error
	ListPending(ctx context.Context) ([]domain.Purchase, error)
	CountPending(ctx context.Context) (int64, error)
}

type purchaseService struct {
	pool         *pgxpool.Pool
	logger       *zap.Logger
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	outboxRepo   worker.OutboxRepository
	tracer       trace.Tracer
}

func NewPurchaseService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	outboxRepo worker.OutboxRepository,
) PurchaseService {
	return &purchaseService{
		pool:         pool,
		logger:       logger,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		outboxRepo:   outboxRepo,
		tracer:       otel.Tracer("purchase_service"),
	}
}

// Create books the purchase and its stock in one transaction. Either every
// line's stock is taken and the header plus lines are persisted, or nothing
// is.
func (s *purchaseService) Create(ctx context.Context, input *CreatePurchaseInput) (*domain.Purchase, error) {
	ctx, span := s.tracer.Start(ctx, "PurchaseService.Create")
	defer span.End()

	span.SetAttributes(
		attribute.Int("lines_count", len(input.Lines)),
	)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(cleanupCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(
				cleanupCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	purchase := &domain.Purchase{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Region:    input.Region,
		City:      input.City,
		Lines:     make([]domain.PurchaseLine, 0, len(input.Lines)),
	}

	for _, line := range input.Lines {
		if err := s.productRepo.DecreaseStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
			var stockErr *repository.InsufficientStockError
			if errors.As(err, &stockErr) {
				metrics.PurchasesRejected.Inc()

				mylogger.Warn(
					ctx,
					s.logger,
					"Insufficient stock",
					zap.Int64("product_id", line.ProductID),
					zap.Int64("requested", line.Quantity),
					zap.Int64("available", stockErr.Available),
				)

				return nil, err
			}

			if errors.Is(err, repository.ErrProductNotFound) {
				mylogger.Warn(
					ctx,
					s.logger,
					"Purchase references unknown product",
					zap.Int64("product_id", line.ProductID),
				)

				return nil, err
			}

			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}

		purchase.Lines = append(purchase.Lines, domain.PurchaseLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	// the client-sent total is ignored; the stored amount is always the sum
	// of the line snapshots
	purchase.CalculateTotal()

	if err := s.purchaseRepo.Create(ctx, tx, purchase); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to create purchase",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	eventLines := make([]domain.PurchaseLineEvent, len(purchase.Lines))
	for i, line := range purchase.Lines {
		eventLines[i] = domain.PurchaseLineEvent{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
	}

	if err := s.emitEvent(ctx, tx, "PurchaseCreated", purchase.ID, &domain.PurchaseCreatedEvent{
		PurchaseID:  purchase.ID,
		Phone:       purchase.Phone,
		TotalAmount: purchase.TotalAmount,
		Lines:       eventLines,
	}); err != nil {
		return nil, fmt.Errorf("failed to emit event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to commit transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.PurchasesCreated.Inc()

	mylogger.Info(
		ctx,
		s.logger,
		"Purchase created",
		zap.Int64("purchase_id", purchase.ID),
		zap.Float64("total_amount", purchase.TotalAmount),
	)

	return purchase, nil
}

// Resolve applies the admin decision. Validation flips the flag and leaves
// stock alone; stock was already taken at creation time. Refusal puts every
// line's quantity back and deletes the purchase. Both paths start by locking
// the pending header row, so a second resolver for the same id gets
// ErrPurchaseNotFound instead of a double stock adjustment.
func (s *purchaseService) Resolve(ctx context.Context, id int64, action domain.ResolveAction) error {
	ctx, span := s.tracer.Start(ctx, "PurchaseService.Resolve")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("purchase_id", id),
		attribute.String("action", string(action)),
	)

	if !action.Valid() {
		return ErrInvalidAction
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(cleanupCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(
				cleanupCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	purchase, err := s.purchaseRepo.GetPendingForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			mylogger.Warn(
				ctx,
				s.logger,
				"Pending purchase not found",
				zap.Int64("purchase_id", id),
			)

			return err
		}

		return fmt.Errorf("failed to load purchase: %w", err)
	}

	switch action {
	case domain.ActionValidate:
		if err := s.purchaseRepo.MarkValidated(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to validate purchase: %w", err)
		}

	case domain.ActionRefuse:
		for _, line := range purchase.Lines {
			if err := s.productRepo.IncreaseStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				mylogger.Error(
					ctx,
					s.logger,
					"Failed to restore stock",
					zap.Int64("product_id", line.ProductID),
					zap.Int64("quantity", line.Quantity),
					zap.Error(err),
				)

				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}

		if err := s.purchaseRepo.Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to delete purchase: %w", err)
		}
	}

	eventType := "PurchaseValidated"
	if action == domain.ActionRefuse {
		eventType = "PurchaseRefused"
	}

	if err := s.emitEvent(ctx, tx, eventType, id, &domain.PurchaseResolvedEvent{
		PurchaseID: id,
		Action:     string(action),
	}); err != nil {
		return fmt.Errorf("failed to emit event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to commit transaction",
			zap.Error(err),
		)

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.PurchasesResolved.WithLabelValues(string(action)).Inc()

	mylogger.Info(
		ctx,
		s.logger,
		"Purchase resolved",
		zap.Int64("purchase_id", id),
		zap.String("action", string(action)),
	)

	return nil
}

func (s *purchaseService) ListPending(ctx context.Context) ([]domain.Purchase, error) {
	purchases, err := s.purchaseRepo.ListPending(ctx)
	if err != nil {
		s.logger.Error("list pending purchases error", zap.Error(err))
		return nil, fmt.Errorf("error listing pending purchases: %w", err)
	}

	return purchases, nil
}

func (s *purchaseService) CountPending(ctx context.Context) (int64, error) {
	count, err := s.purchaseRepo.CountPending(ctx)
	if err != nil {
		s.logger.Error("count pending purchases error", zap.Error(err))
		return 0, fmt.Errorf("error counting pending purchases: %w", err)
	}

	return count, nil
}

func (s *purchaseService) emitEvent(ctx context.Context, tx pgx.Tx, eventType string, purchaseID int64, payload any) error {
	wrapper := map[string]any{
		"event":   eventType,
		"payload": payload,
	}

	wrapperBytes, err := json.Marshal(wrapper)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "Purchase",
		AggregateID:   fmt.Sprintf("%d", purchaseID),
		EventType:     eventType,
		Payload:       wrapperBytes,
		Topic:         purchaseTopic,
	}

	return s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent)
}
