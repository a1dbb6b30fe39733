package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/repository"
	"github.com/Belkadi-Amine23/mystore/internal/storage"
	"github.com/Belkadi-Amine23/mystore/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CreateProductInput struct {
	Title           string  `json:"title" validate:"required,max=200"`
	Description     string  `json:"description" validate:"max=2000"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	StockQuantity   int64   `json:"stock_quantity" validate:"gte=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	Category        string  `json:"category" validate:"required,max=100"`
}

// ImageUpload carries a multipart image through to the object store.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ProductPage is a catalog page with the total count for pagination.
type ProductPage struct {
	Products   []domain.Product `json:"products"`
	TotalCount int64            `json:"total_count"`
}

type ProductService interface {
	Create(ctx context.Context, input *CreateProductInput, image *ImageUpload) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, limit, offset int64, search string) (*ProductPage, error)
	Update(ctx context.Context, id int64, input *domain.UpdateProductInput, image *ImageUpload) (*domain.Product, error)
	UpdateDiscount(ctx context.Context, id int64, percent float64) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

type productService struct {
	pool        *pgxpool.Pool
	logger      *zap.Logger
	productRepo repository.ProductRepository
	images      storage.ImageStore
	tracer      trace.Tracer
}

func NewProductService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	productRepo repository.ProductRepository,
	images storage.ImageStore,
) ProductService {
	return &productService{
		pool:        pool,
		logger:      logger,
		productRepo: productRepo,
		images:      images,
		tracer:      otel.Tracer("product_service"),
	}
}

func (s *productService) Create(ctx context.Context, input *CreateProductInput, image *ImageUpload) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("title", input.Title),
	)

	product := &domain.Product{
		Title:           input.Title,
		Description:     input.Description,
		Price:           input.Price,
		StockQuantity:   input.StockQuantity,
		DiscountPercent: input.DiscountPercent,
		Category:        input.Category,
	}

	if image != nil {
		url, err := s.images.Upload(ctx, image.Filename, image.ContentType, image.Size, image.Reader)
		if err != nil {
			return nil, err
		}
		product.ImageUrl = url
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
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

	if _, err := s.productRepo.Create(ctx, tx, product); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Product created",
		zap.Int64("product_id", product.ID),
		zap.String("title", product.Title),
	)

	return s.productRepo.GetByID(ctx, product.ID)
}

func (s *productService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) List(ctx context.Context, limit, offset int64, search string) (*ProductPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	products, total, err := s.productRepo.List(ctx, limit, offset, search)
	if err != nil {
		return nil, err
	}

	if products == nil {
		products = []domain.Product{}
	}

	return &ProductPage{
		Products:   products,
		TotalCount: total,
	}, nil
}

func (s *productService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput, image *ImageUpload) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	var oldImageURL string
	if image != nil {
		existing, err := s.productRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		oldImageURL = existing.ImageUrl

		url, err := s.images.Upload(ctx, image.Filename, image.ContentType, image.Size, image.Reader)
		if err != nil {
			return nil, err
		}
		input.ImageUrl = &url
	}

	if err := s.productRepo.Update(ctx, id, input); err != nil {
		return nil, err
	}

	if oldImageURL != "" {
		// best effort; the new image is already live
		if err := s.images.Remove(ctx, oldImageURL); err != nil {
			mylogger.Warn(
				ctx,
				s.logger,
				"Failed to remove replaced image",
				zap.Int64("product_id", id),
				zap.Error(err),
			)
		}
	}

	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) UpdateDiscount(ctx context.Context, id int64, percent float64) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.UpdateDiscount")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Float64("discount_percent", percent),
	)

	product, err := s.productRepo.UpdateDiscount(ctx, id, percent)
	if err != nil {
		return nil, err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Discount updated",
		zap.Int64("product_id", id),
		zap.Float64("discount_percent", percent),
	)

	return product, nil
}

// Delete soft deletes the product so past purchase lines keep resolving its
// title. The image stays in the bucket for the same reason.
func (s *productService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	if err := s.productRepo.DeleteByID(ctx, id); err != nil {
		return err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Product deleted",
		zap.Int64("product_id", id),
	)

	return nil
}

func (s *productService) Categories(ctx context.Context) ([]string, error) {
	return s.productRepo.Categories(ctx)
}
