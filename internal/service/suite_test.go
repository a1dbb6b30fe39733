package service_test

import (
	"context"
	"testing"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/repository"
	"github.com/Belkadi-Amine23/mystore/internal/service"
	kafka2 "github.com/Belkadi-Amine23/mystore/pkg/kafka"
	outboxRepository "github.com/Belkadi-Amine23/mystore/pkg/outbox/repository"
	"github.com/Belkadi-Amine23/mystore/pkg/outbox/worker"
	"github.com/Belkadi-Amine23/mystore/pkg/testsuite"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type IntegrationTestSuite struct {
	testsuite.BaseSuite

	ProductRepo     repository.ProductRepository
	PurchaseService service.PurchaseService
	ProductService  service.ProductService
	StatsService    service.StatsService
	AuthService     service.AuthService
	TestProducer    kafka2.Producer
	OutboxProcessor *worker.OutboxProcessor
	workerCancel    context.CancelFunc
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.BaseSuite.SetupInfrastructure("../../migrations")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.BaseSuite.TearDownInfrastructure()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.BaseSuite.TruncateTable("purchases")
	s.BaseSuite.TruncateTable("purchase_lines")
	s.BaseSuite.TruncateTable("products")
	s.BaseSuite.TruncateTable("users")
	s.BaseSuite.TruncateTable("outbox")

	logger := zap.NewNop()
	s.ProductRepo = repository.NewProductRepository(s.DbPool, logger)
	purchaseRepo := repository.NewPurchaseRepository(s.DbPool, logger)
	userRepo := repository.NewUserRepository(s.DbPool, logger)
	statsRepo := repository.NewStatsRepository(s.DbPool, logger)
	outboxRepo := outboxRepository.NewOutboxRepository(s.DbPool, logger)

	var err error
	s.TestProducer, err = kafka2.NewProducer(s.KafkaBrokers)
	s.Require().NoError(err, "failed to create kafka producer")

	s.PurchaseService = service.NewPurchaseService(s.DbPool, logger, purchaseRepo, s.ProductRepo, outboxRepo)
	s.ProductService = service.NewProductService(s.DbPool, logger, s.ProductRepo, nil)
	s.StatsService = service.NewStatsService(logger, statsRepo, s.ProductRepo, userRepo)
	s.AuthService = service.NewAuthService(logger, userRepo)

	s.OutboxProcessor = worker.NewOutboxProcessor(s.DbPool, outboxRepo, s.TestProducer, logger)

	workerCtx, cancel := context.WithCancel(s.Ctx)
	s.workerCancel = cancel

	go s.OutboxProcessor.Start(workerCtx)
}

func (s *IntegrationTestSuite) TearDownTest() {
	if s.workerCancel != nil {
		s.workerCancel()
	}
}

func (s *IntegrationTestSuite) seedProduct(title string, price float64, stock int64) *domain.Product {
	query := `
		INSERT INTO products (title, description, price, stock_quantity, category)
		VALUES ($1, '', $2, $3, 'electronics')
		RETURNING id
	`

	product := &domain.Product{
		Title:         title,
		Price:         price,
		StockQuantity: stock,
		Category:      "electronics",
	}

	err := s.DbPool.QueryRow(s.Ctx, query, title, price, stock).Scan(&product.ID)
	s.Require().NoError(err)

	return product
}

func (s *IntegrationTestSuite) stockOf(productID int64) int64 {
	var stock int64
	err := s.DbPool.QueryRow(s.Ctx, `SELECT stock_quantity FROM products WHERE id = $1`, productID).
		Scan(&stock)
	s.Require().NoError(err)

	return stock
}

func (s *IntegrationTestSuite) createPurchase(lines ...service.CreatePurchaseLine) (*domain.Purchase, error) {
	return s.PurchaseService.Create(s.Ctx, &service.CreatePurchaseInput{
		FirstName: "Amine",
		LastName:  "Belkadi",
		Phone:     "0550123456",
		Region:    "Alger",
		City:      "Bab Ezzouar",
		Lines:     lines,
	})
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
