package service_test

import (
	"fmt"
	"time"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/repository"
	"github.com/Belkadi-Amine23/mystore/internal/service"
)

func (s *IntegrationTestSuite) TestCreatePurchase_DecrementsStockAndComputesTotal() {
	laptop := s.seedProduct("Laptop", 1500, 10)
	mouse := s.seedProduct("Mouse", 25, 40)

	purchase, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: laptop.ID, Quantity: 2, UnitPrice: 1500},
		service.CreatePurchaseLine{ProductID: mouse.ID, Quantity: 3, UnitPrice: 25},
	)
	s.Require().NoError(err)
	s.Require().NotZero(purchase.ID)

	s.Require().InDelta(2*1500+3*25, purchase.TotalAmount, 0.001)
	s.Require().False(purchase.Validated)

	s.Require().EqualValues(8, s.stockOf(laptop.ID))
	s.Require().EqualValues(37, s.stockOf(mouse.ID))
}

func (s *IntegrationTestSuite) TestCreatePurchase_InsufficientStockRollsBack() {
	laptop := s.seedProduct("Laptop", 1500, 10)
	mouse := s.seedProduct("Mouse", 25, 3)

	_, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: laptop.ID, Quantity: 2, UnitPrice: 1500},
		service.CreatePurchaseLine{ProductID: mouse.ID, Quantity: 5, UnitPrice: 25},
	)

	var stockErr *repository.InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Require().Equal(mouse.ID, stockErr.ProductID)
	s.Require().Equal("Mouse", stockErr.Title)
	s.Require().EqualValues(3, stockErr.Available)
	s.Require().EqualValues(5, stockErr.Requested)

	// the laptop decrement must have been rolled back with the rest
	s.Require().EqualValues(10, s.stockOf(laptop.ID))
	s.Require().EqualValues(3, s.stockOf(mouse.ID))

	var count int64
	err = s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM purchases`).Scan(&count)
	s.Require().NoError(err)
	s.Require().Zero(count)
}

func (s *IntegrationTestSuite) TestCreatePurchase_UnknownProduct() {
	_, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: 424242, Quantity: 1, UnitPrice: 10},
	)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestResolve_ValidateKeepsStock() {
	laptop := s.seedProduct("Laptop", 1500, 10)

	purchase, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: laptop.ID, Quantity: 4, UnitPrice: 1500},
	)
	s.Require().NoError(err)
	s.Require().EqualValues(6, s.stockOf(laptop.ID))

	err = s.PurchaseService.Resolve(s.Ctx, purchase.ID, domain.ActionValidate)
	s.Require().NoError(err)

	// stock was taken at creation time, validation must not touch it again
	s.Require().EqualValues(6, s.stockOf(laptop.ID))

	var validated bool
	err = s.DbPool.QueryRow(s.Ctx, `SELECT validated FROM purchases WHERE id = $1`, purchase.ID).
		Scan(&validated)
	s.Require().NoError(err)
	s.Require().True(validated)
}

func (s *IntegrationTestSuite) TestResolve_RefuseRestoresStockAndDeletes() {
	laptop := s.seedProduct("Laptop", 1500, 10)

	purchase, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: laptop.ID, Quantity: 4, UnitPrice: 1500},
	)
	s.Require().NoError(err)
	s.Require().EqualValues(6, s.stockOf(laptop.ID))

	err = s.PurchaseService.Resolve(s.Ctx, purchase.ID, domain.ActionRefuse)
	s.Require().NoError(err)

	s.Require().EqualValues(10, s.stockOf(laptop.ID))

	var count int64
	err = s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM purchases WHERE id = $1`, purchase.ID).
		Scan(&count)
	s.Require().NoError(err)
	s.Require().Zero(count)

	err = s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM purchase_lines WHERE purchase_id = $1`, purchase.ID).
		Scan(&count)
	s.Require().NoError(err)
	s.Require().Zero(count)
}

func (s *IntegrationTestSuite) TestResolve_SecondResolutionFails() {
	laptop := s.seedProduct("Laptop", 1500, 10)

	purchase, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: laptop.ID, Quantity: 2, UnitPrice: 1500},
	)
	s.Require().NoError(err)

	s.Require().NoError(s.PurchaseService.Resolve(s.Ctx, purchase.ID, domain.ActionValidate))

	err = s.PurchaseService.Resolve(s.Ctx, purchase.ID, domain.ActionRefuse)
	s.Require().ErrorIs(err, repository.ErrPurchaseNotFound)

	// the refused-after-validate attempt must not have restored anything
	s.Require().EqualValues(8, s.stockOf(laptop.ID))
}

func (s *IntegrationTestSuite) TestResolve_InvalidAction() {
	err := s.PurchaseService.Resolve(s.Ctx, 1, domain.ResolveAction("archive"))
	s.Require().ErrorIs(err, service.ErrInvalidAction)
}

func (s *IntegrationTestSuite) TestListPending_GroupsLines() {
	laptop := s.seedProduct("Laptop", 1500, 10)
	mouse := s.seedProduct("Mouse", 25, 40)

	first, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: laptop.ID, Quantity: 1, UnitPrice: 1500},
		service.CreatePurchaseLine{ProductID: mouse.ID, Quantity: 2, UnitPrice: 25},
	)
	s.Require().NoError(err)

	second, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: mouse.ID, Quantity: 1, UnitPrice: 25},
	)
	s.Require().NoError(err)

	s.Require().NoError(s.PurchaseService.Resolve(s.Ctx, second.ID, domain.ActionValidate))

	pending, err := s.PurchaseService.ListPending(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Require().Equal(first.ID, pending[0].ID)
	s.Require().Len(pending[0].Lines, 2)

	titles := map[int64]string{}
	for _, line := range pending[0].Lines {
		titles[line.ProductID] = line.ProductTitle
	}
	s.Require().Equal("Laptop", titles[laptop.ID])
	s.Require().Equal("Mouse", titles[mouse.ID])

	count, err := s.PurchaseService.CountPending(s.Ctx)
	s.Require().NoError(err)
	s.Require().EqualValues(1, count)
}

func (s *IntegrationTestSuite) TestCreatePurchase_PublishesOutboxEvent() {
	laptop := s.seedProduct("Laptop", 1500, 10)

	purchase, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: laptop.ID, Quantity: 1, UnitPrice: 1500},
	)
	s.Require().NoError(err)

	query := `
		SELECT published_at
		FROM outbox
		WHERE aggregate_id = $1 AND event_type = 'PurchaseCreated'
	`

	s.Require().Eventually(func() bool {
		var publishedAt *time.Time

		err := s.DbPool.QueryRow(s.Ctx, query, fmt.Sprintf("%d", purchase.ID)).
			Scan(&publishedAt)

		return err == nil && publishedAt != nil
	}, 5*time.Second, 100*time.Millisecond)
}
