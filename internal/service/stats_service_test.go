package service_test

import (
	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/service"
)

func (s *IntegrationTestSuite) TestStats_EmptyStore() {
	report, err := s.StatsService.Report(s.Ctx)
	s.Require().NoError(err)

	s.Require().Zero(report.TotalRevenue)
	s.Require().Zero(report.RevenueToday)
	s.Require().Zero(report.AverageDailyRevenue)
	s.Require().Zero(report.TotalValidatedPurchases)
	s.Require().Zero(report.TotalUnitsInStock)
	s.Require().Zero(report.TotalUsers)
	s.Require().Empty(report.Categories)
	s.Require().Empty(report.RevenueByCategory)
	s.Require().Empty(report.DailyRevenue)
	s.Require().Empty(report.TopSellingProducts)
	s.Require().Empty(report.Customers)
	s.Require().Empty(report.ValidatedPurchases)
}

func (s *IntegrationTestSuite) TestStats_RevenueCountsOnlyValidated() {
	laptop := s.seedProduct("Laptop", 1500, 10)

	validated, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: laptop.ID, Quantity: 2, UnitPrice: 1500},
	)
	s.Require().NoError(err)
	s.Require().NoError(s.PurchaseService.Resolve(s.Ctx, validated.ID, domain.ActionValidate))

	// still pending, must not count towards revenue
	_, err = s.createPurchase(
		service.CreatePurchaseLine{ProductID: laptop.ID, Quantity: 1, UnitPrice: 1500},
	)
	s.Require().NoError(err)

	report, err := s.StatsService.Report(s.Ctx)
	s.Require().NoError(err)

	s.Require().InDelta(3000, report.TotalRevenue, 0.001)
	s.Require().InDelta(3000, report.RevenueToday, 0.001)
	s.Require().InDelta(3000, report.AverageDailyRevenue, 0.001)
	s.Require().EqualValues(1, report.TotalValidatedPurchases)
	s.Require().Len(report.ValidatedPurchases, 1)
	s.Require().InDelta(3000, report.ValidatedPurchases[0].TotalAmount, 0.001)

	s.Require().Len(report.DailyRevenue, 1)
	s.Require().InDelta(3000, report.DailyRevenue[0].Revenue, 0.001)

	s.Require().InDelta(3000, report.RevenueByCategory["electronics"], 0.001)
}

func (s *IntegrationTestSuite) TestStats_StockPartitionsAndSales() {
	laptop := s.seedProduct("Laptop", 1500, 50)
	cable := s.seedProduct("Cable", 5, 3)

	_, err := s.ProductService.UpdateDiscount(s.Ctx, cable.ID, 20)
	s.Require().NoError(err)

	purchase, err := s.createPurchase(
		service.CreatePurchaseLine{ProductID: laptop.ID, Quantity: 4, UnitPrice: 1500},
		service.CreatePurchaseLine{ProductID: cable.ID, Quantity: 1, UnitPrice: 5},
	)
	s.Require().NoError(err)
	s.Require().NoError(s.PurchaseService.Resolve(s.Ctx, purchase.ID, domain.ActionValidate))

	report, err := s.StatsService.Report(s.Ctx)
	s.Require().NoError(err)

	s.Require().Len(report.LowStockProducts, 1)
	s.Require().Equal(cable.ID, report.LowStockProducts[0].ID)

	s.Require().Len(report.SufficientStockProducts, 1)
	s.Require().Equal(laptop.ID, report.SufficientStockProducts[0].ID)

	s.Require().Len(report.DiscountedProducts, 1)
	s.Require().Equal(cable.ID, report.DiscountedProducts[0].ID)

	s.Require().NotEmpty(report.TopSellingProducts)
	s.Require().Equal(laptop.ID, report.TopSellingProducts[0].ProductID)
	s.Require().EqualValues(4, report.TopSellingProducts[0].Quantity)

	s.Require().NotEmpty(report.LeastSellingProducts)
	s.Require().Equal(cable.ID, report.LeastSellingProducts[0].ProductID)

	s.Require().Len(report.Customers, 1)
	s.Require().Equal("0550123456", report.Customers[0].Phone)
}
