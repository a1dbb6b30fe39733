package service_test

import (
	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/repository"
	"github.com/Belkadi-Amine23/mystore/internal/service"
)

func (s *IntegrationTestSuite) TestProductCreateAndGet() {
	product, err := s.ProductService.Create(s.Ctx, &service.CreateProductInput{
		Title:         "Keyboard",
		Description:   "Mechanical, azerty layout",
		Price:         80,
		StockQuantity: 15,
		Category:      "electronics",
	}, nil)
	s.Require().NoError(err)
	s.Require().NotZero(product.ID)

	got, err := s.ProductService.GetByID(s.Ctx, product.ID)
	s.Require().NoError(err)
	s.Require().Equal("Keyboard", got.Title)
	s.Require().EqualValues(15, got.StockQuantity)
}

func (s *IntegrationTestSuite) TestProductList_SearchAndPagination() {
	s.seedProduct("Gaming Laptop", 2000, 5)
	s.seedProduct("Office Laptop", 900, 8)
	s.seedProduct("Mouse", 25, 40)

	page, err := s.ProductService.List(s.Ctx, 10, 0, "laptop")
	s.Require().NoError(err)
	s.Require().Len(page.Products, 2)
	s.Require().EqualValues(2, page.TotalCount)

	page, err = s.ProductService.List(s.Ctx, 1, 0, "")
	s.Require().NoError(err)
	s.Require().Len(page.Products, 1)
	s.Require().EqualValues(3, page.TotalCount)
}

func (s *IntegrationTestSuite) TestProductUpdate_PartialFields() {
	product := s.seedProduct("Laptop", 1500, 10)

	newPrice := 1400.0
	newStock := int64(12)
	updated, err := s.ProductService.Update(s.Ctx, product.ID, &domain.UpdateProductInput{
		Price:         &newPrice,
		StockQuantity: &newStock,
	}, nil)
	s.Require().NoError(err)

	s.Require().Equal("Laptop", updated.Title)
	s.Require().InDelta(1400, updated.Price, 0.001)
	s.Require().EqualValues(12, updated.StockQuantity)
}

func (s *IntegrationTestSuite) TestProductDelete_SoftDelete() {
	product := s.seedProduct("Laptop", 1500, 10)

	s.Require().NoError(s.ProductService.Delete(s.Ctx, product.ID))

	_, err := s.ProductService.GetByID(s.Ctx, product.ID)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)

	// row survives for purchase line history
	var count int64
	err = s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM products WHERE id = $1`, product.ID).
		Scan(&count)
	s.Require().NoError(err)
	s.Require().EqualValues(1, count)

	err = s.ProductService.Delete(s.Ctx, product.ID)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestProductDiscount_Range() {
	product := s.seedProduct("Laptop", 1500, 10)

	updated, err := s.ProductService.UpdateDiscount(s.Ctx, product.ID, 35)
	s.Require().NoError(err)
	s.Require().InDelta(35, updated.DiscountPercent, 0.001)

	_, err = s.ProductService.UpdateDiscount(s.Ctx, 424242, 10)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestProductCategories_Distinct() {
	s.seedProduct("Laptop", 1500, 10)
	s.seedProduct("Mouse", 25, 40)

	query := `
		INSERT INTO products (title, description, price, stock_quantity, category)
		VALUES ('Desk', '', 120, 4, 'furniture')
	`
	_, err := s.DbPool.Exec(s.Ctx, query)
	s.Require().NoError(err)

	categories, err := s.ProductService.Categories(s.Ctx)
	s.Require().NoError(err)
	s.Require().Equal([]string{"electronics", "furniture"}, categories)
}
