package http

import (
	"github.com/Belkadi-Amine23/mystore/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HomeHandler serves the storefront landing payload: the first catalog page,
// the category list and the pending purchase count badge.
type HomeHandler struct {
	productService  service.ProductService
	purchaseService service.PurchaseService
	logger          *zap.Logger
}

func NewHomeHandler(productService service.ProductService, purchaseService service.PurchaseService, logger *zap.Logger) *HomeHandler {
	return &HomeHandler{
		productService:  productService,
		purchaseService: purchaseService,
		logger:          logger,
	}
}

func (h *HomeHandler) Home(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 20))
	offset := int64(c.QueryInt("offset", 0))
	search := c.Query("search")

	page, err := h.productService.List(c.UserContext(), limit, offset, search)
	if err != nil {
		return respondError(c, err)
	}

	categories, err := h.productService.Categories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	pendingCount, err := h.purchaseService.CountPending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"products":      page.Products,
		"total_count":   page.TotalCount,
		"categories":    categories,
		"pending_count": pendingCount,
	})
}
