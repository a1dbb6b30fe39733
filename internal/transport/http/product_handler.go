package http

import (
	"strconv"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/service"
	"github.com/Belkadi-Amine23/mystore/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService service.ProductService
	validate       *validator.Validate
	logger         *zap.Logger
}

func NewProductHandler(productService service.ProductService, validate *validator.Validate, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validate:       validate,
		logger:         logger,
	}
}

// Create accepts multipart form data so the product fields and the image
// arrive in one request.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	input := service.CreateProductInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
	}

	var err error
	if input.Price, err = strconv.ParseFloat(c.FormValue("price", "0"), 64); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "price must be a number",
		})
	}
	if input.StockQuantity, err = strconv.ParseInt(c.FormValue("stock_quantity", "0"), 10, 64); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "stock_quantity must be an integer",
		})
	}
	if input.DiscountPercent, err = strconv.ParseFloat(c.FormValue("discount_percent", "0"), 64); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "discount_percent must be a number",
		})
	}

	if err := h.validate.Struct(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": utils.FormatValidationError(err),
		})
	}

	image, err := imageFromForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid image upload",
		})
	}

	product, err := h.productService.Create(c.UserContext(), &input, image)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}

	product, err := h.productService.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(product)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 20))
	offset := int64(c.QueryInt("offset", 0))
	search := c.Query("search")

	page, err := h.productService.List(c.UserContext(), limit, offset, search)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(page)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}

	var input domain.UpdateProductInput
	image, formErr := imageFromForm(c)
	if formErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid image upload",
		})
	}

	if image != nil {
		parseOptionalFormFields(c, &input)
	} else if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	product, err := h.productService.Update(c.UserContext(), id, &input, image)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(product)
}

type discountRequest struct {
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
}

func (h *ProductHandler) UpdateDiscount(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}

	var req discountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": utils.FormatValidationError(err),
		})
	}

	product, err := h.productService.UpdateDiscount(c.UserContext(), id, req.DiscountPercent)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(product)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}

	if err := h.productService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.productService.Categories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"categories": categories,
	})
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

func badID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "id must be a positive integer",
	})
}

func imageFromForm(c *fiber.Ctx) (*service.ImageUpload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// no image attached is fine
		return nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}

	return &service.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	}, nil
}

func parseOptionalFormFields(c *fiber.Ctx, input *domain.UpdateProductInput) {
	if v := c.FormValue("title"); v != "" {
		input.Title = &v
	}
	if v := c.FormValue("description"); v != "" {
		input.Description = &v
	}
	if v := c.FormValue("category"); v != "" {
		input.Category = &v
	}
	if v := c.FormValue("price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			input.Price = &f
		}
	}
	if v := c.FormValue("stock_quantity"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			input.StockQuantity = &n
		}
	}
	if v := c.FormValue("discount_percent"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			input.DiscountPercent = &f
		}
	}
}
