package http

import (
	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/service"
	"github.com/Belkadi-Amine23/mystore/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
	validate        *validator.Validate
	logger          *zap.Logger
}

func NewPurchaseHandler(purchaseService service.PurchaseService, validate *validator.Validate, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
		validate:        validate,
		logger:          logger,
	}
}

func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var input service.CreatePurchaseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.validate.Struct(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": utils.FormatValidationError(err),
		})
	}

	purchase, err := h.purchaseService.Create(c.UserContext(), &input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(purchase)
}

func (h *PurchaseHandler) ListPending(c *fiber.Ctx) error {
	purchases, err := h.purchaseService.ListPending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"purchases": purchases,
	})
}

type resolveRequest struct {
	Action string `json:"action" validate:"required"`
}

func (h *PurchaseHandler) Resolve(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}

	var req resolveRequest
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

	if err := h.purchaseService.Resolve(c.UserContext(), id, domain.ResolveAction(req.Action)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":     id,
		"action": req.Action,
	})
}
