package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/usecase"
)

// CustomerHandler consultas de clientes (protegido). Los clientes se crean al registrar ventas.
type CustomerHandler struct {
	uc  *usecase.CustomerUseCase
	log zerolog.Logger
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *usecase.CustomerUseCase, log zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{uc: uc, log: log}
}

// List GET /api/customers?limit=20&offset=0
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	page := pageParams(c)
	list, err := h.uc.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByEmail GET /api/customers/by-email?email=
func (h *CustomerHandler) GetByEmail(c *fiber.Ctx) error {
	out, err := h.uc.GetByEmail(c.UserContext(), c.Query("email"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Search GET /api/customers/search?q=
func (h *CustomerHandler) Search(c *fiber.Ctx) error {
	q, limit, ok := searchParams(c)
	if !ok {
		return badRequest(c, "VALIDATION", "q es requerido")
	}
	out, err := h.uc.Search(c.UserContext(), q, limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
