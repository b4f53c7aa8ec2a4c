package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// SaleHandler maneja las peticiones HTTP de ventas (protegido).
type SaleHandler struct {
	svc      *sales.SaleService
	products repository.ProductRepository
	receipts ports.ReceiptGenerator
	log      zerolog.Logger
}

// NewSaleHandler construye el handler. products se usa para el precio del comprobante.
func NewSaleHandler(svc *sales.SaleService, products repository.ProductRepository, receipts ports.ReceiptGenerator, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{svc: svc, products: products, receipts: receipts, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock, guarda la venta y fusiona el cliente por email en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Datos de la venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	sale, err := h.svc.RecordSale(c.UserContext(), GetPrincipal(c), sales.RecordSaleInput{
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		Customer: entity.Contact{
			Name:  in.CustomerName,
			Email: in.CustomerEmail,
			Phone: in.CustomerPhone,
		},
		UserName: in.UserName,
		Origin:   sales.OriginAPI,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
}

// GetByID GET /api/sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.svc.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// List GET /api/sales?limit=20&offset=0
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page := pageParams(c)
	list, total, err := h.svc.ListSales(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SaleListResponse{
		Items: toSaleResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Search GET /api/sales/search?q=
func (h *SaleHandler) Search(c *fiber.Ctx) error {
	q, limit, ok := searchParams(c)
	if !ok {
		return badRequest(c, "VALIDATION", "q es requerido")
	}
	list, err := h.svc.SearchSales(c.UserContext(), q, limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSaleResponses(list))
}

// Update godoc
// @Summary      Corregir venta
// @Description  Devuelve el stock anterior y descuenta el nuevo en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleRequest  true  "Datos corregidos"
// @Success      200   {object}  dto.SaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [put]
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSaleRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	sale, err := h.svc.UpdateSale(c.UserContext(), GetPrincipal(c), c.Params("id"), sales.UpdateSaleInput{
		ProductName:  in.ProductName,
		Quantity:     in.Quantity,
		CustomerName: in.CustomerName,
		UserName:     in.UserName,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// Delete DELETE /api/sales/:id?restock=true
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	opts := sales.DeleteSaleOptions{Restock: c.QueryBool("restock", false)}
	if err := h.svc.DeleteSale(c.UserContext(), GetPrincipal(c), c.Params("id"), opts); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Receipt GET /api/sales/:id/receipt → PDF
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sale, err := h.svc.GetSale(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	product, err := h.products.GetByName(ctx, sale.ProductName)
	if err != nil {
		return writeError(c, h.log, err)
	}
	pdf, err := h.receipts.GenerateSaleReceipt(ctx, sale, product)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="venta_%s.pdf"`, sale.ID))
	return c.Send(pdf)
}
