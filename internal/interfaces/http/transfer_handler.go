package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/bulkimport"
	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/export"
	"github.com/jhoicas/ventas-api/internal/domain"
)

// TransferHandler carga masiva (upload) y descarga (download) de productos, clientes y ventas.
type TransferHandler struct {
	imports *bulkimport.Service
	exports *export.Service
	log     zerolog.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(imports *bulkimport.Service, exports *export.Service, log zerolog.Logger) *TransferHandler {
	return &TransferHandler{imports: imports, exports: exports, log: log}
}

// ── Upload ────────────────────────────────────────────────────────────────────

// UploadProducts godoc
// @Summary      Carga masiva de productos (CSV o JSON)
// @Tags         products
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file    formData  file    true   "Archivo .csv o .json"
// @Param        format  query     string  false  "csv | json (por defecto según extensión)"
// @Success      200  {object}  dto.ImportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/products/upload [post]
func (h *TransferHandler) UploadProducts(c *fiber.Ctx) error {
	return h.upload(c, bulkimport.TargetProducts)
}

// UploadSales godoc
// @Summary      Carga masiva de ventas (CSV o JSON)
// @Tags         sales
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file    formData  file    true   "Archivo .csv o .json"
// @Param        format  query     string  false  "csv | json"
// @Success      200  {object}  dto.ImportResponse
// @Failure      409  {object}  dto.ImportResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/sales/upload [post]
func (h *TransferHandler) UploadSales(c *fiber.Ctx) error {
	return h.upload(c, bulkimport.TargetSales)
}

func (h *TransferHandler) upload(c *fiber.Ctx, target bulkimport.Target) error {
	format, data, err := uploadedFile(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.imports.Import(c.UserContext(), GetPrincipal(c), bulkimport.Request{
		Target: target,
		Format: format,
		Data:   data,
	})
	var rowErr *domain.RowError
	if err != nil && !errors.As(err, &rowErr) {
		return writeError(c, h.log, err)
	}

	out := dto.ImportResponse{
		Target:  string(target),
		Format:  string(format),
		Total:   res.Total,
		Applied: res.Applied,
		Message: fmt.Sprintf("%d de %d filas aplicadas", res.Applied, res.Total),
	}
	if rowErr != nil {
		status, body := errorBody(c, h.log, rowErr)
		out.Error = &body
		out.Message = fmt.Sprintf("importación detenida en la fila %d: %d de %d filas aplicadas", rowErr.Row, res.Applied, res.Total)
		return c.Status(status).JSON(out)
	}
	return c.JSON(out)
}

// uploadedFile acepta multipart (campo "file") o el cuerpo crudo. El formato sale de ?format=,
// de la extensión del archivo o del Content-Type, en ese orden.
func uploadedFile(c *fiber.Ctx) (bulkimport.Format, io.Reader, error) {
	if q := c.Query("format"); q != "" {
		f, err := bulkimport.ParseFormat(q)
		if err != nil {
			return "", nil, err
		}
		r, _, err := uploadBody(c)
		return f, r, err
	}
	r, filename, err := uploadBody(c)
	if err != nil {
		return "", nil, err
	}
	if filename != "" {
		f, err := bulkimport.FormatFromFilename(filename)
		return f, r, err
	}
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	switch {
	case strings.Contains(ct, "csv"):
		return bulkimport.FormatCSV, r, nil
	case strings.Contains(ct, "json"):
		return bulkimport.FormatJSON, r, nil
	}
	return "", nil, fmt.Errorf("%w: indique ?format=csv|json", domain.ErrInvalidFormat)
}

func uploadBody(c *fiber.Ctx) (io.Reader, string, error) {
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, "", domain.NewValidation("file", "archivo requerido en el campo file")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), fh.Filename, nil
	}
	body := c.Body()
	if len(body) == 0 {
		return nil, "", domain.NewValidation("file", "cuerpo vacío")
	}
	// c.Body() se reutiliza al terminar la petición; se copia.
	return bytes.NewReader(append([]byte(nil), body...)), "", nil
}

// ── Download ──────────────────────────────────────────────────────────────────

// DownloadProducts godoc
// @Summary      Descargar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Produce      text/csv
// @Param        format  query  string  true  "csv | json"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/download [get]
func (h *TransferHandler) DownloadProducts(c *fiber.Ctx) error {
	return h.download(c, export.KindProducts)
}

// DownloadCustomers descarga clientes. GET /api/customers/download?format=csv|json
func (h *TransferHandler) DownloadCustomers(c *fiber.Ctx) error {
	return h.download(c, export.KindCustomers)
}

// DownloadSales descarga ventas. GET /api/sales/download?format=csv|json
func (h *TransferHandler) DownloadSales(c *fiber.Ctx) error {
	return h.download(c, export.KindSales)
}

func (h *TransferHandler) download(c *fiber.Ctx, kind export.Kind) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	e, err := h.exports.Export(c.UserContext(), kind)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, e); err != nil {
		return writeError(c, h.log, err)
	}
	filename := fmt.Sprintf("%s_%s.%s", kind, time.Now().UTC().Format("20060102_150405"), format)
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
