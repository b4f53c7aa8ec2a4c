package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/application/analytics"
	"github.com/jhoicas/ventas-api/internal/application/auth"
	"github.com/jhoicas/ventas-api/internal/application/bulkimport"
	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/export"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/application/usecase"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/ventas-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el almacenamiento en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	app   *fiber.App
	store *memory.Store
	users *usecase.UserUseCase
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zerolog.Nop()
	store := memory.New()

	merge := sales.NewCustomerMergeService(store, log)
	saleSvc := sales.NewSaleService(store, store.Sales(), merge, log)
	productUC := usecase.NewProductUseCase(store.Products(), store, log)
	userUC := usecase.NewUserUseCase(store.Users(), store.Roles(), log)
	require.NoError(t, userUC.EnsureDefaultRoles(context.Background()))

	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 5, Issuer: testIssuer}, log)
	dashboard := analytics.NewDashboardUseCase(analytics.Counters{
		Sales: store.Sales(), Customers: store.Customers(), Products: store.Products(), Users: store.Users(),
	}, nil, 0, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthHandler:      apphttp.NewAuthHandler(authUC, log),
		DashboardHandler: apphttp.NewDashboardHandler(dashboard, log),
		ProductHandler:   apphttp.NewProductHandler(productUC, log),
		CustomerHandler:  apphttp.NewCustomerHandler(usecase.NewCustomerUseCase(store.Customers()), log),
		SaleHandler:      apphttp.NewSaleHandler(saleSvc, store.Products(), pdf.NewMarotoReceiptGenerator("Tienda"), log),
		UserHandler:      apphttp.NewUserHandler(userUC, log),
		TransferHandler: apphttp.NewTransferHandler(
			bulkimport.NewService(productUC, saleSvc, log),
			export.NewService(store.Products(), store.Customers(), store.Sales()),
			log,
		),
		JWTSecret: testJWTSecret,
		Sessions:  userUC,
		Logger:    log,
	})
	return &testAPI{app: app, store: store, users: userUC}
}

// login crea un usuario con los roles dados y devuelve su header Authorization.
func (a *testAPI) login(t *testing.T, email string, roles ...string) string {
	t.Helper()
	_, err := a.users.Create(context.Background(), dto.CreateUserRequest{
		Name: "Usuario " + email, Email: email, Password: "clave1234", Roles: roles,
	})
	require.NoError(t, err)

	resp := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "clave1234"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	return "Bearer " + out.Token
}

func (a *testAPI) do(t *testing.T, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a *testAPI) upload(t *testing.T, path, authHeader, filename, content string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, authHeader)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createWidget(t *testing.T, a *testAPI, authHeader string, qty int) dto.ProductResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/products", authHeader, dto.CreateProductRequest{Name: "Widget", Price: 1500, Quantity: qty})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	return p
}

func saleBody(qty int) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		ProductName:   "Widget",
		Quantity:      qty,
		CustomerName:  "Ana",
		CustomerEmail: "a@x.com",
		CustomerPhone: "3001234567",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesInvalidas(t *testing.T) {
	a := newTestAPI(t)
	a.login(t, "admin@x.com", "admin")

	resp := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@x.com", "password": "mala"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "no-es-email"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVenta_FlujoCompleto(t *testing.T) {
	a := newTestAPI(t)
	editor := a.login(t, "editor@x.com", "editor")
	createWidget(t, a, editor, 5)

	resp := a.do(t, http.MethodPost, "/api/sales", editor, saleBody(3))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale dto.SaleResponse
	decode(t, resp, &sale)
	assert.Equal(t, "Usuario editor@x.com", sale.UserName)

	resp = a.do(t, http.MethodPost, "/api/sales", editor, saleBody(10))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	resp = a.do(t, http.MethodGet, "/api/dashboard", editor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats dto.DashboardStats
	decode(t, resp, &stats)
	assert.Equal(t, dto.DashboardStats{SaleCount: 1, CustomerCount: 1, ProductCount: 1, UserCount: 1}, stats)

	resp = a.do(t, http.MethodGet, "/api/customers/search?q=a@x.com", editor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var customers []dto.CustomerResponse
	decode(t, resp, &customers)
	require.Len(t, customers, 1)
	assert.Equal(t, 1, customers[0].PaymentFrequency)

	resp = a.do(t, http.MethodGet, "/api/customers/by-email?email=a@x.com", editor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var customer dto.CustomerResponse
	decode(t, resp, &customer)
	assert.Equal(t, customers[0].ID, customer.ID)

	resp = a.do(t, http.MethodGet, "/api/customers/by-email?email=nadie@x.com", editor, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/sales/"+sale.ID+"/receipt", editor, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	pdfBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))

	resp = a.do(t, http.MethodDelete, "/api/sales/"+sale.ID+"?restock=true", editor, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	p, err := a.store.Products().GetByName(context.Background(), "Widget")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Quantity)
}

func TestVenta_ValidacionDelCuerpo(t *testing.T) {
	a := newTestAPI(t)
	editor := a.login(t, "editor@x.com", "editor")
	createWidget(t, a, editor, 5)

	body := saleBody(1)
	body.CustomerEmail = "sin-arroba"
	resp := a.do(t, http.MethodPost, "/api/sales", editor, body)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errBody.Message, "customer_email")

	// Sin teléfono la venta no podría reimportarse desde una exportación.
	body = saleBody(1)
	body.CustomerPhone = ""
	resp = a.do(t, http.MethodPost, "/api/sales", editor, body)
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errBody.Message, "customer_phone")

	resp = a.do(t, http.MethodGet, "/api/sales/no-existe", editor, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSesion_RevocadaTrasCambioDePassword(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, "admin@x.com", "admin")
	editor := a.login(t, "editor@x.com", "editor")

	resp := a.do(t, http.MethodGet, "/api/products", editor, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list, err := a.users.Search(context.Background(), "editor@x.com", 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	resp = a.do(t, http.MethodPut, "/api/users/"+list[0].ID, admin, map[string]string{"password": "otra-clave-9"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/products", editor, nil)
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "SESSION_REVOKED", errBody.Code)
}

func TestIDsMalformados_Retornan404(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, "admin@x.com", "admin")

	for _, path := range []string{
		"/api/sales/abc",
		"/api/sales/abc/receipt",
		"/api/products/abc",
		"/api/customers/abc",
		"/api/users/abc",
	} {
		resp := a.do(t, http.MethodGet, path, admin, nil)
		var errBody dto.ErrorResponse
		decode(t, resp, &errBody)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.NotEqual(t, "INTERNAL", errBody.Code, path)
	}
	resp := a.do(t, http.MethodDelete, "/api/products/abc", admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPermisos_PorRol(t *testing.T) {
	a := newTestAPI(t)
	supervisor := a.login(t, "sup@x.com", "supervisor")
	editor := a.login(t, "editor@x.com", "editor")

	cases := []struct {
		name   string
		method string
		path   string
		auth   string
		body   any
		want   int
	}{
		{"supervisor lee productos", http.MethodGet, "/api/products", supervisor, nil, http.StatusOK},
		{"supervisor no crea productos", http.MethodPost, "/api/products", supervisor, dto.CreateProductRequest{Name: "X", Quantity: 1}, http.StatusForbidden},
		{"supervisor lista usuarios", http.MethodGet, "/api/users", supervisor, nil, http.StatusOK},
		{"editor no lista usuarios", http.MethodGet, "/api/users", editor, nil, http.StatusForbidden},
		{"editor no descarga", http.MethodGet, "/api/sales/download?format=csv", editor, nil, http.StatusForbidden},
		{"supervisor lista roles", http.MethodGet, "/api/roles", supervisor, nil, http.StatusOK},
		{"sin token", http.MethodGet, "/api/products", "", nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := a.do(t, tc.method, tc.path, tc.auth, tc.body)
			resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestDescarga_FormatoInvalido(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, "admin@x.com", "admin")

	for _, path := range []string{"/api/products/download?format=xml", "/api/products/download"} {
		resp := a.do(t, http.MethodGet, path, admin, nil)
		var errBody dto.ErrorResponse
		decode(t, resp, &errBody)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.Equal(t, "INVALID_FORMAT", errBody.Code)
	}
}

func TestDescarga_CSV(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, "admin@x.com", "admin")
	createWidget(t, a, admin, 5)

	resp := a.do(t, http.MethodGet, "/api/products/download?format=csv", admin, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,product_name,price,product_quantity,created_at", lines[0])
}

func TestCarga_ProductosYVentas(t *testing.T) {
	a := newTestAPI(t)
	editor := a.login(t, "editor@x.com", "editor")

	resp := a.upload(t, "/api/products/upload", editor, "productos.csv",
		"product_name,price,product_quantity\nWidget,1500,4\n")
	var res dto.ImportResponse
	decode(t, resp, &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, res.Applied)

	salesJSON := `[
  {"product_name":"Widget","product_quantity":3,"customer_name":"Ana","customer_email":"a@x.com","customer_phone":"300","user_name":"Caja"},
  {"product_name":"Widget","product_quantity":3,"customer_name":"Ana","customer_email":"a@x.com","customer_phone":"300","user_name":"Caja"}
]`
	resp = a.upload(t, "/api/sales/upload", editor, "ventas.json", salesJSON)
	res = dto.ImportResponse{}
	decode(t, resp, &res)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Applied)
	require.NotNil(t, res.Error)
	assert.Equal(t, "INSUFFICIENT_STOCK", res.Error.Code)
}

func TestCarga_ErroresDeArchivo(t *testing.T) {
	a := newTestAPI(t)
	editor := a.login(t, "editor@x.com", "editor")

	resp := a.upload(t, "/api/products/upload", editor, "productos.xlsx", "x")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.upload(t, "/api/products/upload", editor, "productos.csv", "product_name,price\nWidget,1\n")
	var errBody dto.ErrorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "SCHEMA_ERROR", errBody.Code)

	resp = a.upload(t, "/api/products/upload", editor, "productos.json", `[{"product_name":`)
	errBody = dto.ErrorResponse{}
	decode(t, resp, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "PARSE_ERROR", errBody.Code)
}
