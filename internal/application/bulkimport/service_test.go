package bulkimport_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/ventas-api/internal/application/bulkimport"
	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/application/usecase"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
)

var admin = ports.Principal{UserID: "u-1", Name: "Admin", Roles: []string{entity.RoleAdmin}}

type fixture struct {
	store *memory.Store
	svc   *bulkimport.Service
}

func newFixture() fixture {
	log := zerolog.Nop()
	store := memory.New()
	products := usecase.NewProductUseCase(store.Products(), store, log)
	merge := sales.NewCustomerMergeService(store, log)
	saleSvc := sales.NewSaleService(store, store.Sales(), merge, log)
	return fixture{store: store, svc: bulkimport.NewService(products, saleSvc, log)}
}

func (f fixture) run(t *testing.T, target bulkimport.Target, format bulkimport.Format, body string) (*bulkimport.Result, error) {
	t.Helper()
	return f.svc.Import(context.Background(), admin, bulkimport.Request{
		Target: target,
		Format: format,
		Data:   strings.NewReader(body),
	})
}

func (f fixture) product(t *testing.T, name string) *entity.Product {
	t.Helper()
	p, err := f.store.Products().GetByName(context.Background(), name)
	require.NoError(t, err)
	return p
}

const saleHeader = "product_name,product_quantity,customer_name,customer_email,customer_phone,user_name\n"

// ── Productos ─────────────────────────────────────────────────────────────────

func TestImportProducts_CSVCreaYAcumula(t *testing.T) {
	f := newFixture()

	res, err := f.run(t, bulkimport.TargetProducts, bulkimport.FormatCSV,
		"product_name,price,product_quantity\nWidget,1500,5\nGadget,900,2\nWidget,1700,3\n")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Applied)

	w := f.product(t, "Widget")
	require.NotNil(t, w)
	assert.Equal(t, 8, w.Quantity, "las existencias se suman")
	assert.Equal(t, int64(1700), w.Price, "el precio se sobrescribe")

	count, err := f.store.Products().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImportProducts_JSON(t *testing.T) {
	f := newFixture()

	res, err := f.run(t, bulkimport.TargetProducts, bulkimport.FormatJSON,
		`[{"product_name":"Widget","price":1500,"product_quantity":5}]`)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 5, f.product(t, "Widget").Quantity)
}

func TestImportProducts_JSONRechazaEnterosComoTexto(t *testing.T) {
	f := newFixture()

	_, err := f.run(t, bulkimport.TargetProducts, bulkimport.FormatJSON,
		`[{"product_name":"Widget","price":"1500","product_quantity":5}]`)
	var schemaErr *domain.SchemaError
	require.True(t, errors.As(err, &schemaErr), "se espera SchemaError, llegó %v", err)
	assert.Equal(t, 1, schemaErr.Row)
	assert.Equal(t, entity.ColPrice, schemaErr.Column)
	assert.Nil(t, f.product(t, "Widget"))
}

func TestImportProducts_CantidadNegativa(t *testing.T) {
	f := newFixture()

	_, err := f.run(t, bulkimport.TargetProducts, bulkimport.FormatCSV,
		"product_name,price,product_quantity\nWidget,1500,-1\n")
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestImportProducts_BOMYWindows1252(t *testing.T) {
	f := newFixture()

	csvText := "product_name,price,product_quantity\nCafé molido,1200,4\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(csvText)
	require.NoError(t, err)
	_, err = f.run(t, bulkimport.TargetProducts, bulkimport.FormatCSV, encoded)
	require.NoError(t, err)
	require.NotNil(t, f.product(t, "Café molido"))

	withBOM := "\xEF\xBB\xBFproduct_name,price,product_quantity\nTé verde,800,2\n"
	_, err = f.run(t, bulkimport.TargetProducts, bulkimport.FormatCSV, withBOM)
	require.NoError(t, err)
	require.NotNil(t, f.product(t, "Té verde"))
}

// ── Ventas ────────────────────────────────────────────────────────────────────

func TestImportSales_SeDetieneEnLaPrimeraFilaFallida(t *testing.T) {
	f := newFixture()
	_, err := f.run(t, bulkimport.TargetProducts, bulkimport.FormatCSV,
		"product_name,price,product_quantity\nWidget,1500,10\n")
	require.NoError(t, err)

	body := saleHeader +
		"Widget,2,Ana,a@x.com,300,Caja 1\n" +
		"Widget,3,Beto,b@x.com,301,Caja 1\n" +
		"Widget,50,Ana,a@x.com,300,Caja 1\n" + // sin stock
		"Widget,1,Carla,c@x.com,302,Caja 2\n"
	res, err := f.run(t, bulkimport.TargetSales, bulkimport.FormatCSV, body)
	require.Error(t, err)

	var rowErr *domain.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Row)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	require.NotNil(t, res)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Applied)

	assert.Equal(t, 5, f.product(t, "Widget").Quantity, "las filas previas quedan confirmadas")
	salesN, err := f.store.Sales().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, salesN)
	carla, err := f.store.Customers().GetByEmail(context.Background(), "c@x.com")
	require.NoError(t, err)
	assert.Nil(t, carla, "las filas posteriores no se aplican")
}

func TestImportSales_FusionaClientesPorEmail(t *testing.T) {
	f := newFixture()
	_, err := f.run(t, bulkimport.TargetProducts, bulkimport.FormatCSV,
		"product_name,price,product_quantity\nWidget,1500,10\n")
	require.NoError(t, err)

	body := `[
  {"product_name":"Widget","product_quantity":1,"customer_name":"Ana","customer_email":"a@x.com","customer_phone":"300","user_name":"Caja 1"},
  {"product_name":"Widget","product_quantity":2,"customer_name":"Ana","customer_email":"a@x.com","customer_phone":"300","user_name":"Caja 1"}
]`
	res, err := f.run(t, bulkimport.TargetSales, bulkimport.FormatJSON, body)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)

	c, err := f.store.Customers().GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 2, c.PaymentFrequency)
	assert.Equal(t, 7, f.product(t, "Widget").Quantity)
}

func TestImportSales_ColumnaFaltanteNoAplicaNada(t *testing.T) {
	f := newFixture()
	_, err := f.run(t, bulkimport.TargetProducts, bulkimport.FormatCSV,
		"product_name,price,product_quantity\nWidget,1500,10\n")
	require.NoError(t, err)

	body := "product_name,product_quantity,customer_name,customer_phone,user_name\n" +
		"Widget,1,Ana,300,Caja 1\n"
	res, err := f.run(t, bulkimport.TargetSales, bulkimport.FormatCSV, body)
	assert.Nil(t, res)

	var schemaErr *domain.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{entity.ColCustomerEmail}, schemaErr.Missing)
	assert.Equal(t, 10, f.product(t, "Widget").Quantity)
}

func TestImportSales_ColumnaNoPermitida(t *testing.T) {
	f := newFixture()

	body := `[{"product_name":"Widget","product_quantity":1,"customer_name":"Ana","customer_email":"a@x.com","customer_phone":"300","user_name":"Caja","discount":5}]`
	_, err := f.run(t, bulkimport.TargetSales, bulkimport.FormatJSON, body)

	var schemaErr *domain.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"discount"}, schemaErr.Unexpected)
}

func TestImportSales_ErrorDeTipoEnFilaPosteriorNoAplicaNada(t *testing.T) {
	f := newFixture()
	_, err := f.run(t, bulkimport.TargetProducts, bulkimport.FormatCSV,
		"product_name,price,product_quantity\nWidget,1500,10\n")
	require.NoError(t, err)

	body := saleHeader +
		"Widget,1,Ana,a@x.com,300,Caja 1\n" +
		"Widget,dos,Beto,b@x.com,301,Caja 1\n"
	_, err = f.run(t, bulkimport.TargetSales, bulkimport.FormatCSV, body)

	var schemaErr *domain.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, 2, schemaErr.Row)
	assert.Equal(t, entity.ColProductQuantity, schemaErr.Column)
	assert.Equal(t, 10, f.product(t, "Widget").Quantity)
}

// ── Errores de formato ────────────────────────────────────────────────────────

func TestImport_ArchivosMalFormados(t *testing.T) {
	cases := []struct {
		name   string
		format bulkimport.Format
		body   string
	}{
		{"csv con comillas sin cerrar", bulkimport.FormatCSV, "product_name,price,product_quantity\n\"Widget,1,1\n"},
		{"csv con columnas de más", bulkimport.FormatCSV, "product_name,price,product_quantity\nWidget,1,1,extra\n"},
		{"json truncado", bulkimport.FormatJSON, `[{"product_name":"Widget"`},
		{"json no es arreglo", bulkimport.FormatJSON, `{"product_name":"Widget"}`},
		{"json objeto anidado", bulkimport.FormatJSON, `[[1,2]]`},
		{"vacío", bulkimport.FormatCSV, "   \n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			res, err := f.run(t, bulkimport.TargetProducts, tc.format, tc.body)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, domain.ErrParse)
		})
	}
}

func TestImport_DestinoDesconocido(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Import(context.Background(), admin, bulkimport.Request{
		Target: "customers",
		Format: bulkimport.FormatCSV,
		Data:   bytes.NewReader([]byte("a\n")),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFormatFromFilename(t *testing.T) {
	f, err := bulkimport.FormatFromFilename("ventas.CSV")
	require.NoError(t, err)
	assert.Equal(t, bulkimport.FormatCSV, f)

	f, err = bulkimport.FormatFromFilename("productos.json")
	require.NoError(t, err)
	assert.Equal(t, bulkimport.FormatJSON, f)

	_, err = bulkimport.FormatFromFilename("ventas.xlsx")
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)

	_, err = bulkimport.FormatFromFilename("ventas")
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)
}
