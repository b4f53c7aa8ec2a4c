package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var seller = ports.Principal{UserID: "u-1", Name: "Vendedora", Roles: []string{entity.RoleEditor}}

func newService(tx ports.TxRunner, store *memory.Store) *sales.SaleService {
	log := zerolog.Nop()
	merge := sales.NewCustomerMergeService(tx, log)
	return sales.NewSaleService(tx, store.Sales(), merge, log)
}

func seedProduct(t *testing.T, store *memory.Store, name string, qty int) *entity.Product {
	t.Helper()
	p := &entity.Product{ID: "p-" + name, Name: name, Price: 1500, Quantity: qty, CreatedAt: time.Now()}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func stockOf(t *testing.T, store *memory.Store, name string) int {
	t.Helper()
	p, err := store.Products().GetByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, p, "el producto %q debe existir", name)
	return p.Quantity
}

func widgetSale(qty int, email string) sales.RecordSaleInput {
	return sales.RecordSaleInput{
		ProductName: "Widget",
		Quantity:    qty,
		Customer:    entity.Contact{Name: "Ana", Email: email, Phone: "3001234567"},
	}
}

func counts(t *testing.T, store *memory.Store) (salesN, customersN int) {
	t.Helper()
	ctx := context.Background()
	salesN, err := store.Sales().Count(ctx)
	require.NoError(t, err)
	customersN, err = store.Customers().Count(ctx)
	require.NoError(t, err)
	return salesN, customersN
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordSale
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordSale_DescuentaStockYCreaCliente(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 5)

	sale, err := svc.RecordSale(context.Background(), seller, widgetSale(3, "a@x.com"))
	require.NoError(t, err)

	assert.Equal(t, "Widget", sale.ProductName)
	assert.Equal(t, 3, sale.Quantity)
	assert.Equal(t, "Vendedora", sale.UserName, "sin user_name se usa el usuario autenticado")
	assert.Equal(t, 2, stockOf(t, store, "Widget"))

	salesN, customersN := counts(t, store)
	assert.Equal(t, 1, salesN)
	assert.Equal(t, 1, customersN)

	c, err := store.Customers().GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 1, c.PaymentFrequency)
}

func TestRecordSale_StockInsuficienteNoDejaEfectos(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 5)

	_, err := svc.RecordSale(context.Background(), seller, widgetSale(10, "a@x.com"))
	require.Error(t, err)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 10, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 5, stockOf(t, store, "Widget"))
	salesN, customersN := counts(t, store)
	assert.Zero(t, salesN)
	assert.Zero(t, customersN)
}

func TestRecordSale_VenderTodoElStockDejaCero(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 4)

	_, err := svc.RecordSale(context.Background(), seller, widgetSale(4, "a@x.com"))
	require.NoError(t, err)
	assert.Zero(t, stockOf(t, store, "Widget"))

	_, err = svc.RecordSale(context.Background(), seller, widgetSale(1, "a@x.com"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestRecordSale_ProductoInexistente(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)

	_, err := svc.RecordSale(context.Background(), seller, widgetSale(1, "a@x.com"))
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordSale_ValidacionNombraElCampo(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 5)

	cases := map[string]sales.RecordSaleInput{
		"product_quantity": widgetSale(0, "a@x.com"),
		"customer_email":   widgetSale(1, "  "),
		"product_name":     {Quantity: 1, Customer: entity.Contact{Name: "Ana", Email: "a@x.com"}},
		"customer_name":    {ProductName: "Widget", Quantity: 1, Customer: entity.Contact{Email: "a@x.com"}},
		"customer_phone":   {ProductName: "Widget", Quantity: 1, Customer: entity.Contact{Name: "Ana", Email: "a@x.com", Phone: " "}},
	}
	for field, in := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := svc.RecordSale(context.Background(), seller, in)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "se espera ValidationError, llegó %v", err)
			assert.Equal(t, field, ve.Field)
		})
	}
	assert.Equal(t, 5, stockOf(t, store, "Widget"))
}

func TestRecordSale_MismoEmailIncrementaFrecuencia(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 10)

	for i := 0; i < 3; i++ {
		_, err := svc.RecordSale(context.Background(), seller, widgetSale(1, "a@x.com"))
		require.NoError(t, err)
	}

	_, customersN := counts(t, store)
	assert.Equal(t, 1, customersN)
	c, err := store.Customers().GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 3, c.PaymentFrequency)
}

func TestRecordSale_ConcurrenteNuncaDejaStockNegativo(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordSale(context.Background(), seller, widgetSale(1, "a@x.com")); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Zero(t, stockOf(t, store, "Widget"))
	salesN, _ := counts(t, store)
	assert.Equal(t, 10, salesN)
}

// brokenCustomers falla en la fusión para verificar el rollback de la venta.
type brokenCustomers struct {
	repository.CustomerRepository
}

func (brokenCustomers) MergeByEmail(context.Context, *entity.Customer) (*entity.Customer, bool, error) {
	return nil, false, domain.NewPersistence("upsert customer", errors.New("conexión perdida"))
}

type brokenMergeTx struct {
	store *memory.Store
}

func (b brokenMergeTx) Run(ctx context.Context, fn func(repository.ProductRepository, repository.SaleRepository, repository.CustomerRepository) error) error {
	return b.store.Run(ctx, func(p repository.ProductRepository, s repository.SaleRepository, c repository.CustomerRepository) error {
		return fn(p, s, brokenCustomers{c})
	})
}

func TestRecordSale_FallaDeFusionRevierteLaVenta(t *testing.T) {
	store := memory.New()
	svc := newService(brokenMergeTx{store}, store)
	seedProduct(t, store, "Widget", 5)

	_, err := svc.RecordSale(context.Background(), seller, widgetSale(2, "a@x.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMergeFailed)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	assert.Equal(t, 5, stockOf(t, store, "Widget"))
	salesN, customersN := counts(t, store)
	assert.Zero(t, salesN)
	assert.Zero(t, customersN)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateSale / DeleteSale
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateSale_MismoProductoAjustaDiferencia(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 5)
	sale, err := svc.RecordSale(context.Background(), seller, widgetSale(3, "a@x.com"))
	require.NoError(t, err)

	updated, err := svc.UpdateSale(context.Background(), seller, sale.ID, sales.UpdateSaleInput{
		ProductName: "Widget", Quantity: 5, CustomerName: "Ana María",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)
	assert.Equal(t, "Ana María", updated.CustomerName)
	assert.Equal(t, "a@x.com", updated.CustomerEmail, "el email de la venta no cambia")
	assert.Zero(t, stockOf(t, store, "Widget"))
}

func TestUpdateSale_CambioDeProductoDevuelveStockAlOriginal(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 5)
	seedProduct(t, store, "Gadget", 4)
	sale, err := svc.RecordSale(context.Background(), seller, widgetSale(3, "a@x.com"))
	require.NoError(t, err)

	_, err = svc.UpdateSale(context.Background(), seller, sale.ID, sales.UpdateSaleInput{
		ProductName: "Gadget", Quantity: 4, CustomerName: "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, stockOf(t, store, "Widget"))
	assert.Zero(t, stockOf(t, store, "Gadget"))
}

func TestUpdateSale_StockInsuficienteNoCambiaNada(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 5)
	seedProduct(t, store, "Gadget", 1)
	sale, err := svc.RecordSale(context.Background(), seller, widgetSale(3, "a@x.com"))
	require.NoError(t, err)

	_, err = svc.UpdateSale(context.Background(), seller, sale.ID, sales.UpdateSaleInput{
		ProductName: "Gadget", Quantity: 2, CustomerName: "Ana",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, stockOf(t, store, "Widget"), "el reintegro al original también se revierte")
	assert.Equal(t, 1, stockOf(t, store, "Gadget"))

	got, err := svc.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.ProductName)
	assert.Equal(t, 3, got.Quantity)
}

func TestUpdateSale_VentaInexistente(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 5)

	_, err := svc.UpdateSale(context.Background(), seller, "no-existe", sales.UpdateSaleInput{
		ProductName: "Widget", Quantity: 1, CustomerName: "Ana",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteSale_PorDefectoNoReintegraStock(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 5)
	sale, err := svc.RecordSale(context.Background(), seller, widgetSale(3, "a@x.com"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(context.Background(), seller, sale.ID, sales.DeleteSaleOptions{}))
	assert.Equal(t, 2, stockOf(t, store, "Widget"))

	_, err = svc.GetSale(context.Background(), sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteSale_ConRestockDevuelveCantidad(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 5)
	sale, err := svc.RecordSale(context.Background(), seller, widgetSale(3, "a@x.com"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(context.Background(), seller, sale.ID, sales.DeleteSaleOptions{Restock: true}))
	assert.Equal(t, 5, stockOf(t, store, "Widget"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestListAndSearchSales(t *testing.T) {
	store := memory.New()
	svc := newService(store, store)
	seedProduct(t, store, "Widget", 10)
	seedProduct(t, store, "Gadget", 10)
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, seller, widgetSale(1, "a@x.com"))
	require.NoError(t, err)
	_, err = svc.RecordSale(ctx, seller, sales.RecordSaleInput{
		ProductName: "Gadget", Quantity: 2,
		Customer: entity.Contact{Name: "Beto", Email: "b@x.com", Phone: "1"},
	})
	require.NoError(t, err)

	list, total, err := svc.ListSales(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 1)

	found, err := svc.SearchSales(ctx, "gadg", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Gadget", found[0].ProductName)
}
