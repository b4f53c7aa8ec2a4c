// Package memory implementa los repositorios en memoria. Se usa en desarrollo cuando no hay
// DATABASE_URL configurado y como backend de los tests de servicios.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// Store datos en memoria. Las transacciones se serializan con txMu y se revierten
// restaurando una copia del estado tomada al iniciar.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data state

	products  *ProductRepo
	customers *CustomerRepo
	sales     *SaleRepo
	users     *UserRepo
	roles     *RoleRepo
}

type state struct {
	products  map[string]entity.Product // por ID
	customers map[string]entity.Customer
	sales     map[string]entity.Sale
	users     map[string]entity.User
	roles     map[string]entity.Role
}

func newState() state {
	return state{
		products:  map[string]entity.Product{},
		customers: map[string]entity.Customer{},
		sales:     map[string]entity.Sale{},
		users:     map[string]entity.User{},
		roles:     map[string]entity.Role{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.users {
		v.Roles = append([]entity.Role(nil), v.Roles...)
		c.users[k] = v
	}
	for k, v := range s.roles {
		c.roles[k] = v
	}
	return c
}

// New crea un store vacío.
func New() *Store {
	s := &Store{data: newState()}
	s.products = &ProductRepo{s: s}
	s.customers = &CustomerRepo{s: s}
	s.sales = &SaleRepo{s: s}
	s.users = &UserRepo{s: s}
	s.roles = &RoleRepo{s: s}
	return s
}

func (s *Store) Products() *ProductRepo   { return s.products }
func (s *Store) Customers() *CustomerRepo { return s.customers }
func (s *Store) Sales() *SaleRepo         { return s.sales }
func (s *Store) Users() *UserRepo         { return s.users }
func (s *Store) Roles() *RoleRepo         { return s.roles }

// Run ejecuta fn como una transacción: si devuelve error el estado vuelve al de antes de fn.
// Las escrituras hechas fuera de Run durante una transacción también se revierten en ese caso.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s.products, s.sales, s.customers); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// contains búsqueda por subcadena sin distinguir mayúsculas. Un Caser no se comparte entre goroutines.
func contains(term string, fields ...string) bool {
	folder := cases.Fold()
	t := folder.String(term)
	for _, f := range fields {
		if strings.Contains(folder.String(f), t) {
			return true
		}
	}
	return false
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func sortNewestFirst[T any](list []T, created func(T) int64, id func(T) string) {
	sort.Slice(list, func(i, j int) bool {
		ci, cj := created(list[i]), created(list[j])
		if ci != cj {
			return ci > cj
		}
		return id(list[i]) > id(list[j])
	})
}
