package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	"github.com/jhoicas/ventas-api/pkg/metrics"
)

// MergeOutcome resultado de fusionar un contacto con el registro de clientes.
type MergeOutcome string

const (
	MergeCreated MergeOutcome = "created"
	MergeUpdated MergeOutcome = "updated"
)

// MergeResult cliente resultante de la fusión.
type MergeResult struct {
	Customer *entity.Customer
	Outcome  MergeOutcome
}

// CustomerMergeService mantiene un único cliente por email y cuenta sus compras.
type CustomerMergeService struct {
	tx  ports.TxRunner
	log zerolog.Logger
	now func() time.Time
}

// NewCustomerMergeService construye el servicio.
func NewCustomerMergeService(tx ports.TxRunner, log zerolog.Logger) *CustomerMergeService {
	return &CustomerMergeService{tx: tx, log: log, now: time.Now}
}

// Merge fusiona el contacto en su propia transacción.
func (s *CustomerMergeService) Merge(ctx context.Context, contact entity.Contact) (*MergeResult, error) {
	var res *MergeResult
	err := s.tx.Run(ctx, func(_ repository.ProductRepository, _ repository.SaleRepository, customerRepo repository.CustomerRepository) error {
		var err error
		res, err = s.MergeInTx(ctx, customerRepo, contact, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// MergeInTx fusiona el contacto usando un repositorio atado a una transacción en curso.
// Si el email ya existe incrementa PaymentFrequency en 1; si no, crea el cliente con 1.
// Nombre y teléfono de un cliente existente no se modifican.
func (s *CustomerMergeService) MergeInTx(ctx context.Context, customerRepo repository.CustomerRepository, contact entity.Contact, now time.Time) (*MergeResult, error) {
	contact.Email = strings.TrimSpace(contact.Email)
	if contact.Email == "" {
		return nil, domain.NewValidation("customer_email", "requerido")
	}
	candidate := &entity.Customer{
		ID:               uuid.New().String(),
		Name:             strings.TrimSpace(contact.Name),
		Email:            contact.Email,
		Phone:            strings.TrimSpace(contact.Phone),
		PaymentFrequency: 1,
		CreatedAt:        now,
	}
	merged, created, err := customerRepo.MergeByEmail(ctx, candidate)
	if err != nil {
		s.log.Error().Err(err).Str("email", contact.Email).Msg("fusión de cliente fallida")
		return nil, fmt.Errorf("%w: %w", domain.ErrMergeFailed, err)
	}
	outcome := MergeUpdated
	if created {
		outcome = MergeCreated
	}
	metrics.CustomerMergesTotal.WithLabelValues(string(outcome)).Inc()
	return &MergeResult{Customer: merged, Outcome: outcome}, nil
}
