package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// CustomerUseCase consultas de clientes. Los clientes solo se crean o modifican al registrar ventas.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// GetByID obtiene un cliente.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewNotFound(domain.EntityCustomer, id)
	}
	return toCustomerResponse(c), nil
}

// GetByEmail obtiene un cliente por su email, la misma clave que usa la fusión de ventas.
func (uc *CustomerUseCase) GetByEmail(ctx context.Context, email string) (*dto.CustomerResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.NewValidation("email", "requerido")
	}
	c, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewNotFound(domain.EntityCustomer, email)
	}
	return toCustomerResponse(c), nil
}

// List lista clientes del más reciente al más antiguo.
func (uc *CustomerUseCase) List(ctx context.Context, limit, offset int) (*dto.CustomerListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CustomerListResponse{
		Items: toCustomerResponses(list),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Search busca por nombre, email o teléfono.
func (uc *CustomerUseCase) Search(ctx context.Context, term string, limit int) ([]dto.CustomerResponse, error) {
	list, err := uc.repo.Search(ctx, strings.TrimSpace(term), limit)
	if err != nil {
		return nil, err
	}
	return toCustomerResponses(list), nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		Phone:            c.Phone,
		PaymentFrequency: c.PaymentFrequency,
		CreatedAt:        c.CreatedAt,
	}
}

func toCustomerResponses(list []*entity.Customer) []dto.CustomerResponse {
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCustomerResponse(c))
	}
	return out
}
