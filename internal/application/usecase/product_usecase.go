package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Las ventas descuentan stock por su cuenta
// (sales.SaleService); aquí el stock solo se fija a mano o por importación.
type ProductUseCase struct {
	repo repository.ProductRepository
	tx   ports.TxRunner
	log  zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, tx ports.TxRunner, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{repo: repo, tx: tx, log: log}
}

// Create crea un nuevo producto. El nombre debe ser único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidation("product_name", "requerido")
	}
	if in.Quantity < 0 {
		return nil, domain.NewValidation("product_quantity", "no puede ser negativa")
	}
	if in.Price < 0 {
		return nil, domain.NewValidation("price", "no puede ser negativo")
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewConflict(domain.EntityProduct, name)
	}
	product := &entity.Product{
		ID:        uuid.New().String(),
		Name:      name,
		Price:     in.Price,
		Quantity:  in.Quantity,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound(domain.EntityProduct, id)
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre, precio o existencias. Un renombre debe seguir siendo único;
// las ventas ya registradas conservan el nombre anterior. La fila se bloquea durante la
// edición para no pisar el descuento de una venta concurrente.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var name *string
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return nil, domain.NewValidation("product_name", "requerido")
		}
		name = &n
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, domain.NewValidation("price", "no puede ser negativo")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, domain.NewValidation("product_quantity", "no puede ser negativa")
	}

	var product *entity.Product
	err := uc.tx.Run(ctx, func(productRepo repository.ProductRepository, _ repository.SaleRepository, _ repository.CustomerRepository) error {
		var err error
		product, err = productRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFound(domain.EntityProduct, id)
		}
		if name != nil && *name != product.Name {
			other, err := productRepo.GetByName(ctx, *name)
			if err != nil {
				return err
			}
			if other != nil {
				return domain.NewConflict(domain.EntityProduct, *name)
			}
			product.Name = *name
		}
		if in.Price != nil {
			product.Price = *in.Price
		}
		if in.Quantity != nil {
			product.Quantity = *in.Quantity
		}
		return productRepo.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos por nombre con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items: toProductResponses(list),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Search busca productos cuyo nombre contenga term.
func (uc *ProductUseCase) Search(ctx context.Context, term string, limit int) ([]dto.ProductResponse, error) {
	list, err := uc.repo.Search(ctx, strings.TrimSpace(term), limit)
	if err != nil {
		return nil, err
	}
	return toProductResponses(list), nil
}

// Delete elimina un producto.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NewNotFound(domain.EntityProduct, id)
	}
	return uc.repo.Delete(ctx, id)
}

// UpsertByName regla de importación: si el producto existe suma quantity a sus existencias y
// sobrescribe el precio; si no, lo crea. created indica si se creó.
func (uc *ProductUseCase) UpsertByName(ctx context.Context, name string, quantity int, price int64) (*entity.Product, bool, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, false, domain.NewValidation("product_name", "requerido")
	case quantity < 0:
		return nil, false, domain.NewValidation("product_quantity", "no puede ser negativa")
	case price < 0:
		return nil, false, domain.NewValidation("price", "no puede ser negativo")
	}

	var product *entity.Product
	var created bool
	err := uc.tx.Run(ctx, func(productRepo repository.ProductRepository, _ repository.SaleRepository, _ repository.CustomerRepository) error {
		var err error
		product, err = productRepo.GetByNameForUpdate(ctx, name)
		if err != nil {
			return err
		}
		if product == nil {
			created = true
			product = &entity.Product{
				ID:        uuid.New().String(),
				Name:      name,
				Price:     price,
				Quantity:  quantity,
				CreatedAt: time.Now(),
			}
			return productRepo.Create(ctx, product)
		}
		product.Quantity += quantity
		product.Price = price
		return productRepo.Update(ctx, product)
	})
	if err != nil {
		return nil, false, err
	}
	uc.log.Debug().Str("product", product.Name).Bool("created", created).Int("quantity", product.Quantity).Msg("producto importado")
	return product, created, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  p.Quantity,
		CreatedAt: p.CreatedAt,
	}
}

func toProductResponses(list []*entity.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out
}
