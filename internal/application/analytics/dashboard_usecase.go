// Package analytics contiene el tablero principal: contadores de ventas, clientes,
// productos y usuarios.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/application/ports"
)

const statsCacheKey = "ventas:dashboard:stats"

// Counter cualquier repositorio capaz de contar sus filas.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Counters repositorios contados por el tablero.
type Counters struct {
	Sales     Counter
	Customers Counter
	Products  Counter
	Users     Counter
}

// DashboardUseCase calcula los contadores del tablero y los cachea durante ttl.
// Un fallo de la caché nunca impide responder: se registra y se consulta la base.
type DashboardUseCase struct {
	counters Counters
	cache    ports.StatsCache
	ttl      time.Duration
	log      zerolog.Logger
}

// NewDashboardUseCase construye el caso de uso. cache nil equivale a no cachear.
func NewDashboardUseCase(counters Counters, cache ports.StatsCache, ttl time.Duration, log zerolog.Logger) *DashboardUseCase {
	if cache == nil {
		cache = ports.NoopStatsCache{}
	}
	return &DashboardUseCase{counters: counters, cache: cache, ttl: ttl, log: log}
}

// Stats devuelve los contadores, desde la caché si están vigentes.
func (uc *DashboardUseCase) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	if cached, ok, err := uc.cache.Get(ctx, statsCacheKey); err != nil {
		uc.log.Warn().Err(err).Msg("dashboard: lectura de caché fallida")
	} else if ok {
		return cached, nil
	}

	// ── Goroutines para paralelizar los 4 conteos ─────────────────────────────
	type countResult struct {
		n   int
		err error
	}
	count := func(c Counter) <-chan countResult {
		ch := make(chan countResult, 1)
		go func() {
			n, err := c.Count(ctx)
			ch <- countResult{n, err}
		}()
		return ch
	}
	salesCh := count(uc.counters.Sales)
	customersCh := count(uc.counters.Customers)
	productsCh := count(uc.counters.Products)
	usersCh := count(uc.counters.Users)

	sales, customers, products, users := <-salesCh, <-customersCh, <-productsCh, <-usersCh
	for label, r := range map[string]countResult{
		"ventas": sales, "clientes": customers, "productos": products, "usuarios": users,
	} {
		if r.err != nil {
			return nil, fmt.Errorf("dashboard: contar %s: %w", label, r.err)
		}
	}

	stats := &dto.DashboardStats{
		SaleCount:     sales.n,
		CustomerCount: customers.n,
		ProductCount:  products.n,
		UserCount:     users.n,
	}
	if uc.ttl > 0 {
		if err := uc.cache.Set(ctx, statsCacheKey, stats, uc.ttl); err != nil {
			uc.log.Warn().Err(err).Msg("dashboard: escritura de caché fallida")
		}
	}
	return stats, nil
}
