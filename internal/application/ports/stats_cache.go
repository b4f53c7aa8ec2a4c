package ports

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-api/internal/application/dto"
)

// StatsCache cachea los contadores del tablero. Un miss devuelve (nil, false, nil).
type StatsCache interface {
	Get(ctx context.Context, key string) (*dto.DashboardStats, bool, error)
	Set(ctx context.Context, key string, value *dto.DashboardStats, ttl time.Duration) error
}

// NoopStatsCache no cachea nada (se usa cuando Redis no está configurado).
type NoopStatsCache struct{}

func (NoopStatsCache) Get(_ context.Context, _ string) (*dto.DashboardStats, bool, error) {
	return nil, false, nil
}

func (NoopStatsCache) Set(_ context.Context, _ string, _ *dto.DashboardStats, _ time.Duration) error {
	return nil
}
