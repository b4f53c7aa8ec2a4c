package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appanalytics "github.com/jhoicas/ventas-api/internal/application/analytics"
	"github.com/jhoicas/ventas-api/internal/application/auth"
	"github.com/jhoicas/ventas-api/internal/application/bulkimport"
	"github.com/jhoicas/ventas-api/internal/application/export"
	"github.com/jhoicas/ventas-api/internal/application/ports"
	"github.com/jhoicas/ventas-api/internal/application/sales"
	"github.com/jhoicas/ventas-api/internal/application/usecase"
	"github.com/jhoicas/ventas-api/internal/domain/repository"
	infracache "github.com/jhoicas/ventas-api/internal/infrastructure/cache"
	"github.com/jhoicas/ventas-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/ventas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/ventas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ventas-api/internal/interfaces/http"
	"github.com/jhoicas/ventas-api/pkg/config"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

// storage repositorios y TxRunner del backend elegido (PostgreSQL o memoria).
type storage struct {
	tx        ports.TxRunner
	products  repository.ProductRepository
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	users     repository.UserRepository
	roles     repository.RoleRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store := openStorage(ctx, cfg, log)
	defer store.close()

	// ── Casos de uso ──────────────────────────────────────────────────────────
	mergeSvc := sales.NewCustomerMergeService(store.tx, log.Component("customer_merge"))
	saleSvc := sales.NewSaleService(store.tx, store.sales, mergeSvc, log.Component("sales"))
	productUC := usecase.NewProductUseCase(store.products, store.tx, log.Component("products"))
	customerUC := usecase.NewCustomerUseCase(store.customers)
	userUC := usecase.NewUserUseCase(store.users, store.roles, log.Component("users"))
	importSvc := bulkimport.NewService(productUC, saleSvc, log.Component("import"))
	exportSvc := export.NewService(store.products, store.customers, store.sales)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	if err := userUC.EnsureDefaultRoles(ctx); err != nil {
		log.Fatal().Err(err).Msg("sembrar roles")
	}
	// Administrador inicial solo si se configuró SEED_ADMIN_PASSWORD.
	if cfg.Seed.AdminEmail != "" && cfg.Seed.AdminPassword != "" {
		created, err := userUC.EnsureAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("sembrar administrador")
		}
		if created {
			log.Info().Str("email", cfg.Seed.AdminEmail).Msg("administrador inicial creado")
		}
	}

	// Caché de contadores: Redis si está configurado; si no responde se sigue sin caché.
	var statsCache ports.StatsCache = ports.NoopStatsCache{}
	if cfg.Redis.Addr != "" {
		rc := infracache.NewRedisStatsCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis no disponible, tablero sin caché")
			_ = rc.Close()
		} else {
			statsCache = rc
			defer rc.Close()
		}
	}
	dashboardUC := appanalytics.NewDashboardUseCase(appanalytics.Counters{
		Sales:     store.sales,
		Customers: store.customers,
		Products:  store.products,
		Users:     store.users,
	}, statsCache, time.Duration(cfg.Redis.StatsTTLSecs)*time.Second, log.Component("dashboard"))

	// PDF: comprobante de venta
	receipts := infrapdf.NewMarotoReceiptGenerator(cfg.App.Name)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.Upload.MaxBytes,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpLog := log.Component("http")
	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthHandler:      httpRouter.NewAuthHandler(authUC, httpLog),
		DashboardHandler: httpRouter.NewDashboardHandler(dashboardUC, httpLog),
		ProductHandler:   httpRouter.NewProductHandler(productUC, httpLog),
		CustomerHandler:  httpRouter.NewCustomerHandler(customerUC, httpLog),
		SaleHandler:      httpRouter.NewSaleHandler(saleSvc, store.products, receipts, httpLog),
		UserHandler:      httpRouter.NewUserHandler(userUC, httpLog),
		TransferHandler:  httpRouter.NewTransferHandler(importSvc, exportSvc, httpLog),
		JWTSecret:        cfg.JWT.Secret,
		Sessions:         userUC,
		Logger:           httpLog,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage conecta a PostgreSQL y aplica el esquema, o usa el almacenamiento en memoria
// si no hay base configurada.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage {
	if !cfg.DB.Enabled() {
		log.Warn().Msg("sin DATABASE_URL ni DB_HOST: usando almacenamiento en memoria (los datos se pierden al reiniciar)")
		m := memory.New()
		return storage{
			tx:        m,
			products:  m.Products(),
			customers: m.Customers(),
			sales:     m.Sales(),
			users:     m.Users(),
			roles:     m.Roles(),
			close:     func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("aplicar esquema")
	}
	return storage{
		tx:        postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		customers: postgres.NewCustomerRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		users:     postgres.NewUserRepository(pool),
		roles:     postgres.NewRoleRepository(pool),
		close:     pool.Close,
	}
}
