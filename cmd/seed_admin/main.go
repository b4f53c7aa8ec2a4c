// seed_admin crea los roles por defecto y un usuario administrador en PostgreSQL.
//
// Uso: go run ./cmd/seed_admin -email admin@tienda.com -password secreto123 [-name "Ana"]
// Sin flags toma SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD y SEED_ADMIN_NAME de la configuración.
// Si el email ya existe no hace nada.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/ventas-api/internal/application/usecase"
	"github.com/jhoicas/ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ventas-api/pkg/config"
	"github.com/jhoicas/ventas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	name := flag.String("name", cfg.Seed.AdminName, "nombre del administrador")
	email := flag.String("email", cfg.Seed.AdminEmail, "email del administrador")
	password := flag.String("password", cfg.Seed.AdminPassword, "password (mínimo 8 caracteres)")
	flag.Parse()

	if !cfg.DB.Enabled() {
		fmt.Fprintln(os.Stderr, "Se requiere DATABASE_URL o DB_HOST")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Aplicar esquema: %v\n", err)
		os.Exit(1)
	}

	userUC := usecase.NewUserUseCase(postgres.NewUserRepository(pool), postgres.NewRoleRepository(pool), log.Component("seed"))
	if err := userUC.EnsureDefaultRoles(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Sembrar roles: %v\n", err)
		os.Exit(1)
	}
	created, err := userUC.EnsureAdmin(ctx, *name, *email, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear administrador: %v\n", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("Administrador %s creado\n", *email)
		return
	}
	fmt.Printf("Ya existe un usuario con email %s; sin cambios\n", *email)
}
