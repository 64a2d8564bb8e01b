// createsuperadmin crea el superadmin inicial si la base aún no tiene ninguno.
//
// Uso: go run ./cmd/createsuperadmin -email admin@empresa.com -password 'secreto123' [-name "Admin"]
// Sin flags toma SUPERADMIN_EMAIL, SUPERADMIN_PASSWORD y SUPERADMIN_NAME del entorno.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	email := flag.String("email", cfg.Bootstrap.SuperadminEmail, "email del superadmin")
	password := flag.String("password", cfg.Bootstrap.SuperadminPassword, "password (mínimo 8 caracteres)")
	name := flag.String("name", cfg.Bootstrap.SuperadminName, "nombre visible")
	flag.Parse()

	if cfg.Storage.Driver != "postgres" {
		fmt.Fprintln(os.Stderr, "createsuperadmin requiere STORAGE_DRIVER=postgres")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conectar a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Crear esquema: %v\n", err)
		os.Exit(1)
	}

	uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.SessionConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL(),
		Issuer: cfg.Session.Issuer,
	})
	created, err := uc.EnsureSuperadmin(ctx, *email, *password, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear superadmin: %v\n", err)
		os.Exit(1)
	}
	if !created {
		fmt.Println("Ya existe un superadmin; no se creó ninguno.")
		return
	}
	fmt.Printf("Superadmin %s creado.\n", *email)
}
