// seed carga el catálogo de referencia (locales, productos, insumos) en PostgreSQL.
// Aplica las migraciones pendientes antes de escribir.
//
// Uso: go run ./cmd/seed [ruta/catalogo.yaml]
// Por defecto lee STORE_SEED_FILE o deploy/reference.example.yaml.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/produccion-api/internal/infrastructure/catalog"
	"github.com/jhoicas/produccion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/produccion-api/pkg/config"
	"github.com/jhoicas/produccion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "seed"})

	path := cfg.Store.SeedFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		path = "deploy/reference.example.yaml"
	}

	cat, err := catalog.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("catálogo de referencia")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	err = postgres.NewTxRunner(pool).RunReference(ctx, func(w *postgres.ReferenceWriter) error {
		return cat.Apply(ctx, w)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("carga del catálogo")
	}

	log.Info().
		Str("file", path).
		Int("locations", len(cat.Locations)).
		Int("products", len(cat.Products)).
		Int("materials", len(cat.Materials)).
		Msg("catálogo cargado")
}
