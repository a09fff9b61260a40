// seed carga productos o clientes desde un CSV usando los mismos casos de uso que el API.
//
// Uso: go run ./cmd/seed <products|customers> <archivo.csv> [utf-8|windows-1251]
// Usa la configuración de la app (DATABASE_URL / DB_*). Los productos repetidos se omiten.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/deyirman-ledger/internal/application/engine"
	"github.com/jhoicas/deyirman-ledger/internal/domain"
	"github.com/jhoicas/deyirman-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/deyirman-ledger/pkg/config"
	"github.com/jhoicas/deyirman-ledger/pkg/logger"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "uso: seed <products|customers> <archivo.csv> [utf-8|windows-1251]")
		os.Exit(2)
	}
	kind, path := os.Args[1], os.Args[2]
	encoding := encodingUTF8
	if len(os.Args) > 3 {
		encoding = os.Args[3]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("abrir CSV")
	}
	defer f.Close()
	r, err := decodeReader(f, encoding)
	if err != nil {
		log.Fatal().Err(err).Msg("codificación")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if cfg.DB.AutoMigrate {
		if _, err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	e := engine.New(postgres.NewTxRunner(pool), postgres.NewRepositorySet(pool), engine.Options{
		SequenceMaxRetries: cfg.Ledger.SequenceMaxRetries,
	}, log)

	var created, skipped int
	switch kind {
	case "products":
		rows, err := readProducts(r)
		if err != nil {
			log.Fatal().Err(err).Msg("leer productos")
		}
		for _, in := range rows {
			if _, err := e.Products.Create(ctx, in); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					skipped++
					continue
				}
				log.Fatal().Err(err).Str("name", in.Name).Msg("crear producto")
			}
			created++
		}
	case "customers":
		rows, err := readCustomers(r)
		if err != nil {
			log.Fatal().Err(err).Msg("leer clientes")
		}
		for _, in := range rows {
			if _, err := e.Customers.Create(ctx, in); err != nil {
				log.Fatal().Err(err).Str("name", in.Name).Msg("crear cliente")
			}
			created++
		}
	default:
		fmt.Fprintf(os.Stderr, "tipo desconocido: %s (products | customers)\n", kind)
		os.Exit(2)
	}
	log.Info().Str("kind", kind).Int("created", created).Int("skipped", skipped).Msg("carga terminada")
}
