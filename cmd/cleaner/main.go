package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"laptopprj/internal/config"
	"laptopprj/internal/dataset"
	"laptopprj/internal/db"
	"laptopprj/internal/model"
	"laptopprj/internal/observability"
	"laptopprj/internal/report"
	"laptopprj/internal/repository"
	"laptopprj/internal/storage"
)

// go run cmd/cleaner/main.go
// go run cmd/cleaner/main.go -from=db
// go run cmd/cleaner/main.go -regpu
func main() {
	cfg := config.Load()

	from := flag.String("from", "csv", "Origem dos dados brutos: 'csv' ou 'db'")
	regpu := flag.Bool("regpu", false, "Recalcula apenas a coluna gpu do dataset limpo existente")
	out := flag.String("out", filepath.Join(cfg.DataDir, "cleaned_laptops.csv"), "Dataset canônico de saída")
	training := flag.String("training", filepath.Join(cfg.DataDir, "laptops_v2_ready.csv"), "CSV de treino de saída")
	flag.Parse()

	observability.Start(cfg.MetricsPort)

	merger := dataset.NewMerger(dataset.Imputation{
		StorageDefaultGB:   cfg.StorageDefaultGB,
		DisplayDefaultInch: cfg.DisplayDefaultInch,
		RAMFallbackGB:      cfg.RAMFallbackGB,
	})

	if *regpu {
		runRegpu(merger, *out, *training)
		return
	}

	var sources [][]model.SourceRecord
	if *from == "db" {
		sources = loadFromDB(cfg)
	} else {
		sources = loadFromCSV(cfg)
	}

	ds, stats := merger.Merge(sources...)

	if err := storage.WriteDatasetCSV(*out, ds); err != nil {
		log.Fatalf("Erro ao gravar %s: %v", *out, err)
	}
	if err := storage.WriteTrainingCSV(*training, ds); err != nil {
		log.Fatalf("Erro ao gravar %s: %v", *training, err)
	}
	log.Printf("[cleaner] %d linhas gravadas em %s e %s", len(ds.Listings), *out, *training)

	if cfg.SQLitePath != "" {
		if err := storage.WriteSQLite(cfg.SQLitePath, ds); err != nil {
			log.Printf("[cleaner] Erro ao gravar snapshot SQLite: %v", err)
		} else {
			log.Printf("[cleaner] snapshot SQLite em %s", cfg.SQLitePath)
		}
	}

	if cfg.DatabaseURL != "" {
		saveListings(cfg, ds)
	}

	report.Print(os.Stdout, report.Generate(ds, stats.DroppedPrice, 10, 5))
}

// loadFromCSV reads every raw export. A missing file or column leaves that
// source empty instead of aborting the run.
func loadFromCSV(cfg *config.Config) [][]model.SourceRecord {
	var sources [][]model.SourceRecord
	for _, src := range model.Sources {
		path := cfg.RawCSVPath(strings.ToLower(string(src)))
		records, err := storage.ReadRawCSV(path, src)
		switch {
		case errors.Is(err, storage.ErrMissingColumn):
			log.Printf("[AUDIT] %s ignorado: %v", src, err)
			continue
		case errors.Is(err, os.ErrNotExist):
			log.Printf("[AUDIT] %s ignorado: arquivo %s não encontrado", src, path)
			continue
		case err != nil:
			log.Printf("[AUDIT] %s lido parcialmente: %v", src, err)
		}
		log.Printf("[cleaner] %d registros de %s", len(records), src)
		sources = append(sources, records)
	}
	return sources
}

func loadFromDB(cfg *config.Config) [][]model.SourceRecord {
	if cfg.DatabaseURL == "" {
		log.Fatal("-from=db exige DATABASE_URL")
	}
	conn, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Não foi possível conectar ao banco de dados: %v", err)
	}
	defer conn.Close()

	repo := &repository.RawRepository{DB: conn}
	var sources [][]model.SourceRecord
	for _, src := range model.Sources {
		records, err := repo.ListBySource(src)
		if err != nil {
			log.Printf("[AUDIT] %s ignorado: %v", src, err)
			continue
		}
		log.Printf("[cleaner] %d registros de %s (Postgres)", len(records), src)
		sources = append(sources, records)
	}
	return sources
}

func saveListings(cfg *config.Config, ds model.Dataset) {
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("[repository] Postgres indisponível: %v", err)
		return
	}
	defer pool.Close()

	repo := &repository.ListingRepository{DB: pool}
	if err := repo.Migrate(ctx); err != nil {
		log.Printf("[repository] Erro na migração: %v", err)
		return
	}
	if err := repo.ReplaceAll(ctx, ds); err != nil {
		log.Printf("[repository] Erro ao gravar laptop_listings: %v", err)
		return
	}
	counts, err := repo.CountBySource(ctx)
	if err != nil {
		log.Printf("[repository] Erro ao contar laptop_listings: %v", err)
		return
	}
	for src, n := range counts {
		log.Printf("[repository] laptop_listings %s: %d", src, n)
	}
}

func runRegpu(merger *dataset.Merger, path, training string) {
	ds, err := storage.ReadDatasetCSV(path)
	if err != nil {
		log.Fatalf("Erro ao ler %s: %v", path, err)
	}
	changed := merger.RecomputeGPU(&ds)
	if err := storage.WriteDatasetCSV(path, ds); err != nil {
		log.Fatalf("Erro ao gravar %s: %v", path, err)
	}
	if err := storage.WriteTrainingCSV(training, ds); err != nil {
		log.Fatalf("Erro ao gravar %s: %v", training, err)
	}
	log.Printf("[cleaner] gpu recalculada: %d de %d linhas alteradas", changed, len(ds.Listings))
}
