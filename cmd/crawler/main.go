package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"laptopprj/internal/config"
	"laptopprj/internal/crawler"
	"laptopprj/internal/db"
	"laptopprj/internal/model"
	"laptopprj/internal/observability"
	"laptopprj/internal/repository"
	"laptopprj/internal/storage"
)

// go run cmd/crawler/main.go -source=all -pages=40
// go run cmd/crawler/main.go -source=flipkart -pages=2
func main() {
	cfg := config.Load()

	sourceArg := flag.String("source", "all", "Fonte: 'all', 'amazon' ou 'flipkart'")
	pages := flag.Int("pages", cfg.Pages, "Número de páginas de busca por fonte")
	flag.Parse()

	sources, err := selectSources(*sourceArg)
	if err != nil {
		log.Fatal(err)
	}

	profiles := crawler.DefaultProfiles()
	if cfg.SelectorsFile != "" {
		profiles, err = crawler.LoadProfiles(cfg.SelectorsFile)
		if err != nil {
			log.Fatalf("Erro ao carregar seletores de %s: %v", cfg.SelectorsFile, err)
		}
	}

	observability.Start(cfg.MetricsPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var fetcher crawler.Fetcher
	if cfg.FetchMode == "browser" {
		bf := crawler.NewBrowserFetcher(cfg.ChromeBin, cfg.UserAgent, cfg.HTTPTimeout)
		defer bf.Close()
		fetcher = bf
	} else {
		fetcher = crawler.NewHTTPFetcher(cfg.HTTPTimeout, cfg.UserAgent)
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("REDIS_URL inválida: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		fetcher = &crawler.CachedFetcher{Next: fetcher, Client: rdb, TTL: cfg.PageCacheTTL}
		log.Printf("[crawler] cache de páginas ativo (ttl %s)", cfg.PageCacheTTL)
	}

	var repo *repository.RawRepository
	if cfg.DatabaseURL != "" {
		conn, err := db.New(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[repository] Postgres indisponível, seguindo só com CSV: %v", err)
		} else {
			defer conn.Close()
			repo = &repository.RawRepository{DB: conn}
			if err := repo.Migrate(); err != nil {
				log.Printf("[repository] Erro na migração: %v", err)
				repo = nil
			}
		}
	}

	dumpDir := ""
	if cfg.DebugDump {
		dumpDir = cfg.DataDir
	}

	// Cada fonte roda em sua própria goroutine; dentro dela as páginas são
	// sequenciais com o atraso fixo.
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		profile, ok := profiles[src]
		if !ok {
			log.Printf("[crawler] sem perfil de seletores para %s", src)
			continue
		}

		g.Go(func() error {
			c := &crawler.Crawler{
				Fetcher: fetcher,
				Profile: profile,
				Delay:   cfg.RequestDelay,
				DumpDir: dumpDir,
			}

			if repo != nil {
				if n, err := repo.DeleteBySource(src); err != nil {
					log.Printf("[repository] Erro ao limpar %s: %v", src, err)
				} else if n > 0 {
					log.Printf("[repository] %d registros antigos de %s removidos", n, src)
				}
			}

			var records []model.SourceRecord
			stats, err := c.Run(gctx, *pages, func(page int, recs []model.SourceRecord) {
				records = append(records, recs...)
				if repo == nil {
					return
				}
				if err := repo.SaveAll(recs); err != nil {
					log.Printf("[repository] Erro ao salvar página %d de %s: %v", page, src, err)
				}
			})
			if err != nil {
				return err
			}

			// Sempre exporta o que foi coletado, mesmo se interrompido.
			path := cfg.RawCSVPath(strings.ToLower(string(src)))
			if err := storage.WriteRawCSV(path, src, records); err != nil {
				return err
			}
			log.Printf("[crawler] %s: %d páginas ok, %d falharam, %d cards, %d registros, %d descartados -> %s",
				src, stats.PagesOK, stats.PagesFailed, stats.Cards, stats.Records, stats.Dropped, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Erro no crawler: %v", err)
	}

	log.Println("Crawler finalizado")
}

func selectSources(arg string) ([]model.Source, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "all" || arg == "" {
		return model.Sources, nil
	}
	for _, s := range model.Sources {
		if strings.ToLower(string(s)) == arg {
			return []model.Source{s}, nil
		}
	}
	return nil, fmt.Errorf("fonte desconhecida: %q", arg)
}
