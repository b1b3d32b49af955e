package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"laptopprj/internal/config"
	"laptopprj/internal/crawler"
	"laptopprj/internal/model"
)

// go run cmd/inspect/main.go -source=flipkart
// go run cmd/inspect/main.go -source=amazon -file=/tmp/page.html -cards=5
func main() {
	cfg := config.Load()

	sourceArg := flag.String("source", "amazon", "Fonte do dump: 'amazon' ou 'flipkart'")
	file := flag.String("file", "", "HTML a inspecionar (padrão: DATA_DIR/debug_<fonte>.html)")
	cards := flag.Int("cards", 3, "Quantidade de cards detalhados")
	flag.Parse()

	src := model.Source("")
	for _, s := range model.Sources {
		if strings.EqualFold(string(s), *sourceArg) {
			src = s
		}
	}
	if src == "" {
		log.Fatalf("fonte desconhecida: %q", *sourceArg)
	}

	profiles := crawler.DefaultProfiles()
	if cfg.SelectorsFile != "" {
		var err error
		if profiles, err = crawler.LoadProfiles(cfg.SelectorsFile); err != nil {
			log.Fatalf("Erro ao carregar seletores de %s: %v", cfg.SelectorsFile, err)
		}
	}
	extractor, err := crawler.NewExtractor(profiles[src])
	if err != nil {
		log.Fatalf("Perfil inválido para %s: %v", src, err)
	}

	path := *file
	if path == "" {
		path = filepath.Join(cfg.DataDir, "debug_"+strings.ToLower(string(src))+".html")
	}
	html, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Erro ao ler %s: %v", path, err)
	}
	doc, err := crawler.ParseDocument(string(html))
	if err != nil {
		log.Fatalf("Erro ao interpretar %s: %v", path, err)
	}

	rep := extractor.Inspect(doc, *cards)
	fmt.Printf("%s: %d cards em %s\n", src, rep.Cards, path)
	for i, cr := range rep.Details {
		fmt.Printf("\n--- card %d ---\n", i+1)
		fmt.Println("títulos candidatos (>30 caracteres):")
		for _, t := range cr.Titles {
			fmt.Printf("  %s\n", t)
		}
		fmt.Println("preços candidatos:")
		for _, p := range cr.Prices {
			fmt.Printf("  %s\n", p)
		}
		fmt.Println("regras vencedoras:")
		for _, tr := range cr.Traces {
			if tr.Rule < 0 {
				fmt.Printf("  %-8s nenhuma\n", tr.Field)
				continue
			}
			fmt.Printf("  %-8s #%d %q\n", tr.Field, tr.Rule, tr.Value)
		}
	}
}
