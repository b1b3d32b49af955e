package observability

import (
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laptop_pages_fetched_total",
			Help: "Páginas de busca requisitadas, por fonte e resultado",
		},
		[]string{"source", "status"},
	)
	CardsSeen = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laptop_cards_total",
			Help: "Cards de produto encontrados nas páginas",
		},
		[]string{"source"},
	)
	CardsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laptop_cards_dropped_total",
			Help: "Cards descartados por não ter título",
		},
		[]string{"source"},
	)
	RowsDroppedPrice = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "laptop_rows_dropped_price_total",
			Help: "Registros removidos por preço ausente ou inválido",
		},
	)
	ValuesImputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laptop_values_imputed_total",
			Help: "Valores preenchidos na imputação, por campo",
		},
		[]string{"field"},
	)
	PageCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "laptop_page_cache_hits_total",
			Help: "Páginas servidas pelo cache do Redis",
		},
	)
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PagesFetched, CardsSeen, CardsDropped, RowsDroppedPrice, ValuesImputed, PageCacheHits)
	})
}

// Start exposes /metrics on the given port. An empty port disables the endpoint.
func Start(port string) {
	if port == "" {
		return
	}
	register()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Printf("[metrics] servidor parou: %v", err)
		}
	}()
}
