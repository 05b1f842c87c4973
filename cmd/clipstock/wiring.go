package main

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/snapetech/clipstock/internal/config"
	"github.com/snapetech/clipstock/internal/httpclient"
	"github.com/snapetech/clipstock/internal/ledger"
	"github.com/snapetech/clipstock/internal/materializer"
	"github.com/snapetech/clipstock/internal/metrics"
	"github.com/snapetech/clipstock/internal/provider"
)

// stack is everything one command needs to talk to the catalog and the cache.
type stack struct {
	searcher provider.Searcher
	fetcher  materializer.Fetcher
	ledger   *ledger.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func buildStack(c *config.Config, offline bool) (*stack, error) {
	st := &stack{registry: prometheus.NewRegistry()}
	st.metrics = metrics.New(st.registry)

	client := httpclient.New(httpclient.Options{Timeout: c.HTTPTimeout, ProxyURL: c.ProxyURL})
	retry := httpclient.DefaultRetryPolicy
	retry.MaxRetries = c.Retries

	s, err := provider.New(provider.Options{
		Name:    c.Provider,
		APIKey:  c.APIKey(),
		BaseURL: c.ProviderBaseURL,
		Client:  client,
		RPS:     c.SearchRPS,
		Retry:   retry,
		Metrics: st.metrics,
	})
	if err != nil {
		return nil, err
	}
	st.searcher = s

	if offline {
		st.fetcher = materializer.Offline{CacheDir: c.CacheDir}
	} else {
		st.fetcher = &materializer.Cache{
			CacheDir:  c.CacheDir,
			Client:    client,
			Authorize: s.Authorize,
			Retry:     retry,
			Metrics:   st.metrics,
		}
	}

	if c.LedgerPath != "" {
		store, err := ledger.Open(c.LedgerPath)
		if err != nil {
			return nil, err
		}
		st.ledger = store
	}
	return st, nil
}

// close flushes metrics (if configured) and releases the ledger.
func (st *stack) close(c *config.Config) {
	if c.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(c.MetricsTextfile, st.registry); err != nil {
			log.Printf("metrics: write %s: %v", c.MetricsTextfile, err)
		}
	}
	if st.ledger != nil {
		if err := st.ledger.Close(); err != nil {
			log.Printf("ledger: close: %v", err)
		}
	}
}
