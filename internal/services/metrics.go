package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenExchanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hitscope",
		Subsystem: "spotify",
		Name:      "token_exchanges_total",
		Help:      "Client-credentials token exchanges by result.",
	}, []string{"result"})

	artistLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hitscope",
		Subsystem: "spotify",
		Name:      "artist_lookups_total",
		Help:      "Artist searches by result (found, missing, unavailable, error).",
	}, []string{"result"})

	lookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hitscope",
		Subsystem: "spotify",
		Name:      "search_duration_seconds",
		Help:      "Latency of artist search requests.",
		Buckets:   prometheus.DefBuckets,
	})

	infoCacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hitscope",
		Subsystem: "info_cache",
		Name:      "events_total",
		Help:      "Info cache lookups by outcome (hit, store_hit, miss) and clears.",
	}, []string{"event"})
)
