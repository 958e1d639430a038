package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menuvoice_queries_total",
		Help: "Queries processed, labeled by classified query type.",
	}, []string{"query_type"})

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "menuvoice_query_duration_seconds",
		Help:    "End to end retrieval pipeline latency.",
		Buckets: prometheus.DefBuckets,
	})

	emptyContexts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menuvoice_empty_contexts_total",
		Help: "Queries that produced no context at all.",
	})
)
