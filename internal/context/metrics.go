package ctxengine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Assembly metrics, exported on the gateway's /metrics endpoint.
var (
	assembliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aeris",
		Subsystem: "ctxengine",
		Name:      "assemblies_total",
		Help:      "Number of context assemblies performed.",
	})

	fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aeris",
		Subsystem: "ctxengine",
		Name:      "fallbacks_total",
		Help:      "Number of times a degraded assembly strategy was used.",
	}, []string{"strategy"})

	optimizerDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aeris",
		Subsystem: "ctxengine",
		Name:      "optimizer_dropped_messages_total",
		Help:      "Dialogue messages dropped by the token budget optimizer.",
	})

	optimizerInfeasibleTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aeris",
		Subsystem: "ctxengine",
		Name:      "optimizer_infeasible_total",
		Help:      "Assemblies where system messages alone exceeded the budget.",
	})

	summariesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aeris",
		Subsystem: "ctxengine",
		Name:      "summaries_created_total",
		Help:      "Context summaries created and persisted.",
	})

	summaryTokensSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aeris",
		Subsystem: "ctxengine",
		Name:      "summary_tokens_saved_total",
		Help:      "Estimated tokens saved by replacing raw history with summaries.",
	})
)
