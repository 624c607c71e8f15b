package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compass_analyses_total",
		Help: "Completed decision analyses by kind.",
	}, []string{"kind"})

	analysisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compass_analysis_errors_total",
		Help: "Rejected or failed decision analyses by kind and reason.",
	}, []string{"kind", "reason"})

	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "compass_analysis_duration_seconds",
		Help:    "Engine time per analysis, excluding persistence.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"kind"})

	snapshotLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compass_country_snapshot_lookups_total",
		Help: "Country snapshot cache lookups by result.",
	}, []string{"result"})
)
