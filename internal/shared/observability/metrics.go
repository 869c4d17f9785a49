package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phpnav_scan_seconds",
		Help:    "Time spent scanning a root directory for declarations.",
		Buckets: prometheus.DefBuckets,
	})

	FilesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phpnav_files_scanned_total",
		Help: "Total number of source files read during scans.",
	})

	FilesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phpnav_files_skipped_total",
		Help: "Total number of unreadable source files skipped during scans.",
	})

	DeclarationsIndexed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "phpnav_declarations_indexed",
		Help: "Number of declarations in the current index.",
	})

	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phpnav_lookups_total",
		Help: "Total number of lookup queries by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phpnav_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phpnav_index_rebuilds_total",
		Help: "Total number of index rebuilds.",
	})
)
