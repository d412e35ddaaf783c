package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for the analysis service
type Metrics struct {
	APIQueries     *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	AnalysisRuns   *prometheus.CounterVec
	AnalysisTime   *prometheus.HistogramVec
	PostsProcessed *prometheus.CounterVec
	MemeCandidates *prometheus.GaugeVec
	KOLProfiles    *prometheus.GaugeVec
	GraphStats     *prometheus.GaugeVec
}
