package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoprompt_validations_total",
		Help: "Total number of uploaded files validated, by outcome",
	}, []string{"outcome"})

	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoprompt_generations_total",
		Help: "Total number of generation attempts, by outcome",
	}, []string{"outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videoprompt_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"stage"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videoprompt_frames_extracted_total",
		Help: "Total number of frames encoded across all generation attempts",
	})

	FramesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videoprompt_frames_skipped_total",
		Help: "Total number of frames dropped because they produced no image",
	})

	StaleResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoprompt_stale_results_total",
		Help: "Results discarded because a newer file selection superseded them",
	}, []string{"stage"})

	LiveSources = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "videoprompt_live_sources",
		Help: "Number of playable source references currently held by the session",
	})
)
