package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imageGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphics_image_generations_total",
			Help: "Image generation attempts by outcome code.",
		},
		[]string{"status"},
	)

	imageGenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphics_image_generation_duration_seconds",
		Help:    "Time spent in the generative model call.",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
	})

	imagesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphics_images_deleted_total",
		Help: "Total number of soft-deleted images.",
	})

	versionConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphics_version_conflicts_total",
			Help: "Version number collisions retried by entity kind.",
		},
		[]string{"kind"},
	)

	bestEffortFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphics_best_effort_failures_total",
			Help: "Swallowed failures of auxiliary operations.",
		},
		[]string{"operation"},
	)
)
