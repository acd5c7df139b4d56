package compose

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prolearn_submissions_total",
			Help: "Post submissions by editor mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	attachmentRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prolearn_attachment_rejections_total",
			Help: "Rejected attachment batches by reason",
		},
		[]string{"reason"},
	)

	livePreviews = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prolearn_live_previews",
			Help: "Preview handles created and not yet released",
		},
	)

	openEditors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prolearn_open_editors",
			Help: "Editors currently held by the registry",
		},
	)
)
