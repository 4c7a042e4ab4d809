package media

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	inlineImagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_inline_images_total",
			Help: "Inline images processed by the content rewriter, by result",
		},
		[]string{"result"},
	)

	storedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_stored_bytes_total",
			Help: "Bytes written to asset storage after compression",
		},
	)

	reclaimedFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_reclaimed_files_total",
			Help: "Orphaned asset files deleted by the reclaimer, by result",
		},
		[]string{"result"},
	)
)
