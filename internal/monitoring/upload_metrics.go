package monitoring

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var uploadRequestsTotal atomic.Uint64
var uploadRequestsFailed atomic.Uint64
var uploadBytesTotal atomic.Int64
var uploadDurationMicrosTotal atomic.Uint64

var imageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "genzfits_image_uploads_total",
		Help: "Image upload requests by outcome",
	},
	[]string{"result", "reason"},
)

var imageUploadBytes = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "genzfits_image_upload_bytes_total",
		Help: "Bytes stored by successful image uploads",
	},
)

type UploadStats struct {
	RequestsTotal uint64  `json:"requests_total"`
	FailedTotal   uint64  `json:"failed_total"`
	BytesTotal    int64   `json:"bytes_total"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// RecordUpload records one image upload request. reason is empty on success.
func RecordUpload(bytes int64, duration time.Duration, success bool, reason string) {
	uploadRequestsTotal.Add(1)
	result := "success"
	if !success {
		uploadRequestsFailed.Add(1)
		result = "failure"
	}
	imageUploadsTotal.WithLabelValues(result, reason).Inc()

	if bytes > 0 && success {
		uploadBytesTotal.Add(bytes)
		imageUploadBytes.Add(float64(bytes))
	}
	if duration > 0 {
		uploadDurationMicrosTotal.Add(uint64(duration / time.Microsecond))
	}
}

func GetUploadStats() UploadStats {
	total := uploadRequestsTotal.Load()
	totalDurationMicros := uploadDurationMicrosTotal.Load()
	avgDurationMS := 0.0
	if total > 0 {
		avgDurationMS = float64(totalDurationMicros) / float64(total) / 1000.0
	}

	return UploadStats{
		RequestsTotal: total,
		FailedTotal:   uploadRequestsFailed.Load(),
		BytesTotal:    uploadBytesTotal.Load(),
		AvgDurationMS: avgDurationMS,
	}
}
