package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumafilter_stream_frames_written_total",
		Help: "Total number of frames written as part of stream",
	}, []string{"name"})
	FramesRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumafilter_stream_frames_read_total",
		Help: "Total number of frames actually read by readers as part of stream",
	}, []string{"name"})
	FramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumafilter_stream_frames_dropped_total",
		Help: "Total number of frames dropped as part of stream",
	}, []string{"name"})
	FramesForwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumafilter_stream_frames_forwarded_total",
		Help: "Total number of frames published to readers as part of stream",
	}, []string{"name"})

	FilterFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumafilter_filter_frames_total",
		Help: "Total number of frames handled by the brightness filter, by result",
	}, []string{"result"})
	TransformSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lumafilter_filter_transform_seconds",
		Help:    "Time spent adjusting the brightness of a single frame",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"family"})
	Brightness = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lumafilter_filter_brightness",
		Help: "Current brightness factor of the filter",
	})
)

type StreamMetrics struct {
	FramesRead      prometheus.Counter
	FramesWritten   prometheus.Counter
	FramesDropped   prometheus.Counter
	FramesForwarded prometheus.Counter
}

func NewStreamMetrics(name string) StreamMetrics {
	s := StreamMetrics{
		FramesRead:      FramesRead.WithLabelValues(name),
		FramesWritten:   FramesWritten.WithLabelValues(name),
		FramesDropped:   FramesDropped.WithLabelValues(name),
		FramesForwarded: FramesForwarded.WithLabelValues(name),
	}
	s.FramesRead.Add(0)
	s.FramesWritten.Add(0)
	s.FramesDropped.Add(0)
	s.FramesForwarded.Add(0)
	return s
}

// Handler should usually be mounted at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
