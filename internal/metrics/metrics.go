package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters
var (
	StreamsOpenedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lwjall_streams_opened_total",
		Help: "Total Ogg Vorbis streams opened by input kind",
	}, []string{"kind"})
	StreamErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lwjall_stream_errors_total",
		Help: "Total streams that failed to open or decode",
	})
	DecodedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lwjall_decoded_bytes_total",
		Help: "Total bytes of PCM produced by the decoder",
	})
	PlaybackEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lwjall_playback_events_total",
		Help: "Total player events by type",
	}, []string{"type"})
	HttpChunkRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lwjall_http_chunk_retries_total",
		Help: "Total failed HTTP chunk requests that were retried",
	})
)

// Histograms
var (
	HttpChunkLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lwjall_http_chunk_duration_ms",
		Help:    "HTTP chunk download duration in milliseconds, retries included",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})
)
