package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

type Collector struct {
	reg *prometheus.Registry

	StopsSnapped      prometheus.Counter
	SegmentsBuilt     prometheus.Counter
	Observations      *prometheus.CounterVec // status label: valid|invalid_timing
	SkippedPairs      prometheus.Counter
	AssembledRows     prometheus.Counter
	MissingReferences prometheus.Counter
	RouteMiles        prometheus.Gauge

	SinkWrites    *prometheus.CounterVec // sink label
	SinkErrors    *prometheus.CounterVec // sink label
	StageDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		StopsSnapped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routespeed_stops_snapped_total",
			Help: "Stops placed on a route path.",
		}),
		SegmentsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routespeed_segments_built_total",
			Help: "Stop to stop segments built.",
		}),
		Observations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routespeed_observations_total",
			Help: "Trip segment observations by timing status.",
		}, []string{"status"}),
		SkippedPairs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routespeed_skipped_pairs_total",
			Help: "Trip and segment pairs without usable stop times.",
		}),
		AssembledRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routespeed_assembled_rows_total",
			Help: "Rows in the assembled time series, terminal rows included.",
		}),
		MissingReferences: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routespeed_missing_reference_trips_total",
			Help: "Trips left out of the time series for lack of calendar data.",
		}),
		RouteMiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routespeed_route_miles",
			Help: "Summed segment length of the last processed shape.",
		}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routespeed_sink_writes_total",
			Help: "Results written per output sink.",
		}, []string{"sink"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routespeed_sink_errors_total",
			Help: "Failed result writes per output sink.",
		}, []string{"sink"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "routespeed_stage_duration_seconds",
			Help:    "Duration of each pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}, []string{"stage"}),
	}

	reg.MustRegister(
		c.StopsSnapped, c.SegmentsBuilt, c.Observations,
		c.SkippedPairs, c.AssembledRows, c.MissingReferences, c.RouteMiles,
		c.SinkWrites, c.SinkErrors, c.StageDuration,
	)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

func (c *Collector) ObserveStage(stage string, duration time.Duration) {
	c.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (c *Collector) RecordResult(result *segmentspeed.Result) {
	c.StopsSnapped.Add(float64(len(result.Stops)))
	c.SegmentsBuilt.Add(float64(len(result.Segments)))

	flagged := result.FlaggedCount()
	c.Observations.WithLabelValues("valid").Add(float64(len(result.Observations) - flagged))
	c.Observations.WithLabelValues("invalid_timing").Add(float64(flagged))

	c.SkippedPairs.Add(float64(result.Skipped))
	c.AssembledRows.Add(float64(len(result.Rows)))
	c.MissingReferences.Add(float64(len(result.MissingReferences)))

	miles := 0.0
	for _, segment := range result.Segments {
		miles += segment.DistanceMiles
	}
	c.RouteMiles.Set(miles)
}

func (c *Collector) RecordSinkWrite(sink string, err error) {
	if err != nil {
		c.SinkErrors.WithLabelValues(sink).Inc()
		return
	}
	c.SinkWrites.WithLabelValues(sink).Inc()
}

// WriteTextfile saves the current values for the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.reg)
}
