package segmentspeed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/crs"
)

// Recorder receives stage timings and the finished result of a run.
type Recorder interface {
	ObserveStage(stage string, duration time.Duration)
	RecordResult(result *Result)
}

type Options struct {
	// System measures segment lengths. Nil means crs.DefaultEPSG.
	System *crs.System

	// StrictProjection turns a path outside the system's area of use into an error instead
	// of a warning.
	StrictProjection bool

	Workers  int
	Recorder Recorder
}

func Run(ctx context.Context, feed *Feed, options Options) (*Result, error) {
	system := options.System
	if system == nil {
		var err error
		if system, err = crs.Lookup(crs.DefaultEPSG); err != nil {
			return nil, err
		}
	}

	if len(feed.Path) > 0 && !system.Covers(feed.Path.Bound()) {
		if options.StrictProjection {
			return nil, fmt.Errorf("shape %s in %s: %w", feed.ShapeID, system, crs.ErrOutsideAreaOfUse)
		}
		log.Warn().
			Str("shape", feed.ShapeID).
			Str("system", system.String()).
			Msg("Route lies outside the projected system's area of use, distances may be distorted")
	}

	stage := func(name string, started time.Time) {
		if options.Recorder != nil {
			options.Recorder.ObserveStage(name, time.Since(started))
		}
	}

	location := feed.Location
	if location == nil {
		location = time.UTC
	}
	result := &Result{ShapeID: feed.ShapeID, System: system, Location: location}

	started := time.Now()
	stops, err := SnapStops(feed.Path, feed.Stops, feed.StopTimes)
	if err != nil {
		return nil, err
	}
	result.Stops = stops
	stage("snap", started)
	log.Debug().Int("length", len(stops)).Msg("Snapped stops")

	started = time.Now()
	segments, err := BuildSegments(feed.Path, stops, system)
	if err != nil {
		return nil, err
	}
	result.Segments = segments
	stage("segments", started)
	log.Debug().Int("length", len(segments)).Msg("Built segments")

	started = time.Now()
	observations, skipped, err := CalculateSpeeds(ctx, feed.StopTimes, segments, options.Workers)
	if err != nil {
		return nil, err
	}
	result.Observations = observations
	result.Skipped = skipped
	stage("speeds", started)
	log.Debug().Int("length", len(observations)).Int("skipped", skipped).Msg("Calculated speeds")

	started = time.Now()
	result.Rows, result.MissingReferences = Assemble(observations, segments, feed.Trips, feed.Calendar)
	stage("assemble", started)

	for _, missing := range result.MissingReferences {
		log.Warn().Err(missing).Msg("Trip left out of the time series")
	}
	if flagged := result.FlaggedCount(); flagged > 0 {
		log.Warn().Int("count", flagged).Msg("Observations with invalid timings")
	}

	if options.Recorder != nil {
		options.Recorder.RecordResult(result)
	}

	log.Info().
		Str("shape", feed.ShapeID).
		Int("stops", len(result.Stops)).
		Int("segments", len(result.Segments)).
		Int("observations", len(result.Observations)).
		Int("rows", len(result.Rows)).
		Msg("Calculated segment speeds")

	return result, nil
}
