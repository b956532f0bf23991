// Package routespeed wires configuration, GTFS loading, the segment speed pipeline and the
// output sinks into the commands of the routespeed binary.
package routespeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/config"
	"github.com/travigo/routespeed/pkg/crs"
	"github.com/travigo/routespeed/pkg/export"
	"github.com/travigo/routespeed/pkg/gtfs"
	"github.com/travigo/routespeed/pkg/metrics"
	"github.com/travigo/routespeed/pkg/redis_client"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

// Analyse loads the configured feed and runs the pipeline over the selected shape.
func Analyse(ctx context.Context, cfg *config.Config, collector *metrics.Collector) (*segmentspeed.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	system, err := crs.Lookup(cfg.EPSG)
	if err != nil {
		return nil, err
	}

	filter, err := gtfs.CompileTripFilter(cfg.TripFilter)
	if err != nil {
		return nil, err
	}

	loadStart := time.Now()
	schedule, err := loadSchedule(ctx, cfg)
	if err != nil {
		return nil, err
	}
	collector.ObserveStage("load", time.Since(loadStart))

	feed, err := schedule.Extract(gtfs.Selection{
		ShapeID: cfg.ShapeID,
		RouteID: cfg.RouteID,
		Filter:  filter,
	})
	if err != nil {
		return nil, err
	}

	return segmentspeed.Run(ctx, feed, segmentspeed.Options{
		System:           system,
		StrictProjection: cfg.StrictProjection,
		Workers:          cfg.Workers,
		Recorder:         collector,
	})
}

func loadSchedule(ctx context.Context, cfg *config.Config) (*gtfs.Schedule, error) {
	if cfg.Cache.RedisAddress == "" {
		return gtfs.Load(ctx, cfg.Source)
	}

	client, err := redis_client.Connect(ctx, cfg.Cache.RedisAddress, cfg.Cache.RedisPassword, cfg.Cache.RedisDatabase)
	if err != nil {
		return nil, fmt.Errorf("feed cache: %w", err)
	}
	defer client.Close()

	return gtfs.LoadWithCache(ctx, cfg.Source, gtfs.NewFeedCache(client, cfg.Cache.Expiration))
}

// Publish hands the result to every configured sink. A failing sink does not stop the
// others; their errors are joined.
func Publish(ctx context.Context, outputs config.OutputConfig, result *segmentspeed.Result, collector *metrics.Collector) error {
	sinks, err := export.Open(ctx, outputs)
	if err != nil {
		return err
	}
	defer export.CloseAll(sinks)

	if len(sinks) == 0 {
		log.Warn().Msg("No outputs configured, results are not being saved")
		return nil
	}

	var errs []error
	for _, sink := range sinks {
		start := time.Now()
		err := sink.Write(ctx, result)
		collector.RecordSinkWrite(sink.Name(), err)

		if err != nil {
			log.Error().Err(err).Str("sink", sink.Name()).Msg("Failed to write results")
			errs = append(errs, err)
			continue
		}
		log.Debug().Str("sink", sink.Name()).Str("Length", time.Since(start).String()).Msg("Sink write complete")
	}

	return errors.Join(errs...)
}

// Execute is a full run: analyse, publish, then save metrics if asked to.
func Execute(ctx context.Context, cfg *config.Config) (*segmentspeed.Result, error) {
	collector := metrics.NewCollector()

	result, err := Analyse(ctx, cfg, collector)
	if err != nil {
		return nil, err
	}

	publishErr := Publish(ctx, cfg.Output, result, collector)

	if cfg.Metrics.Textfile != "" {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Error().Err(err).Str("path", cfg.Metrics.Textfile).Msg("Failed to write metrics")
		}
	}

	return result, publishErr
}
