// Package export writes a segment speed result to files, databases and message buses.
package export

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/config"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

type Sink interface {
	Name() string
	Write(ctx context.Context, result *segmentspeed.Result) error
	Close() error
}

// Open creates a sink for every output the config names. Sinks opened before a failure
// are closed again.
func Open(ctx context.Context, outputs config.OutputConfig) ([]Sink, error) {
	sinks := []Sink{}

	if outputs.CSV != "" {
		sinks = append(sinks, NewCSVSink(outputs.CSV))
	}
	if outputs.JSON != "" {
		sinks = append(sinks, NewJSONSink(outputs.JSON, outputs.JSONGroups))
	}
	if outputs.GeoJSON != "" {
		sinks = append(sinks, NewGeoJSONSink(outputs.GeoJSON))
	}

	connectors := []struct {
		enabled bool
		open    func() (Sink, error)
	}{
		{outputs.SQLite != "", func() (Sink, error) { return NewSQLiteSink(ctx, outputs.SQLite) }},
		{outputs.MongoURI != "", func() (Sink, error) {
			return NewMongoSink(ctx, outputs.MongoURI, outputs.MongoDatabase, outputs.MongoCollection)
		}},
		{outputs.NATSURL != "", func() (Sink, error) { return NewNATSSink(outputs.NATSURL, outputs.NATSSubject) }},
		{outputs.ElasticsearchAddress != "", func() (Sink, error) {
			return NewElasticsearchSink(
				outputs.ElasticsearchAddress, outputs.ElasticsearchUsername, outputs.ElasticsearchPassword,
				outputs.ElasticsearchIndex,
			)
		}},
		{outputs.QueueRedisAddress != "", func() (Sink, error) {
			return NewQueueSink(ctx, outputs.QueueRedisAddress, outputs.QueueRedisPassword, outputs.QueueName)
		}},
		{outputs.Neo4jURI != "", func() (Sink, error) {
			return NewGraphSink(ctx, outputs.Neo4jURI, outputs.Neo4jUsername, outputs.Neo4jPassword, outputs.Neo4jDatabase)
		}},
	}
	for _, connector := range connectors {
		if !connector.enabled {
			continue
		}
		sink, err := connector.open()
		if err != nil {
			CloseAll(sinks)
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	return sinks, nil
}

func CloseAll(sinks []Sink) error {
	var errs []error
	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			log.Error().Err(err).Str("sink", sink.Name()).Msg("Failed to close sink")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
