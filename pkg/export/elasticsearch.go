package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/elastic_client"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

type ElasticsearchSink struct {
	Index string

	client *elasticsearch.Client
}

func NewElasticsearchSink(address string, username string, password string, index string) (*ElasticsearchSink, error) {
	client, err := elastic_client.Connect(address, username, password)
	if err != nil {
		return nil, err
	}

	return &ElasticsearchSink{Index: index, client: client}, nil
}

func (s *ElasticsearchSink) Name() string {
	return "elasticsearch"
}

func (s *ElasticsearchSink) Write(ctx context.Context, result *segmentspeed.Result) error {
	// stale documents are found by search, so new versions must be visible first
	bulkIndexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:  s.client,
		Index:   s.Index,
		Refresh: "wait_for",
	})
	if err != nil {
		return err
	}

	var failures atomic.Int64
	writeID := uuid.New().String()
	documents := speedDocuments(result, time.Now(), writeID)

	for _, document := range documents {
		body, err := json.Marshal(document)
		if err != nil {
			return err
		}

		err = bulkIndexer.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: document.DocumentID(),
			Body:       bytes.NewReader(body),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failures.Add(1)
				if err != nil {
					log.Error().Err(err).Str("id", item.DocumentID).Msg("Failed to index document")
				} else {
					log.Error().Str("id", item.DocumentID).Str("reason", res.Error.Reason).Msg("Failed to index document")
				}
			},
		})
		if err != nil {
			bulkIndexer.Close(ctx)
			return err
		}
	}

	if err := bulkIndexer.Close(ctx); err != nil {
		return err
	}

	if failed := failures.Load(); failed > 0 {
		return fmt.Errorf("%d of %d documents failed to index", failed, len(documents))
	}

	deleted, err := s.deleteStale(ctx, result.ShapeID, writeID)
	if err != nil {
		return err
	}

	log.Info().
		Str("index", s.Index).
		Uint64("documents", bulkIndexer.Stats().NumIndexed).
		Int64("stale", deleted).
		Msg("Indexed segment speeds")
	return nil
}

func staleSpeedsSearch(shapeID string, writeID string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"ShapeID.keyword": shapeID}},
				},
				"must_not": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"WriteID.keyword": writeID}},
				},
			},
		},
	}
}

// deleteStale removes the shape's documents that an earlier write indexed and this one did not
// overwrite.
func (s *ElasticsearchSink) deleteStale(ctx context.Context, shapeID string, writeID string) (int64, error) {
	var queryBytes bytes.Buffer
	if err := json.NewEncoder(&queryBytes).Encode(staleSpeedsSearch(shapeID, writeID)); err != nil {
		return 0, err
	}

	res, err := s.client.DeleteByQuery(
		[]string{s.Index},
		&queryBytes,
		s.client.DeleteByQuery.WithContext(ctx),
		s.client.DeleteByQuery.WithConflicts("proceed"),
		s.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale documents for shape %s: %w", shapeID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("delete stale documents for shape %s: %w", shapeID, &elastic_client.ResponseError{Status: res.Status()})
	}

	var response struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return 0, err
	}
	return response.Deleted, nil
}

func (s *ElasticsearchSink) Close() error {
	return nil
}
