package export

import (
	"context"
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/redis_client"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

// QueueSink publishes per trip messages onto a Redis backed rmq queue.
type QueueSink struct {
	Queue string

	client     *redis.Client
	connection rmq.Connection
	queue      rmq.Queue
}

func NewQueueSink(ctx context.Context, address string, password string, queueName string) (*QueueSink, error) {
	client, err := redis_client.Connect(ctx, address, password, 0)
	if err != nil {
		return nil, err
	}

	connection, err := rmq.OpenConnectionWithRedisClient("routespeed", client, nil)
	if err != nil {
		client.Close()
		return nil, err
	}

	queue, err := connection.OpenQueue(queueName)
	if err != nil {
		<-connection.StopAllConsuming()
		client.Close()
		return nil, err
	}

	return &QueueSink{Queue: queueName, client: client, connection: connection, queue: queue}, nil
}

func (s *QueueSink) Name() string {
	return "queue"
}

func (s *QueueSink) Write(_ context.Context, result *segmentspeed.Result) error {
	messages := TripMessages(result)

	payloads := make([][]byte, 0, len(messages))
	for _, message := range messages {
		body, err := json.Marshal(message)
		if err != nil {
			return err
		}
		payloads = append(payloads, body)
	}

	if len(payloads) > 0 {
		if err := s.queue.PublishBytes(payloads...); err != nil {
			return err
		}
	}

	log.Info().Str("queue", s.Queue).Int("messages", len(payloads)).Msg("Queued segment speeds")
	return nil
}

func (s *QueueSink) Close() error {
	<-s.connection.StopAllConsuming()
	return s.client.Close()
}
