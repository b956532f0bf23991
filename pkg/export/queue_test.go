package export

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueSink(t *testing.T) {
	server := miniredis.RunT(t)

	sink, err := NewQueueSink(context.Background(), server.Addr(), "", "segment-speeds")
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), sampleResult()))
	require.NoError(t, sink.Close())

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()
	connection, err := rmq.OpenConnectionWithRedisClient("routespeed-test", client, nil)
	require.NoError(t, err)
	defer func() { <-connection.StopAllConsuming() }()

	queue, err := connection.OpenQueue("segment-speeds")
	require.NoError(t, err)
	require.NoError(t, queue.StartConsuming(10, 10*time.Millisecond))

	var mu sync.Mutex
	received := []*TripSpeedsMessage{}
	_, err = queue.AddConsumerFunc("reader", func(delivery rmq.Delivery) {
		message := &TripSpeedsMessage{}
		if json.Unmarshal([]byte(delivery.Payload()), message) == nil {
			mu.Lock()
			received = append(received, message)
			mu.Unlock()
		}
		delivery.Ack()
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	tripIDs := []string{received[0].TripID, received[1].TripID}
	assert.ElementsMatch(t, []string{"A", "B"}, tripIDs)
	assert.Len(t, received[0].Rows, 3)
}
