package redis_client

import (
	"context"

	"github.com/redis/go-redis/v9"
)

func Connect(ctx context.Context, address string, password string, database int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := client.Ping(ctx)
	if err := statusCmd.Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
