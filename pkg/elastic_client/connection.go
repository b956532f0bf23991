package elastic_client

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"
)

const maxRetries = 5

func Connect(address string, username string, password string) (*elasticsearch.Client, error) {
	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{address},
		Username:  username,
		Password:  password,

		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: maxRetries,
	})
	if err != nil {
		return nil, err
	}

	res, err := es.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &ResponseError{Status: res.Status()}
	}

	log.Info().Str("address", address).Msg("Elasticsearch client setup")

	return es, nil
}

type ResponseError struct {
	Status string
}

func (e *ResponseError) Error() string {
	return "elasticsearch responded " + e.Status
}
