package elastic_client

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"
)

// Connect returns a nil client without an error when no address is configured
func Connect(env map[string]string) (*elasticsearch.Client, error) {
	address := env["SEQTRANSIT_ELASTICSEARCH_ADDRESS"]
	if address == "" {
		log.Info().Msg("Skipping Elasticsearch setup")
		return nil, nil
	}

	tp := http.DefaultTransport.(*http.Transport).Clone()
	if env["SEQTRANSIT_ELASTICSEARCH_INSECURE"] == "YES" {
		tp.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{address},
		Username:  env["SEQTRANSIT_ELASTICSEARCH_USERNAME"],
		Password:  env["SEQTRANSIT_ELASTICSEARCH_PASSWORD"],
		Transport: tp,

		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
	if err != nil {
		return nil, err
	}

	res, err := es.Info()
	if err != nil {
		return nil, err
	}
	res.Body.Close()

	log.Info().Msgf("Elasticsearch client setup for %s", address)

	return es, nil
}
