package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/datasets"
)

const downloadMaxElapsedTime = 10 * time.Minute

type Downloader struct {
	Client *http.Client

	// Bounds the total time spent retrying a failed download
	MaxElapsedTime time.Duration
}

// Fetch reads a source into memory. URLs are downloaded with a timeout per attempt and
// retried with exponential backoff, anything else is treated as a local file path.
func (d *Downloader) Fetch(ctx context.Context, source string, timeout time.Duration, authentication datasets.SourceAuthentication) ([]byte, error) {
	if !isValidUrl(source) {
		return os.ReadFile(source)
	}

	maxElapsedTime := d.MaxElapsedTime
	if maxElapsedTime == 0 {
		maxElapsedTime = downloadMaxElapsedTime
	}

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = maxElapsedTime

	var body []byte
	attempt := 0

	err := backoff.Retry(func() error {
		attempt += 1

		var err error
		body, err = d.download(ctx, source, timeout, authentication)
		if err != nil {
			log.Warn().Err(err).Str("source", source).Int("attempt", attempt).Msg("Download failed")
		}
		return err
	}, backoff.WithContext(retryBackoff, ctx))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", source, err)
	}

	log.Info().Str("source", source).Int("length", len(body)).Msg("Downloaded source")

	return body, nil
}

func (d *Downloader) download(ctx context.Context, source string, timeout time.Duration, authentication datasets.SourceAuthentication) ([]byte, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, source, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", "seqtransit")

	query := req.URL.Query()
	for key, value := range authentication.Query {
		query.Set(key, value)
	}
	req.URL.RawQuery = query.Encode()
	for key, value := range authentication.Header {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("unexpected status %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("download timed out after %s: %w", timeout, err)
		}
		return nil, err
	}

	return body, nil
}

func isValidUrl(toTest string) bool {
	_, err := url.ParseRequestURI(toTest)
	if err != nil {
		return false
	}

	u, err := url.Parse(toTest)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}
