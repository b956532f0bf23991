package gtfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const userAgent = "routespeed/1.0"

const maxDownloadRetries = 5

var newBackOff = func() backoff.BackOff {
	return backoff.NewExponentialBackOff()
}

// Load reads a GTFS zip from a local path or an http(s) URL.
func Load(ctx context.Context, source string) (*Schedule, error) {
	return LoadWithCache(ctx, source, nil)
}

// LoadWithCache is Load with downloads looked up in, and saved to, feedCache. A nil cache
// disables caching. Local files are never cached.
func LoadWithCache(ctx context.Context, source string, feedCache *FeedCache) (*Schedule, error) {
	if !isValidUrl(source) {
		file, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		return parseSource(source, file)
	}

	if archive, ok := feedCache.Get(ctx, source); ok {
		log.Info().Str("source", source).Msg("Using cached feed")
		return parseSource(source, bytes.NewReader(archive))
	}

	tempFile, err := tempDownloadFile(ctx, source)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempFile)

	archive, err := os.ReadFile(tempFile)
	if err != nil {
		return nil, err
	}

	schedule, err := parseSource(source, bytes.NewReader(archive))
	if err != nil {
		return nil, err
	}

	feedCache.Set(ctx, source, archive)
	return schedule, nil
}

func parseSource(source string, reader io.Reader) (*Schedule, error) {
	schedule := &Schedule{}
	if err := schedule.ParseFile(reader); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	return schedule, nil
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

	return u.Scheme == "http" || u.Scheme == "https"
}

// tempDownloadFile fetches source into a temporary file, retrying server errors and
// transport failures with exponential backoff. Client errors are not retried.
func tempDownloadFile(ctx context.Context, source string) (string, error) {
	tmpFile, err := os.CreateTemp(os.TempDir(), "routespeed-gtfs-")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	download := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("download %s: %s", source, resp.Status)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("download %s: %s", source, resp.Status))
		}

		if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(err)
		}
		if err := tmpFile.Truncate(0); err != nil {
			return backoff.Permanent(err)
		}
		_, err = io.Copy(tmpFile, resp.Body)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), maxDownloadRetries), ctx)
	err = backoff.RetryNotify(download, policy, func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("wait", wait).Msg("Download failed, retrying")
	})
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", err
	}

	log.Info().Str("source", source).Str("file", tmpFile.Name()).Msg("Downloaded feed")
	return tmpFile.Name(), nil
}
