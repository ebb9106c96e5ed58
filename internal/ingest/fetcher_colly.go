package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// CollyFetcher implements Fetcher using Colly. It retries failed requests,
// waits between requests to the same domain and respects robots.txt.
type CollyFetcher struct {
	UserAgent         string
	MaxRetries        int
	RequestTimeout    time.Duration
	DomainDelay       time.Duration
	RandomDelayFactor float64
	IgnoreRobotsTxt   bool
	MaxBodySize       int // bytes, 0 = unlimited

	log *logrus.Entry
}

// NewCollyFetcher creates a CollyFetcher from a source's fetch settings.
func NewCollyFetcher(cfg FetchConfig, logger *logrus.Logger) *CollyFetcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	f := &CollyFetcher{
		UserAgent:         userAgent,
		MaxRetries:        3,
		RequestTimeout:    30 * time.Second,
		DomainDelay:       1 * time.Second,
		RandomDelayFactor: 0.5,
		MaxBodySize:       10 * 1024 * 1024, // 10MB
		log:               logger.WithField("component", "colly"),
	}
	if cfg.TimeoutSeconds > 0 {
		f.RequestTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.RateLimitRPS > 0 {
		f.DomainDelay = time.Duration(float64(time.Second) / cfg.RateLimitRPS)
	}
	if cfg.MaxRetries > 0 {
		f.MaxRetries = cfg.MaxRetries
	}
	return f
}

func (f *CollyFetcher) buildCollector(domain string) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
		colly.AllowedDomains(domain),
		colly.DetectCharset(),
	}
	if f.IgnoreRobotsTxt {
		opts = append(opts, colly.IgnoreRobotsTxt())
	}

	c := colly.NewCollector(opts...)
	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       f.DomainDelay,
		RandomDelay: time.Duration(float64(f.DomainDelay) * f.RandomDelayFactor),
	})
	c.SetRequestTimeout(f.RequestTimeout)
	return c
}

// Fetch visits targetURL once, retrying on errors, and returns the body.
func (f *CollyFetcher) Fetch(ctx context.Context, targetURL string) (*FetchedDocument, error) {
	parsedURL, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	c := f.buildCollector(parsedURL.Hostname())

	var (
		once     sync.Once
		result   *FetchedDocument
		fetchErr error
	)
	done := make(chan struct{})
	finish := func(doc *FetchedDocument, err error) {
		once.Do(func() {
			result, fetchErr = doc, err
			close(done)
		})
	}

	c.OnResponse(func(r *colly.Response) {
		finish(&FetchedDocument{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        io.NopCloser(bytes.NewReader(r.Body)),
			FetchedAt:   time.Now(),
			Headers:     map[string][]string(*r.Headers),
		}, nil)
	})

	c.OnError(func(r *colly.Response, err error) {
		retries, _ := r.Request.Ctx.GetAny("retries").(int)
		retryable := r.StatusCode == 0 || shouldRetry(nil, r.StatusCode)
		if retryable && retries < f.MaxRetries && ctx.Err() == nil {
			r.Request.Ctx.Put("retries", retries+1)
			f.log.WithFields(logrus.Fields{"url": r.Request.URL.String(), "attempt": retries + 1}).WithError(err).Debug("retrying")
			time.Sleep(time.Duration(retries+1) * time.Second)
			if retryErr := r.Request.Retry(); retryErr == nil {
				return
			}
		}
		if r.StatusCode != 0 {
			err = fmt.Errorf("%w: %w", &ErrStatus{Code: r.StatusCode}, err)
		}
		finish(nil, fmt.Errorf("fetch failed after %d retries: %w", retries, err))
	})

	go func() {
		if err := c.Visit(targetURL); err != nil {
			finish(nil, fmt.Errorf("visit failed: %w", err))
			return
		}
		c.Wait()
		finish(nil, fmt.Errorf("no response received for %s", targetURL))
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
		return result, fetchErr
	}
}
