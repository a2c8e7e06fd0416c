// Package apify runs Apify actors and fetches their dataset items.
// It is used to pull Google Maps places from the crawler actor.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL      = "https://api.apify.com"
	defaultPollInterval = 5 * time.Second
)

// Terminal actor run statuses.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusAborted   = "ABORTED"
	StatusTimedOut  = "TIMED-OUT"
)

// Client starts actor runs and retrieves their results.
type Client interface {
	StartRun(ctx context.Context, actorID string, input any) (*Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	WaitForRun(ctx context.Context, runID string) (*Run, error)
	DatasetItems(ctx context.Context, datasetID string) ([]Place, error)
}

// Run describes an actor run.
type Run struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// Place is one Google Maps result from the crawler actor's dataset.
type Place struct {
	Title        string  `json:"title"`
	CategoryName string  `json:"categoryName"`
	Address      string  `json:"address"`
	Phone        string  `json:"phone"`
	Website      string  `json:"website"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	TotalScore   float64 `json:"totalScore"`
	ReviewsCount int     `json:"reviewsCount"`
}

// GMapsInput is the input document for the Google Maps crawler actor.
type GMapsInput struct {
	SearchStringsArray        []string `json:"searchStringsArray"`
	LocationQuery             string   `json:"locationQuery,omitempty"`
	MaxCrawledPlacesPerSearch int      `json:"maxCrawledPlacesPerSearch,omitempty"`
	Language                  string   `json:"language,omitempty"`
}

type runEnvelope struct {
	Data Run `json:"data"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithPollInterval overrides how often WaitForRun checks run status.
func WithPollInterval(d time.Duration) Option {
	return func(c *httpClient) {
		c.poll = rate.NewLimiter(rate.Every(d), 1)
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	poll    *rate.Limiter
}

// NewClient creates an Apify API client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		poll: rate.NewLimiter(rate.Every(defaultPollInterval), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StartRun starts an actor run with the given input document.
func (c *httpClient) StartRun(ctx context.Context, actorID string, input any) (*Run, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal input")
	}

	url := fmt.Sprintf("%s/v2/acts/%s/runs", c.baseURL, actorID)
	var env runEnvelope
	if err := c.do(ctx, http.MethodPost, url, bytes.NewReader(body), &env, http.StatusCreated); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *httpClient) GetRun(ctx context.Context, runID string) (*Run, error) {
	url := fmt.Sprintf("%s/v2/actor-runs/%s", c.baseURL, runID)
	var env runEnvelope
	if err := c.do(ctx, http.MethodGet, url, nil, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// WaitForRun polls until the run reaches a terminal status or ctx is
// cancelled. Polling is paced by the client's poll interval.
func (c *httpClient) WaitForRun(ctx context.Context, runID string) (*Run, error) {
	for {
		if err := c.poll.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "apify: wait for run")
		}

		run, err := c.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}

		switch run.Status {
		case StatusSucceeded:
			return run, nil
		case StatusFailed, StatusAborted, StatusTimedOut:
			return run, eris.Errorf("apify: run %s ended with status %s", runID, run.Status)
		}
	}
}

// DatasetItems fetches every item in a dataset.
func (c *httpClient) DatasetItems(ctx context.Context, datasetID string) ([]Place, error) {
	url := fmt.Sprintf("%s/v2/datasets/%s/items?format=json", c.baseURL, datasetID)
	var places []Place
	if err := c.do(ctx, http.MethodGet, url, nil, &places, http.StatusOK); err != nil {
		return nil, err
	}
	return places, nil
}

func (c *httpClient) do(ctx context.Context, method, url string, body io.Reader, out any, wantStatus int) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return eris.Wrap(err, "apify: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "apify: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "apify: read response")
	}

	if resp.StatusCode != wantStatus {
		return eris.Errorf("apify: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "apify: unmarshal response")
	}
	return nil
}
