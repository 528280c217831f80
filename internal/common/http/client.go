// Package http is a thin HTTP client that stamps every request with the
// feed's bearer token and JSON accept header.
package http

import (
	"context"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	token      string
}

func NewClient(timeout time.Duration, token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		token: token,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.decorate(req)
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	c.decorate(req)
	return c.httpClient.Do(req)
}

func (c *Client) decorate(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
}
