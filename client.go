// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aqlair

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Connection is the transport the toolkit runs on. Every call blocks
// until the server responds; the parsed JSON body is returned on
// success. A response that declares the server error envelope is turned
// into an *APIError, a non-JSON response into a *ContentTypeError.
//
// Path segments are joined under the server's API prefix; a segment may
// itself contain a slash (document handles are `collection/key`).
type Connection interface {
	Get(ctx context.Context, path []string, params url.Values) (map[string]any, error)
	Post(ctx context.Context, path []string, params url.Values, body any) (map[string]any, error)
	Put(ctx context.Context, path []string, params url.Values, body any) (map[string]any, error)
	Patch(ctx context.Context, path []string, params url.Values, body any) (map[string]any, error)
	Delete(ctx context.Context, path []string, params url.Values) (map[string]any, error)
}

// Client is the HTTP implementation of Connection.
type Client struct {
	endpoint string
	database string
	username string
	password string
	hc       *http.Client
}

// NewClient returns a Client for the given endpoint, e.g.
// "http://localhost:8529", using http.DefaultClient. Use Config.NewClient
// for a client with authentication and a sized connection pool.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		hc:       http.DefaultClient,
	}
}

// url joins the path segments onto the endpoint under the API prefix.
// A configured database is selected with the `_db` prefix.
func (c *Client) url(path []string) string {
	segments := make([]string, 0, len(path)+3)
	segments = append(segments, c.endpoint)
	if c.database != "" {
		segments = append(segments, "_db", c.database)
	}
	segments = append(segments, "_api")
	segments = append(segments, path...)
	return strings.Join(segments, "/")
}

func (c *Client) do(ctx context.Context, method string, path []string, params url.Values, body any) (map[string]any, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("cannot encode request body: %s", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	target := c.url(path)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return nil, &ContentTypeError{ContentType: contentType}
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("cannot decode response body: %s", err)
	}

	if isError, _ := result["error"].(bool); isError {
		return nil, &APIError{
			Code:    intField(result, "code"),
			Num:     intField(result, "errorNum"),
			Message: stringField(result, "errorMessage"),
		}
	}
	return result, nil
}

func (c *Client) Get(ctx context.Context, path []string, params url.Values) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

func (c *Client) Post(ctx context.Context, path []string, params url.Values, body any) (map[string]any, error) {
	return c.do(ctx, http.MethodPost, path, params, body)
}

func (c *Client) Put(ctx context.Context, path []string, params url.Values, body any) (map[string]any, error) {
	return c.do(ctx, http.MethodPut, path, params, body)
}

func (c *Client) Patch(ctx context.Context, path []string, params url.Values, body any) (map[string]any, error) {
	return c.do(ctx, http.MethodPatch, path, params, body)
}

func (c *Client) Delete(ctx context.Context, path []string, params url.Values) (map[string]any, error) {
	return c.do(ctx, http.MethodDelete, path, params, nil)
}

// intField reads a numeric envelope field. JSON numbers decode as
// float64.
func intField(m map[string]any, key string) int {
	if f, ok := m[key].(float64); ok {
		return int(f)
	}
	return 0
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
