// Package client is the API client used by frontends of the auth service.
// It observes unauthenticated failures on outbound calls and performs a
// single, de-duplicated navigation to the sign-in entry, preserving the
// caller's location as a return path.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultSignInPath = "/auth/signin"

// Navigator abstracts the embedding client's location: reading the current
// path and performing a full navigation.
type Navigator interface {
	CurrentPath() string
	Navigate(url string)
}

// Options configures a Client. Guard is an explicit dependency rather than
// package state so each running client instance owns its own latch.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Guard      *ReauthGuard
	Navigator  Navigator
	// SignInPath is the reauthentication entry point. Defaults to /auth/signin.
	SignInPath string
	// AuthPrefixes are locations where the redirect is suppressed; being on
	// the sign-in page and getting a 401 must not navigate again.
	AuthPrefixes []string
}

// Client wraps an *http.Client with the reauthentication trigger.
type Client struct {
	base         string
	http         *http.Client
	guard        *ReauthGuard
	navigator    Navigator
	signInPath   string
	authPrefixes []string
}

// New builds a client, applying defaults.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	guard := opts.Guard
	if guard == nil {
		guard = &ReauthGuard{}
	}
	signInPath := opts.SignInPath
	if signInPath == "" {
		signInPath = defaultSignInPath
	}
	authPrefixes := opts.AuthPrefixes
	if len(authPrefixes) == 0 {
		authPrefixes = []string{"/auth/signin", "/auth/signup"}
	}
	return &Client{
		base:         strings.TrimRight(opts.BaseURL, "/"),
		http:         httpClient,
		guard:        guard,
		navigator:    opts.Navigator,
		signInPath:   signInPath,
		authPrefixes: authPrefixes,
	}
}

// Do executes the request. A 401 response triggers the reauthentication
// navigation at most once per guard cycle; the response still propagates to
// the caller unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.maybeRedirect()
	}
	return resp, nil
}

// GetJSON performs a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

// PostJSON performs a POST with a JSON body and decodes the response into
// out. Either body or out may be nil.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error   json.RawMessage `json:"error"`
			Message string          `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Message != "" {
			return fmt.Errorf("api request failed: %s", payload.Message)
		}
		return fmt.Errorf("api request failed: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) maybeRedirect() {
	if c.navigator == nil {
		return
	}
	current := c.navigator.CurrentPath()
	for _, prefix := range c.authPrefixes {
		if strings.HasPrefix(current, prefix) {
			return
		}
	}
	if !c.guard.TryEnter() {
		return
	}
	c.navigator.Navigate(c.signInPath + "?from=" + url.QueryEscape(current))
}
