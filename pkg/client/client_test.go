package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNavigator struct {
	mu      sync.Mutex
	current string
	visited []string
}

func (n *fakeNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *fakeNavigator) Navigate(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visited = append(n.visited, url)
}

func (n *fakeNavigator) visits() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.visited))
	copy(out, n.visited)
	return out
}

func newUnauthorizedServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"unauthorized"}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGuardSingleFlight(t *testing.T) {
	guard := &ReauthGuard{}

	assert.True(t, guard.TryEnter())
	assert.False(t, guard.TryEnter())
	assert.True(t, guard.Engaged())

	guard.Reset()
	assert.False(t, guard.Engaged())
	assert.True(t, guard.TryEnter())
}

func TestUnauthorizedBurstNavigatesOnce(t *testing.T) {
	server := newUnauthorizedServer(t)
	navigator := &fakeNavigator{current: "/dashboard/settings"}
	c := New(Options{BaseURL: server.URL, Navigator: navigator})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.GetJSON(context.Background(), "/auth/me", nil)
		}()
	}
	wg.Wait()

	visits := navigator.visits()
	require.Len(t, visits, 1)
	assert.Equal(t, "/auth/signin?from=%2Fdashboard%2Fsettings", visits[0])
}

func TestUnauthorizedResponseStillPropagates(t *testing.T) {
	server := newUnauthorizedServer(t)
	navigator := &fakeNavigator{current: "/dashboard"}
	c := New(Options{BaseURL: server.URL, Navigator: navigator})

	req, err := http.NewRequest(http.MethodGet, server.URL+"/auth/me", nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRedirectSuppressedOnAuthPages(t *testing.T) {
	server := newUnauthorizedServer(t)

	for _, current := range []string{"/auth/signin", "/auth/signin?from=%2Fdashboard", "/auth/signup"} {
		navigator := &fakeNavigator{current: current}
		c := New(Options{BaseURL: server.URL, Navigator: navigator})

		_ = c.GetJSON(context.Background(), "/auth/me", nil)
		assert.Empty(t, navigator.visits(), current)
	}
}

func TestResetReenablesRedirect(t *testing.T) {
	server := newUnauthorizedServer(t)
	navigator := &fakeNavigator{current: "/dashboard"}
	guard := &ReauthGuard{}
	c := New(Options{BaseURL: server.URL, Navigator: navigator, Guard: guard})

	_ = c.GetJSON(context.Background(), "/auth/me", nil)
	_ = c.GetJSON(context.Background(), "/auth/me", nil)
	require.Len(t, navigator.visits(), 1)

	// A completed navigation releases the latch; the next session of 401s
	// navigates again.
	guard.Reset()
	_ = c.GetJSON(context.Background(), "/auth/me", nil)
	assert.Len(t, navigator.visits(), 2)
}

func TestSuccessfulResponseDoesNotEngageGuard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"user-1"}}`))
	}))
	t.Cleanup(server.Close)

	navigator := &fakeNavigator{current: "/dashboard"}
	guard := &ReauthGuard{}
	c := New(Options{BaseURL: server.URL, Navigator: navigator, Guard: guard})

	var out struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "/auth/me", &out))
	assert.Equal(t, "user-1", out.User.ID)
	assert.Empty(t, navigator.visits())
	assert.False(t, guard.Engaged())
}

func TestPostJSONSendsBody(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"signed out"}`))
	}))
	t.Cleanup(server.Close)

	c := New(Options{BaseURL: server.URL})

	var out struct {
		Message string `json:"message"`
	}
	err := c.PostJSON(context.Background(), "/auth/signout", map[string]string{"x": "y"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "signed out", out.Message)
}
