package topstep

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway imitates the four provider endpoints. Replies are raw JSON so
// tests control the exact wire shape.
type fakeGateway struct {
	mu sync.Mutex

	loginReplies    []string
	validateReplies []string
	searchReply     string
	barsReply       string

	loginCalls    int
	validateCalls int
	searchCalls   int
	barsCalls     int

	lastLogin      map[string]any
	lastSearch     map[string]any
	lastBars       map[string]any
	validateTokens []string
	queryTokens    []string
	loginAccept    string
}

func newFakeGateway(t *testing.T) (*fakeGateway, *httptest.Server) {
	t.Helper()
	g := &fakeGateway{
		loginReplies:    []string{`{"success":true,"token":"tok-1","errorCode":0,"errorMessage":null}`},
		validateReplies: []string{`{"success":true,"errorCode":0}`},
		searchReply:     `{"contracts":[{"id":"CON.F.US.MGC.Z25","name":"MGCZ5","activeContract":true}],"success":true}`,
		barsReply:       `{"bars":[{"t":"2025-11-21T00:00:00Z","o":4075.0,"h":4101.1,"l":4019.0,"c":4062.8,"v":455342}],"success":true}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(pathLogin, func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.loginCalls++
		g.lastLogin = decodeBody(t, r)
		g.loginAccept = r.Header.Get("accept")
		writeJSON(w, next(g.loginReplies, g.loginCalls))
	})
	mux.HandleFunc(pathValidate, func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.validateCalls++
		g.validateTokens = append(g.validateTokens, bearer(r))
		writeJSON(w, next(g.validateReplies, g.validateCalls))
	})
	mux.HandleFunc(pathContractSearch, func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.searchCalls++
		g.lastSearch = decodeBody(t, r)
		g.queryTokens = append(g.queryTokens, bearer(r))
		writeJSON(w, g.searchReply)
	})
	mux.HandleFunc(pathRetrieveBars, func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.barsCalls++
		g.lastBars = decodeBody(t, r)
		g.queryTokens = append(g.queryTokens, bearer(r))
		writeJSON(w, g.barsReply)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return g, srv
}

// next returns the reply for the n-th call (1-based); the last reply repeats.
func next(replies []string, n int) string {
	if n > len(replies) {
		return replies[len(replies)-1]
	}
	return replies[n-1]
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	assert.Equal(t, http.MethodPost, r.Method)
	out := map[string]any{}
	if r.Body == nil {
		return out
	}
	raw, _ := io.ReadAll(r.Body)
	if len(raw) == 0 {
		return out
	}
	assert.NoError(t, json.Unmarshal(raw, &out), "decode request body")
	return out
}

// gatewayStats is a copy of the recorded traffic, taken under the lock.
type gatewayStats struct {
	loginCalls     int
	validateCalls  int
	searchCalls    int
	barsCalls      int
	lastLogin      map[string]any
	lastSearch     map[string]any
	lastBars       map[string]any
	validateTokens []string
	queryTokens    []string
	loginAccept    string
}

func (g *fakeGateway) stats() gatewayStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return gatewayStats{
		loginCalls:     g.loginCalls,
		validateCalls:  g.validateCalls,
		searchCalls:    g.searchCalls,
		barsCalls:      g.barsCalls,
		lastLogin:      g.lastLogin,
		lastSearch:     g.lastSearch,
		lastBars:       g.lastBars,
		validateTokens: append([]string(nil), g.validateTokens...),
		queryTokens:    append([]string(nil), g.queryTokens...),
		loginAccept:    g.loginAccept,
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 11, 24, 14, 30, 15, 750_000_000, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestClient(t *testing.T, srv *httptest.Server, clock *fakeClock) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:  srv.URL,
		UserName: "trader",
		APIKey:   "secret-key",
	}, WithHTTPClient(srv.Client()), WithClock(clock.Now))
	require.NoError(t, err)
	return c
}
