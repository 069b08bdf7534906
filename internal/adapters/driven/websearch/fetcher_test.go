package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSendsBearerAndPathQuery(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("search results body"))
	}))
	defer server.Close()

	f := NewFetcher(Config{BaseURL: server.URL, APIKey: "secret-key"})
	text, err := f.Fetch(context.Background(), "yoga sutras meaning")

	require.NoError(t, err)
	assert.Equal(t, "search results body", text)
	assert.Equal(t, "/yoga%20sutras%20meaning", gotPath)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}

func TestFetchTruncatesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 10000)))
	}))
	defer server.Close()

	f := NewFetcher(Config{BaseURL: server.URL, APIKey: "k", MaxRunes: 100})
	text, err := f.Fetch(context.Background(), "q")

	require.NoError(t, err)
	assert.Len(t, text, 100)
}

func TestFetchNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(Config{BaseURL: server.URL, APIKey: "k"})
	_, err := f.Fetch(context.Background(), "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestFetchTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	f := NewFetcher(Config{BaseURL: server.URL, APIKey: "k", Timeout: 20 * time.Millisecond})
	start := time.Now()
	_, err := f.Fetch(context.Background(), "q")

	require.Error(t, err)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "the timeout is a hard bound")
}

func TestEnabledRequiresKeyAndEndpoint(t *testing.T) {
	assert.False(t, NewFetcher(Config{}).Enabled())
	assert.False(t, NewFetcher(Config{BaseURL: "http://example.com"}).Enabled())
	assert.False(t, NewFetcher(Config{APIKey: "k"}).Enabled())
	assert.True(t, NewFetcher(Config{BaseURL: "http://example.com", APIKey: "k"}).Enabled())
}

func TestFetchDisabledErrors(t *testing.T) {
	f := NewFetcher(Config{})
	_, err := f.Fetch(context.Background(), "q")
	assert.Error(t, err)
}

func TestFetchStripsHTMLResponses(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>Results</title>
<script>track();</script><style>body{}</style></head>
<body><div>The Yoga S&#363;tras were compiled by Patanjali.</div>
<p>They describe the eight limbs of practice.</p></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer server.Close()

	f := NewFetcher(Config{BaseURL: server.URL, APIKey: "k"})
	text, err := f.Fetch(context.Background(), "yoga sutras")

	require.NoError(t, err)
	assert.Contains(t, text, "The Yoga Sūtras were compiled by Patanjali.")
	assert.Contains(t, text, "eight limbs")
	assert.NotContains(t, text, "<div>")
	assert.NotContains(t, text, "track()")
}

func TestStripHTML(t *testing.T) {
	got := stripHTML(`<p>one</p><br><ul><li>two</li></ul><!-- hidden -->three &amp; four`)

	assert.Equal(t, "one\ntwo\nthree & four", got)
}

func TestSetCredentialsTakesEffectWithoutRestart(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("results"))
	}))
	defer server.Close()

	// Starts unconfigured, as when no key is in the config file yet.
	f := NewFetcher(Config{})
	assert.False(t, f.Enabled())
	_, err := f.Fetch(context.Background(), "q")
	require.Error(t, err)

	f.SetCredentials(server.URL+"/", "pasted-key")
	assert.True(t, f.Enabled())

	text, err := f.Fetch(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "results", text)
	assert.Equal(t, "Bearer pasted-key", gotAuth)
}
