package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/snipbot/internal/config"
	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRef = core.BlobRef{Repo: "acme/repo", Branch: "main", Path: "src/a.py"}

func fastRetry() *retry.Config {
	return &retry.Config{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		BackoffFactor: 1.0,
	}
}

func newTestClient(api, raw *httptest.Server, token string) *Client {
	cfg := &config.GitHubConfig{Token: token, Timeout: time.Second}
	if api != nil {
		cfg.APIURL = api.URL
	}
	if raw != nil {
		cfg.RawURL = raw.URL
	}
	return NewClient(cfg, fastRetry())
}

func TestClient_FetchBlob(t *testing.T) {
	const file = "l1\nl2\nl3\n"
	// GitHub wraps base64 content every 60 characters.
	encoded := base64.StdEncoding.EncodeToString([]byte(file))
	wrapped := encoded[:4] + "\n" + encoded[4:]

	tests := []struct {
		name       string
		apiHandler http.HandlerFunc
		rawHandler http.HandlerFunc
		want       string
		wantErr    error
		wantRawHit bool
	}{
		{
			name: "inline content from contents api",
			apiHandler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"encoding":"base64","content":%q}`, wrapped)
			},
			want: file,
		},
		{
			name: "fallback to raw when content missing",
			apiHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
			},
			rawHandler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, file)
			},
			want:       file,
			wantRawHit: true,
		},
		{
			name: "raw not found sentinel",
			apiHandler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"message":"Not Found"}`)
			},
			rawHandler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "404: Not Found")
			},
			wantErr:    core.ErrNotFound,
			wantRawHit: true,
		},
		{
			name: "raw not found status",
			apiHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			rawHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantErr:    core.ErrNotFound,
			wantRawHit: true,
		},
		{
			name: "api server error falls back",
			apiHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			rawHandler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, file)
			},
			want:       file,
			wantRawHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rawHits atomic.Int32

			api := httptest.NewServer(tt.apiHandler)
			defer api.Close()

			raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rawHits.Add(1)
				if tt.rawHandler == nil {
					t.Errorf("unexpected raw request %s", r.URL.Path)
					return
				}
				tt.rawHandler(w, r)
			}))
			defer raw.Close()

			c := newTestClient(api, raw, "")
			got, err := c.FetchBlob(context.Background(), testRef)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, string(got))
			}
			assert.Equal(t, tt.wantRawHit, rawHits.Load() > 0)
		})
	}
}

func TestClient_RequestShape(t *testing.T) {
	var (
		apiPath, apiQuery, auth, accept, ua string
		rawPath                             string
	)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiPath = r.URL.Path
		apiQuery = r.URL.Query().Get("ref")
		auth = r.Header.Get("Authorization")
		accept = r.Header.Get("Accept")
		ua = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{}`)
	}))
	defer api.Close()

	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.Path
		fmt.Fprint(w, "x")
	}))
	defer raw.Close()

	c := newTestClient(api, raw, "secret")
	_, err := c.FetchBlob(context.Background(), testRef)
	require.NoError(t, err)

	assert.Equal(t, "/repos/acme/repo/contents/src/a.py", apiPath)
	assert.Equal(t, "main", apiQuery)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "application/vnd.github.v3+json", accept)
	assert.Contains(t, ua, "SnipBot")
	assert.Equal(t, "/acme/repo/main/src/a.py", rawPath)
}

func TestClient_ConcurrentFetchesShareRequest(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		fmt.Fprintf(w, `{"encoding":"base64","content":%q}`, base64.StdEncoding.EncodeToString([]byte("shared")))
	}))
	defer api.Close()

	c := newTestClient(api, nil, "")

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := c.FetchBlob(context.Background(), testRef)
			if err == nil {
				results[i] = string(b)
			}
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	var hits atomic.Int32
	received := make(chan struct{}, 1)
	release := make(chan struct{})

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		received <- struct{}{}
		<-release
		fmt.Fprintf(w, `{"encoding":"base64","content":%q}`, base64.StdEncoding.EncodeToString([]byte("shared")))
	}))
	defer api.Close()

	c := newTestClient(api, nil, "")

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.FetchBlob(leaderCtx, testRef)
		leaderErr <- err
	}()
	<-received

	followerErr := make(chan error, 1)
	var follower []byte
	go func() {
		var err error
		follower, err = c.FetchBlob(context.Background(), testRef)
		followerErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancelLeader()
	require.ErrorIs(t, <-leaderErr, context.Canceled)

	close(release)
	require.NoError(t, <-followerErr)
	assert.Equal(t, "shared", string(follower))
	assert.Equal(t, int32(1), hits.Load())
}
