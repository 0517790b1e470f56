package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandevgo/snipbot/internal/config"
	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/pkg/log"
	"github.com/sandevgo/snipbot/pkg/retry"
	"golang.org/x/sync/singleflight"
)

const (
	maxResponseSize  = 1 << 20 // 1MB limit
	rawNotFoundBody  = "404: Not Found"
	acceptHeader     = "application/vnd.github.v3+json"
	defaultAPIURL    = "https://api.github.com"
	defaultRawURL    = "https://raw.githubusercontent.com"
	defaultTimeout   = 15 * time.Second
	contentsEncoding = "base64"
)

var _ core.BlobFetcher = (*Client)(nil)

type contentsResponse struct {
	Content  *string `json:"content"`
	Encoding string  `json:"encoding"`
}

// Client fetches single files from GitHub, first through the contents API and
// then from raw.githubusercontent.com when the API returns no inline content.
type Client struct {
	client  *http.Client
	retrier *retry.Retrier
	group   singleflight.Group
	timeout time.Duration
	apiURL  string
	rawURL  string
	token   string
}

func NewClient(cfg *config.GitHubConfig, retryCfg *retry.Config) *Client {
	if retryCfg == nil {
		retryCfg = retry.NewDefaultConfig()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		retrier: retry.NewRetrier(retryCfg),
		timeout: timeout,
		apiURL:  strings.TrimSuffix(withDefault(cfg.APIURL, defaultAPIURL), "/"),
		rawURL:  strings.TrimSuffix(withDefault(cfg.RawURL, defaultRawURL), "/"),
		token:   cfg.Token,
	}
}

// FetchBlob returns the file content. Concurrent calls for the same ref share
// one fetch; a caller that gives up does not cancel it for the others.
func (c *Client) FetchBlob(ctx context.Context, ref core.BlobRef) ([]byte, error) {
	ch := c.group.DoChan(ref.String(), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetch(fetchCtx, ref)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		log.FromCtx(ctx).Debug().Str("blob", ref.String()).Bool("shared", res.Shared).Msg("fetched github blob")
		return res.Val.([]byte), nil
	}
}

func (c *Client) fetch(ctx context.Context, ref core.BlobRef) ([]byte, error) {
	content, err := c.fetchContents(ctx, ref)
	if err == nil && content != nil {
		return content, nil
	}
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Str("blob", ref.String()).Msg("contents api failed, falling back to raw")
	}
	return c.fetchRaw(ctx, ref)
}

// fetchContents returns nil content without error when the API answered but
// carried no inline file body (directories, large files, error payloads).
func (c *Client) fetchContents(ctx context.Context, ref core.BlobRef) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s",
		c.apiURL, ref.Repo, escapePath(ref.Path), url.QueryEscape(ref.Branch))

	var body []byte
	err := c.retrier.Do(ctx, func() error {
		var status int
		var err error
		body, status, err = c.get(ctx, endpoint, true)
		if err != nil {
			return err
		}
		if status >= 500 {
			return fmt.Errorf("HTTP %d", status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var payload contentsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil
	}
	if payload.Content == nil || (payload.Encoding != "" && payload.Encoding != contentsEncoding) {
		return nil, nil
	}

	encoded := strings.NewReplacer("\n", "", "\r", "").Replace(*payload.Content)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode contents: %w", err)
	}
	return decoded, nil
}

func (c *Client) fetchRaw(ctx context.Context, ref core.BlobRef) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.rawURL, ref.Repo, escapePath(ref.Branch), escapePath(ref.Path))

	var body []byte
	err := c.retrier.Do(ctx, func() error {
		var status int
		var err error
		body, status, err = c.get(ctx, endpoint, false)
		if err != nil {
			return err
		}

		switch {
		case status == http.StatusNotFound,
			bytes.Equal(bytes.TrimSpace(body), []byte(rawNotFoundBody)):
			return retry.Permanent(core.ErrNotFound)
		case status >= 500:
			return fmt.Errorf("HTTP %d", status)
		case status >= 400:
			return retry.Permanent(fmt.Errorf("HTTP %d", status))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint string, api bool) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", core.SnipUserAgent)
	req.Header.Set("Accept", acceptHeader)
	if api && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
