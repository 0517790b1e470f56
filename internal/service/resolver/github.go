package resolver

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/pkg/log"
)

var (
	ErrLineOutOfRange = errors.New("line range outside of file")
	ErrEmptyRange     = errors.New("line range selects no content")
)

var blobURLPattern = regexp.MustCompile(
	`https://github\.com/(?P<repo>[a-zA-Z0-9-]+/[\w.-]+)/blob/(?P<branch>[\w.-]+)` +
		`/(?P<path>[^#>\s]+)(?:#L(?P<start>\d+)(?:-L(?P<end>\d+))?)?`,
)

type previewSuppressor interface {
	SuppressPreview(ctx context.Context, msg core.Message) error
}

// GitHubLink resolves a link to a file on github.com into its content.
type GitHubLink struct {
	fetcher    core.BlobFetcher
	suppressor previewSuppressor
}

func NewGitHubLink(fetcher core.BlobFetcher, suppressor previewSuppressor) *GitHubLink {
	return &GitHubLink{
		fetcher:    fetcher,
		suppressor: suppressor,
	}
}

func (r *GitHubLink) Name() string {
	return "github"
}

func (r *GitHubLink) Resolve(ctx context.Context, msg core.Message) (*core.Snippet, error) {
	ref, lines, ok := ParseBlobURL(msg.Content)
	if !ok {
		return nil, nil
	}

	if err := r.suppressor.SuppressPreview(ctx, msg); err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("link preview not suppressed")
	}

	content, err := r.fetcher.FetchBlob(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}

	text := string(content)
	if lines.Start > 0 {
		text, err = SelectLines(text, lines)
		if err != nil {
			return nil, err
		}
	}

	s, err := core.NewSnippet([]byte(text), path.Base(ref.Path))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseBlobURL extracts the first github blob link in text.
func ParseBlobURL(text string) (core.BlobRef, core.LineRange, bool) {
	m := blobURLPattern.FindStringSubmatch(text)
	if m == nil {
		return core.BlobRef{}, core.LineRange{}, false
	}

	group := func(name string) string {
		return m[blobURLPattern.SubexpIndex(name)]
	}

	ref := core.BlobRef{
		Repo:   group("repo"),
		Branch: group("branch"),
		Path:   strings.TrimSuffix(group("path"), "/"),
	}

	var lines core.LineRange
	lines.Start, _ = strconv.Atoi(group("start"))
	lines.End, _ = strconv.Atoi(group("end"))
	return ref, lines, true
}

// SelectLines narrows text to a 1-indexed inclusive range. Without an end only
// the start line is kept. An end past the last line is clamped.
func SelectLines(text string, r core.LineRange) (string, error) {
	all := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if strings.HasSuffix(text, "\n") {
		all = all[:len(all)-1]
	}

	if r.Start < 1 || r.Start > len(all) {
		return "", fmt.Errorf("%w: %s of %d lines", ErrLineOutOfRange, r, len(all))
	}
	if r.End == 0 {
		return all[r.Start-1], nil
	}

	end := min(r.End, len(all))
	if end < r.Start {
		return "", fmt.Errorf("%w: %s", ErrEmptyRange, r)
	}
	return strings.Join(all[r.Start-1:end], "\n"), nil
}
