package resolver

import (
	"context"
	"strings"

	"github.com/sandevgo/snipbot/internal/core"
)

const fence = "```"

// CodeBlock detects a message that is entirely one fenced code block.
type CodeBlock struct{}

func NewCodeBlock() *CodeBlock {
	return &CodeBlock{}
}

func (r *CodeBlock) Name() string {
	return "codeblock"
}

func (r *CodeBlock) Resolve(ctx context.Context, msg core.Message) (*core.Snippet, error) {
	ext, content, ok := ParseFence(msg.Content)
	if !ok {
		return nil, nil
	}

	s, err := core.NewSnippet([]byte(content), core.UnnamedFilename(ext))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseFence splits a fenced block into its language tag and body. It reports
// false unless text starts and ends with a fence and the body is non-empty.
func ParseFence(text string) (lang, body string, ok bool) {
	text = strings.TrimSpace(text)
	if len(text) < 2*len(fence) || !strings.HasPrefix(text, fence) || !strings.HasSuffix(text, fence) {
		return "", "", false
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(text, fence), fence)
	lines := strings.Split(inner, "\n")

	lang = strings.TrimSpace(lines[0])
	body = strings.Trim(strings.Join(lines[1:], "\n"), "\n")
	if strings.TrimSpace(body) == "" {
		return "", "", false
	}
	return lang, body, true
}
