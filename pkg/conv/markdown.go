package conv

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// MaxTelegramMessageLen stays below Telegram's 4096 character limit.
const MaxTelegramMessageLen = 4000

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(tgPolicy.SanitizeBytes(unsafeHTML))
}

// SplitHTML cuts text into chunks of at most maxLen bytes, preferring
// newline boundaries past the first third of a chunk. Cuts never land inside
// a tag, an entity or a multi-byte rune, and tags left open at a cut are
// closed there and reopened at the start of the next chunk.
func SplitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	carried := 0
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		limit := maxLen
		var cut int
		var open []openTag
		for {
			cut = cutPoint(text, limit)
			if cut <= carried {
				cut = runeFloor(text, maxLen)
			}
			open = openTags(text[:cut])
			closing := closingLen(open)
			if cut+closing <= maxLen || limit <= maxLen/2 {
				break
			}
			limit = min(limit-1, maxLen-closing)
		}

		chunks = append(chunks, text[:cut]+closeTags(open))

		rest := strings.TrimSpace(text[cut:])
		reopen := reopenTags(open)
		if rest == "" || len(reopen) >= maxLen/2 {
			reopen = ""
		}
		carried = len(reopen)
		text = reopen + rest
	}
	return chunks
}

type openTag struct {
	name string
	raw  string
}

var htmlTag = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9-]*)[^>]*>`)

func cutPoint(text string, limit int) int {
	if idx := strings.LastIndex(text[:limit], "\n"); idx > limit/3 {
		return idx
	}

	cut := runeFloor(text, limit)
	head := text[:cut]
	if lt := strings.LastIndexByte(head, '<'); lt > strings.LastIndexByte(head, '>') {
		cut = lt
	}
	head = text[:cut]
	if amp := strings.LastIndexByte(head, '&'); amp > strings.LastIndexByte(head, ';') {
		cut = amp
	}
	if cut == 0 {
		return runeFloor(text, limit)
	}
	return cut
}

func runeFloor(text string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}

func openTags(html string) []openTag {
	var open []openTag
	for _, m := range htmlTag.FindAllStringSubmatch(html, -1) {
		raw, closing, name := m[0], m[1] == "/", strings.ToLower(m[2])
		switch {
		case strings.HasSuffix(raw, "/>"):
		case !closing:
			open = append(open, openTag{name: name, raw: raw})
		default:
			for i := len(open) - 1; i >= 0; i-- {
				if open[i].name == name {
					open = open[:i]
					break
				}
			}
		}
	}
	return open
}

func closeTags(open []openTag) string {
	var b strings.Builder
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</" + open[i].name + ">")
	}
	return b.String()
}

func closingLen(open []openTag) int {
	n := 0
	for _, t := range open {
		n += len(t.name) + 3
	}
	return n
}

func reopenTags(open []openTag) string {
	var b strings.Builder
	for _, t := range open {
		b.WriteString(t.raw)
	}
	return b.String()
}
