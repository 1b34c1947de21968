package usecase

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MarkupRenderer converts the markdown subset emitted by the completion
// models into display HTML. It handles fenced code, headings, rules,
// flat lists, links and emphasis; everything else passes through.
type MarkupRenderer struct {
	enableDebugLogging bool
}

// NewMarkupRenderer creates a new markup renderer
func NewMarkupRenderer(enableDebugLogging bool) *MarkupRenderer {
	return &MarkupRenderer{
		enableDebugLogging: enableDebugLogging,
	}
}

// Compiled patterns for the inline passes, applied in this order over the
// joined document. Emphasis captures exclude their own delimiter, so
// unmatched markers stay literal and doubled markers never match singly.
var (
	inlineCodePattern       = regexp.MustCompile("`([^`\n]+)`")
	linkPattern             = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldStarPattern         = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnderscorePattern   = regexp.MustCompile(`__([^_]+)__`)
	italicStarPattern       = regexp.MustCompile(`\*([^*]+)\*`)
	italicUnderscorePattern = regexp.MustCompile(`_([^_]+)_`)
	numberedItemPattern     = regexp.MustCompile(`^\d+\.\s+`)
	lineBreakRunPattern     = regexp.MustCompile(`(?:<br>\s*){2,}`)
)

// Render converts text to display markup. Empty input stays empty.
func (r *MarkupRenderer) Render(text string) string {
	if text == "" {
		return ""
	}

	stripped, blocks, nonce := extractFencedCode(text)

	// Phase 1: line scan for block structure
	lines := strings.Split(stripped, "\n")
	out := make([]string, 0, len(lines))
	inList := false
	closeList := func() {
		if inList {
			out = append(out, "</ul>")
			inList = false
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "### "):
			closeList()
			out = append(out, "<h3>"+strings.TrimSpace(trimmed[4:])+"</h3>")
		case strings.HasPrefix(trimmed, "## "):
			closeList()
			out = append(out, "<h2>"+strings.TrimSpace(trimmed[3:])+"</h2>")
		case strings.HasPrefix(trimmed, "# "):
			closeList()
			out = append(out, "<h1>"+strings.TrimSpace(trimmed[2:])+"</h1>")
		case trimmed == "---":
			closeList()
			out = append(out, "<hr>")
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			out = append(out, "<li>"+strings.TrimSpace(trimmed[2:])+"</li>")
		case numberedItemPattern.MatchString(trimmed):
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			out = append(out, "<li>"+numberedItemPattern.ReplaceAllString(trimmed, "")+"</li>")
		case trimmed == "":
			out = append(out, "<br>")
		default:
			closeList()
			out = append(out, line)
		}
	}
	closeList()

	html := strings.Join(out, "\n")

	// Phase 2: inline passes over the joined document
	html = inlineCodePattern.ReplaceAllString(html, "<code>${1}</code>")
	html = linkPattern.ReplaceAllString(html, `<a href="${2}" target="_blank" rel="noopener noreferrer">${1}</a>`)
	html = boldStarPattern.ReplaceAllString(html, "<strong>${1}</strong>")
	html = boldUnderscorePattern.ReplaceAllString(html, "<strong>${1}</strong>")
	html = italicStarPattern.ReplaceAllString(html, "<em>${1}</em>")
	html = italicUnderscorePattern.ReplaceAllString(html, "<em>${1}</em>")

	// Collapse break runs before the code blocks come back, so fenced
	// content stays byte-identical to the input.
	html = lineBreakRunPattern.ReplaceAllString(html, "<br><br>")

	for i, code := range blocks {
		html = strings.Replace(html, placeholderToken(nonce, i), "<pre><code>"+code+"</code></pre>", 1)
	}

	if r.enableDebugLogging {
		log.Printf("[RENDER] %d chars in, %d code blocks, %d chars out", len(text), len(blocks), len(html))
	}
	return html
}

// extractFencedCode pulls triple-backtick blocks out of the text and
// replaces them with per-call placeholder tokens, so no payload text can
// collide with a placeholder. An unterminated fence swallows the rest of
// the input as code.
func extractFencedCode(text string) (string, []string, string) {
	if !strings.Contains(text, "```") {
		return text, nil, ""
	}

	nonce := uuid.NewString()
	var blocks []string
	var b strings.Builder
	for {
		start := strings.Index(text, "```")
		if start < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		rest := text[start+3:]
		end := strings.Index(rest, "```")
		if end < 0 {
			blocks = append(blocks, rest)
			b.WriteString(placeholderToken(nonce, len(blocks)-1))
			break
		}
		blocks = append(blocks, rest[:end])
		b.WriteString(placeholderToken(nonce, len(blocks)-1))
		text = rest[end+3:]
	}
	return b.String(), blocks, nonce
}

func placeholderToken(nonce string, i int) string {
	return "\x00cb-" + nonce + "-" + strconv.Itoa(i) + "\x00"
}
