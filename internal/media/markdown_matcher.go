package media

import (
	"iter"
	"regexp"
)

// markdownImage matches ![alt](data:image/...) and captures the URI
var markdownImage = regexp.MustCompile(`!\[[^\]]*\]\(\s*((?i:data:image/)[^)\s]+)(?:\s+"[^"]*")?\s*\)`)

// MarkdownMatcher finds Markdown image links carrying a data:image URI
type MarkdownMatcher struct{}

// Candidates yields the URI span of every inline Markdown image
func (MarkdownMatcher) Candidates(content string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, m := range markdownImage.FindAllStringSubmatchIndex(content, -1) {
			c := Candidate{Start: m[2], End: m[3], URI: content[m[2]:m[3]]}
			if !yield(c) {
				return
			}
		}
	}
}

// NewMatcher returns the matcher for a content format name:
// "html", "markdown", or anything else for both combined.
func NewMatcher(format string) Matcher {
	switch format {
	case "html":
		return HTMLMatcher{}
	case "markdown":
		return MarkdownMatcher{}
	default:
		return CombinedMatcher{HTMLMatcher{}, MarkdownMatcher{}}
	}
}
