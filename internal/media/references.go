package media

import (
	"html"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	xhtml "golang.org/x/net/html"
)

// markdownLink captures the destination of [text](dest) and ![alt](dest)
var markdownLink = regexp.MustCompile(`\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)

// References returns the URLs content links to: src and href values of HTML
// elements with character references decoded, and Markdown link targets.
func References(content string) mapset.Set[string] {
	refs := mapset.NewThreadUnsafeSet[string]()

	z := xhtml.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		if tt != xhtml.StartTagToken && tt != xhtml.SelfClosingTagToken {
			continue
		}
		_, hasAttr := z.TagName()
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			switch string(key) {
			case "src", "href":
				refs.Add(strings.TrimSpace(string(val)))
			}
		}
	}

	for _, m := range markdownLink.FindAllStringSubmatch(content, -1) {
		refs.Add(m[1])
		refs.Add(html.UnescapeString(m[1]))
	}
	return refs
}
