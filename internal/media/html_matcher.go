package media

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// HTMLMatcher finds <img> elements whose src carries a data:image URI.
// It tokenizes the markup once and tracks byte offsets from the raw tokens.
type HTMLMatcher struct{}

// Candidates yields the data URI span of every inline <img>
func (HTMLMatcher) Candidates(content string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		z := html.NewTokenizer(strings.NewReader(content))
		offset := 0
		for {
			tt := z.Next()
			if tt == html.ErrorToken {
				return
			}
			raw := string(z.Raw())
			tokenStart := offset
			offset += len(raw)

			if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
				continue
			}
			name, hasAttr := z.TagName()
			if string(name) != "img" || !hasAttr {
				continue
			}

			var src string
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "src" {
					src = string(val)
					break
				}
			}
			if !isInlineImageURI(src) {
				continue
			}

			start, end, ok := srcValueSpan(raw, src)
			if !ok {
				continue
			}
			c := Candidate{Start: tokenStart + start, End: tokenStart + end, URI: src, InMarkup: true}
			if !yield(c) {
				return
			}
		}
	}
}

// srcValueSpan walks the attributes of a raw start tag and returns the byte
// span of the first src value. decoded is the tokenizer's value for that
// attribute; the raw span may still hold character references, so the two
// are compared after unescaping.
func srcValueSpan(raw, decoded string) (int, int, bool) {
	i := 1
	for i < len(raw) && !isHTMLSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	for i < len(raw) {
		for i < len(raw) && (isHTMLSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			return 0, 0, false
		}

		keyStart := i
		i++ // a leading '=' belongs to the name
		for i < len(raw) && !isHTMLSpace(raw[i]) && raw[i] != '/' && raw[i] != '=' && raw[i] != '>' {
			i++
		}
		key := strings.ToLower(raw[keyStart:i])

		for i < len(raw) && isHTMLSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			continue
		}
		i++
		for i < len(raw) && isHTMLSpace(raw[i]) {
			i++
		}
		if i >= len(raw) {
			return 0, 0, false
		}

		var start, end int
		if q := raw[i]; q == '"' || q == '\'' {
			n := strings.IndexByte(raw[i+1:], q)
			if n < 0 {
				return 0, 0, false
			}
			start, end = i+1, i+1+n
			i = end + 1
		} else {
			start = i
			for i < len(raw) && !isHTMLSpace(raw[i]) && raw[i] != '>' {
				i++
			}
			end = i
		}

		if key == "src" {
			if html.UnescapeString(raw[start:end]) != decoded {
				return 0, 0, false
			}
			return start, end, true
		}
	}
	return 0, 0, false
}

func isHTMLSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
