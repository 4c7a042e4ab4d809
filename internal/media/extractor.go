package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"sort"
	"strings"
)

// Candidate is an inline image reference found by a Matcher.
// Start and End delimit the data URI inside the content. InMarkup marks
// spans inside an HTML attribute, whose replacement must be HTML-escaped.
type Candidate struct {
	Start    int
	End      int
	URI      string
	InMarkup bool
}

// Matcher finds inline image references in one markup syntax.
// Candidates must be yielded in ascending, non-overlapping order.
type Matcher interface {
	Candidates(content string) iter.Seq[Candidate]
}

// Occurrence is one inline image decoded from content
type Occurrence struct {
	Index    int // position among all matched references, left to right
	Start    int
	End      int
	MIMEType string
	Payload  []byte
	InMarkup bool
}

// Extractor turns matcher candidates into decoded occurrences
type Extractor struct {
	matcher Matcher
}

// NewExtractor creates an Extractor; a nil matcher defaults to HTML
func NewExtractor(m Matcher) *Extractor {
	if m == nil {
		m = HTMLMatcher{}
	}
	return &Extractor{matcher: m}
}

// Extract scans content left to right. Every range re-scans from the start.
// A malformed payload yields a *DecodeError for that index and scanning
// continues with the next reference.
func (e *Extractor) Extract(content string) iter.Seq2[Occurrence, error] {
	return func(yield func(Occurrence, error) bool) {
		index := 0
		for c := range e.matcher.Candidates(content) {
			occ := Occurrence{Index: index, Start: c.Start, End: c.End, InMarkup: c.InMarkup}
			index++

			mimeType, payload, err := decodeDataURI(c.URI)
			if err != nil {
				if !yield(occ, &DecodeError{Index: occ.Index, Err: err}) {
					return
				}
				continue
			}
			occ.MIMEType = mimeType
			occ.Payload = payload
			if !yield(occ, nil) {
				return
			}
		}
	}
}

var (
	errNotDataURI = errors.New("not a data URI")
	errNotImage   = errors.New("data URI is not an image")
	errEmpty      = errors.New("empty payload")
)

// isInlineImageURI reports whether s looks like data:image/...
func isInlineImageURI(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) > len("data:image/") && strings.EqualFold(s[:len("data:image/")], "data:image/")
}

// decodeDataURI decodes data:image/<subtype>[;params][;base64],<payload>
func decodeDataURI(uri string) (string, []byte, error) {
	uri = strings.TrimSpace(uri)
	if len(uri) < 5 || !strings.EqualFold(uri[:5], "data:") {
		return "", nil, errNotDataURI
	}

	header, data, ok := strings.Cut(uri[5:], ",")
	if !ok {
		return "", nil, fmt.Errorf("missing ',' separator")
	}

	params := strings.Split(header, ";")
	mimeType := strings.ToLower(strings.TrimSpace(params[0]))
	if !strings.HasPrefix(mimeType, "image/") {
		return "", nil, errNotImage
	}

	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var payload []byte
	if isBase64 {
		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\t', '\n', '\r':
				return -1
			}
			return r
		}, data)
		cleaned = strings.NewReplacer("%2B", "+", "%2b", "+", "%2F", "/", "%2f", "/", "%3D", "=", "%3d", "=").Replace(cleaned)

		var err error
		if strings.HasSuffix(cleaned, "=") || len(cleaned)%4 == 0 {
			payload, err = base64.StdEncoding.DecodeString(cleaned)
		} else {
			payload, err = base64.RawStdEncoding.DecodeString(cleaned)
		}
		if err != nil {
			return "", nil, fmt.Errorf("base64: %w", err)
		}
	} else {
		unescaped, err := url.PathUnescape(data)
		if err != nil {
			return "", nil, fmt.Errorf("percent-encoding: %w", err)
		}
		payload = []byte(unescaped)
	}

	if len(payload) == 0 {
		return "", nil, errEmpty
	}
	return mimeType, payload, nil
}

// CombinedMatcher merges several matchers, dropping candidates that overlap
// an earlier one.
type CombinedMatcher []Matcher

// Candidates collects every matcher's candidates and yields them in order
func (cm CombinedMatcher) Candidates(content string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		var all []Candidate
		for _, m := range cm {
			for c := range m.Candidates(content) {
				all = append(all, c)
			}
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].Start < all[j].Start })

		end := -1
		for _, c := range all {
			if c.Start < end {
				continue
			}
			end = c.End
			if !yield(c) {
				return
			}
		}
	}
}
