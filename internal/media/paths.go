package media

import (
	"fmt"
	"strings"
)

// Namespace is the storage prefix every article image lives under
const Namespace = "article_images"

// AssetPath returns the storage path of image index of the article titled title
func AssetPath(title string, index int, ext string) string {
	return fmt.Sprintf("%s/%s/%d%s", Namespace, titleSegment(title), index, ext)
}

// ArticlePrefix returns the storage prefix of the article titled title
func ArticlePrefix(title string) string {
	return Namespace + "/" + titleSegment(title) + "/"
}

// titleSegment makes title usable as exactly one path segment
func titleSegment(title string) string {
	seg := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, strings.TrimSpace(title))

	if seg == "" || strings.Trim(seg, ".") == "" {
		return "_"
	}
	return seg
}
