package storage

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
)

// ErrNotExist is returned by Read when no object is stored at the path
var ErrNotExist = errors.New("storage: object does not exist")

// ErrInvalidPath is returned for empty, absolute or escaping paths
var ErrInvalidPath = errors.New("storage: invalid path")

// Store is a durable key→bytes store addressed by slash-separated paths.
// Paths are caller-chosen; List must support hierarchical prefixes.
type Store interface {
	Write(ctx context.Context, p string, data []byte) error
	Read(ctx context.Context, p string) ([]byte, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, p string) error
	Exists(ctx context.Context, p string) (bool, error)
	URLFor(p string) string
	// List returns every object path below namespace, in lexical order.
	List(ctx context.Context, namespace string) ([]string, error)
}

// CleanPath normalizes p and rejects paths escaping the store root
func CleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

// contentTypeFor returns the content type from the path extension
func contentTypeFor(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// escapeSegments path-escapes each segment of p, keeping the separators
func escapeSegments(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
