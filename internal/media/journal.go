package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaoyi1998/blog-backend/pkg/storage"
)

type journalEntry struct {
	path    string
	prev    []byte
	hadPrev bool
}

// Journal records file-side changes made inside a database transaction so
// they can be undone when the transaction does not commit.
type Journal struct {
	store   storage.Store
	entries []journalEntry
}

// NewJournal creates an empty Journal over store
func NewJournal(store storage.Store) *Journal {
	return &Journal{store: store}
}

// backup reads the current content of path before it is overwritten or deleted
func backup(ctx context.Context, store storage.Store, path string) (journalEntry, error) {
	prev, err := store.Read(ctx, path)
	switch {
	case err == nil:
		return journalEntry{path: path, prev: prev, hadPrev: true}, nil
	case errors.Is(err, storage.ErrNotExist):
		return journalEntry{path: path}, nil
	default:
		return journalEntry{}, err
	}
}

// restore puts a single path back to its recorded state
func (e journalEntry) restore(ctx context.Context, store storage.Store) error {
	if e.hadPrev {
		return store.Write(ctx, e.path, e.prev)
	}
	return store.Delete(ctx, e.path)
}

func (j *Journal) add(e journalEntry) {
	if j != nil {
		j.entries = append(j.entries, e)
	}
}

// Len returns the number of recorded changes
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	return len(j.entries)
}

// Revert restores every recorded path, newest first
func (j *Journal) Revert(ctx context.Context) error {
	if j == nil {
		return nil
	}
	var errs []error
	for i := len(j.entries) - 1; i >= 0; i-- {
		e := j.entries[i]
		if err := e.restore(ctx, j.store); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", e.path, err))
		}
	}
	j.entries = nil
	return errors.Join(errs...)
}
