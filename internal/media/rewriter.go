package media

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/repository"
	pkglogger "github.com/shaoyi1998/blog-backend/pkg/logger"
	"github.com/shaoyi1998/blog-backend/pkg/storage"
)

// Policy is the media policy in force for one rewrite. It is read from the
// settings authority by the caller for every call.
type Policy struct {
	SaveAsFile bool
	Quality    int
}

// RewriteRequest is one document revision to process
type RewriteRequest struct {
	ArticleID uint64
	Title     string
	Content   string
}

// Failure is an inline image left un-substituted
type Failure struct {
	Index int
	Err   error
}

// RewriteResult is the outcome of a rewrite
type RewriteResult struct {
	Content string
	Created []domain.Asset
	// Superseded are the article's records no longer referenced by Content
	Superseded []domain.Asset
	Failures   []Failure
	// Journal undoes the file writes if the caller's transaction fails
	Journal *Journal
}

// Rewriter extracts inline images, stores them as assets and substitutes
// their URLs into the content.
//
// Rewrites of the same article must be serialized by the caller.
type Rewriter struct {
	extractor *Extractor
	codec     Codec
	store     storage.Store
	assets    repository.AssetRepository
	txm       repository.TransactionManager
}

// NewRewriter creates a Rewriter
func NewRewriter(
	extractor *Extractor,
	codec Codec,
	store storage.Store,
	assets repository.AssetRepository,
	txm repository.TransactionManager,
) *Rewriter {
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	if codec == nil {
		codec = JPEGCodec{}
	}
	return &Rewriter{
		extractor: extractor,
		codec:     codec,
		store:     store,
		assets:    assets,
		txm:       txm,
	}
}

type substitution struct {
	start, end int
	url        string
}

// Rewrite processes req under policy. Per-image failures are collected in
// the result; the returned error is reserved for failures that make the
// whole rewrite unusable (record lookups, cancellation).
//
// New images take indices in document order, skipping any index whose path
// the content still references or another article owns. The i-th new image
// therefore lands on index i only when no such path precedes it.
func (r *Rewriter) Rewrite(ctx context.Context, req RewriteRequest, policy Policy) (*RewriteResult, error) {
	result := &RewriteResult{Content: req.Content, Journal: NewJournal(r.store)}
	if !policy.SaveAsFile {
		return result, nil
	}
	quality := ClampQuality(policy.Quality)
	log := pkglogger.GetLogger()

	reserved, err := r.reservedPaths(ctx, req)
	if err != nil {
		return nil, err
	}

	var subs []substitution
	next := 0
	for occ, occErr := range r.extractor.Extract(req.Content) {
		if err := ctx.Err(); err != nil {
			result.Content = applySubstitutions(req.Content, subs)
			return result, err
		}

		for reserved.Contains(AssetPath(req.Title, next, r.codec.Ext())) {
			next++
		}
		path := AssetPath(req.Title, next, r.codec.Ext())
		next++

		if occErr != nil {
			r.fail(result, occ.Index, occErr)
			continue
		}

		data, err := r.codec.Compress(occ.Payload, quality)
		if err != nil {
			r.fail(result, occ.Index, &CodecError{Index: occ.Index, Err: err})
			continue
		}

		asset, err := r.persist(ctx, req.ArticleID, path, data, result.Journal)
		if err != nil {
			r.fail(result, occ.Index, err)
			continue
		}

		inlineImagesTotal.WithLabelValues("stored").Inc()
		storedBytesTotal.Add(float64(len(data)))
		log.Info().
			Uint64("article_id", req.ArticleID).
			Str("path", path).
			Int("size", len(data)).
			Msg("inline image stored")

		url := r.store.URLFor(path)
		if occ.InMarkup {
			url = html.EscapeString(url)
		}
		result.Created = append(result.Created, *asset)
		subs = append(subs, substitution{start: occ.Start, end: occ.End, url: url})
	}

	if len(subs) == 0 && len(result.Failures) == 0 {
		// nothing inline: no reconciliation at all
		return result, nil
	}

	result.Content = applySubstitutions(req.Content, subs)

	superseded, err := r.superseded(ctx, req.ArticleID, result.Content)
	if err != nil {
		return result, err
	}
	result.Superseded = superseded
	return result, nil
}

func (r *Rewriter) fail(result *RewriteResult, index int, err error) {
	kind := ErrorKind(err)
	inlineImagesTotal.WithLabelValues(kind).Inc()
	pkglogger.GetLogger().Warn().
		Err(err).
		Int("index", index).
		Str("kind", kind).
		Msg("inline image left in place")
	result.Failures = append(result.Failures, Failure{Index: index, Err: err})
}

// reservedPaths are paths a new image must not take: assets the content
// still references, and paths under this title owned by other articles.
func (r *Rewriter) reservedPaths(ctx context.Context, req RewriteRequest) (mapset.Set[string], error) {
	reserved := mapset.NewThreadUnsafeSet[string]()

	existing, err := r.assets.ListByPrefix(ctx, ArticlePrefix(req.Title))
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	refs := References(req.Content)
	for _, a := range existing {
		if a.ArticleID != req.ArticleID || r.referenced(refs, a.Path) {
			reserved.Add(a.Path)
		}
	}
	return reserved, nil
}

func (r *Rewriter) referenced(refs mapset.Set[string], path string) bool {
	return refs.Contains(r.store.URLFor(path))
}

// superseded lists the article's records the rewritten content no longer references
func (r *Rewriter) superseded(ctx context.Context, articleID uint64, content string) ([]domain.Asset, error) {
	owned, err := r.assets.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list article assets: %w", err)
	}
	refs := References(content)
	var out []domain.Asset
	for _, a := range owned {
		if !r.referenced(refs, a.Path) {
			out = append(out, a)
		}
	}
	return out, nil
}

// persist replaces whatever is stored at path with data as one unit: the old
// record and file go, the new file and record come, or nothing changes.
func (r *Rewriter) persist(ctx context.Context, articleID uint64, path string, data []byte, journal *Journal) (*domain.Asset, error) {
	var (
		created *domain.Asset
		entry   journalEntry
		wrote   bool
	)

	err := r.txm.ExecTx(ctx, func(ctx context.Context) error {
		prev, err := r.assets.FindByPath(ctx, path)
		if err != nil {
			return &StorageWriteError{Path: path, Err: err}
		}
		if prev != nil {
			if prev.ArticleID != articleID {
				return &StorageWriteError{Path: path, Err: ErrPathTaken}
			}
			if err := r.assets.Delete(ctx, prev.ID); err != nil {
				return &StorageDeleteError{Path: path, Err: err}
			}
		}

		entry, err = backup(ctx, r.store, path)
		if err != nil {
			return &StorageWriteError{Path: path, Err: err}
		}
		if err := r.store.Write(ctx, path, data); err != nil {
			return &StorageWriteError{Path: path, Err: err}
		}
		wrote = true

		asset := &domain.Asset{ArticleID: articleID, Path: path, Size: len(data)}
		if err := r.assets.Create(ctx, asset); err != nil {
			return &StorageWriteError{Path: path, Err: err}
		}
		created = asset
		return nil
	})
	if err != nil {
		if wrote {
			if rerr := entry.restore(context.WithoutCancel(ctx), r.store); rerr != nil {
				pkglogger.GetLogger().Error().
					Err(rerr).
					Str("path", path).
					Msg("failed to restore asset file after aborted write")
			}
		}
		var writeErr *StorageWriteError
		var delErr *StorageDeleteError
		if !errors.As(err, &writeErr) && !errors.As(err, &delErr) {
			err = &StorageWriteError{Path: path, Err: err}
		}
		return nil, err
	}

	journal.add(entry)
	return created, nil
}

// applySubstitutions replaces each span with its URL; spans are disjoint
func applySubstitutions(content string, subs []substitution) string {
	if len(subs) == 0 {
		return content
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].start < subs[j].start })

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, s := range subs {
		b.WriteString(content[last:s.start])
		b.WriteString(s.url)
		last = s.end
	}
	b.WriteString(content[last:])
	return b.String()
}
