package media

import (
	"context"
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shaoyi1998/blog-backend/internal/repository"
	pkglogger "github.com/shaoyi1998/blog-backend/pkg/logger"
	"github.com/shaoyi1998/blog-backend/pkg/storage"
)

// ReclaimResult counts one reclaim run
type ReclaimResult struct {
	Total     int
	Succeeded int
}

// Reclaimer deletes stored files that no asset record references
type Reclaimer struct {
	store  storage.Store
	assets repository.AssetRepository
}

// NewReclaimer creates a Reclaimer
func NewReclaimer(store storage.Store, assets repository.AssetRepository) *Reclaimer {
	return &Reclaimer{store: store, assets: assets}
}

// orphans returns files under Namespace minus the paths of current records
func (r *Reclaimer) orphans(ctx context.Context) ([]string, error) {
	files, err := r.store.List(ctx, Namespace)
	if err != nil {
		return nil, fmt.Errorf("list stored files: %w", err)
	}
	paths, err := r.assets.ListPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("list asset paths: %w", err)
	}

	diff := mapset.NewThreadUnsafeSet(files...).Difference(mapset.NewThreadUnsafeSet(paths...))
	out := diff.ToSlice()
	sort.Strings(out)
	return out, nil
}

// Reclaim deletes every orphaned file. Deletions are independent: a failure
// is logged and counted, and the remaining files are still attempted.
// The returned error covers only the candidate computation.
func (r *Reclaimer) Reclaim(ctx context.Context) (ReclaimResult, error) {
	candidates, err := r.orphans(ctx)
	if err != nil {
		return ReclaimResult{}, err
	}

	log := pkglogger.GetLogger()
	res := ReclaimResult{Total: len(candidates)}
	for _, p := range candidates {
		if err := r.store.Delete(ctx, p); err != nil {
			reclaimedFilesTotal.WithLabelValues("failed").Inc()
			log.Warn().Err(err).Str("path", p).Msg("failed to reclaim orphaned file")
			continue
		}
		reclaimedFilesTotal.WithLabelValues("deleted").Inc()
		res.Succeeded++
	}

	log.Info().
		Int("total", res.Total).
		Int("succeeded", res.Succeeded).
		Msg("orphan reclaim finished")
	return res, nil
}

// Audit reports records without files and files without records.
// Nothing is repaired.
func (r *Reclaimer) Audit(ctx context.Context) ([]*ConsistencyError, error) {
	files, err := r.store.List(ctx, Namespace)
	if err != nil {
		return nil, fmt.Errorf("list stored files: %w", err)
	}
	paths, err := r.assets.ListPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("list asset paths: %w", err)
	}

	fileSet := mapset.NewThreadUnsafeSet(files...)
	recordSet := mapset.NewThreadUnsafeSet(paths...)

	var issues []*ConsistencyError
	for p := range recordSet.Difference(fileSet).Iter() {
		issues = append(issues, &ConsistencyError{Path: p, Kind: MissingFile})
	}
	for p := range fileSet.Difference(recordSet).Iter() {
		issues = append(issues, &ConsistencyError{Path: p, Kind: UntrackedFile})
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Path != issues[j].Path {
			return issues[i].Path < issues[j].Path
		}
		return issues[i].Kind < issues[j].Kind
	})
	return issues, nil
}
