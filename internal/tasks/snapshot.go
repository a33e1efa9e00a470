package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/topsync/internal/repositories"
	"github.com/desertthunder/topsync/internal/services"
	"golang.org/x/sync/errgroup"
)

// SnapshotLimit is the number of items requested for every top items snapshot.
const SnapshotLimit = 50

// TopSnapshot identifies one top items export.
type TopSnapshot struct {
	Kind      services.Kind
	TimeRange services.TimeRange
}

// BlobName returns the name the snapshot is stored under.
func (s TopSnapshot) BlobName() string {
	return repositories.TopBlobName(string(s.Kind), string(s.TimeRange))
}

// AllTopSnapshots lists every kind and time range combination, tracks before artists per range.
func AllTopSnapshots() []TopSnapshot {
	snapshots := make([]TopSnapshot, 0, len(services.Kinds)*len(services.TimeRanges))
	for _, tr := range services.TimeRanges {
		for _, k := range services.Kinds {
			snapshots = append(snapshots, TopSnapshot{Kind: k, TimeRange: tr})
		}
	}
	return snapshots
}

// SnapshotResult records the outcome of one export.
type SnapshotResult struct {
	Snapshot TopSnapshot
	Items    int
	Err      error
}

// SnapshotRunner collects top items and writes them to storage.
type SnapshotRunner struct {
	collector TopCollector
	exporter  Exporter
}

func NewSnapshotRunner(collector TopCollector, exporter Exporter) *SnapshotRunner {
	return &SnapshotRunner{collector: collector, exporter: exporter}
}

// ExportTop collects one kind/range pair and writes it as a snapshot.
func (r *SnapshotRunner) ExportTop(ctx context.Context, accessToken string, s TopSnapshot) (int, error) {
	items, err := r.collector.CollectTop(ctx, string(s.Kind), string(s.TimeRange), SnapshotLimit, accessToken)
	if err != nil {
		return 0, fmt.Errorf("collect %s: %w", s.BlobName(), err)
	}

	if err := r.exporter.Export(ctx, items, s.BlobName()); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Jobs returns one background [Job] per snapshot in [AllTopSnapshots].
func (r *SnapshotRunner) Jobs(accessToken string) []Job {
	snapshots := AllTopSnapshots()
	jobs := make([]Job, 0, len(snapshots))

	for _, s := range snapshots {
		jobs = append(jobs, Job{
			Name: s.BlobName(),
			Run: func(ctx context.Context) error {
				_, err := r.ExportTop(ctx, accessToken, s)
				return err
			},
		})
	}
	return jobs
}

// ExportAll runs every snapshot concurrently, at most workers at a time, and waits for all of them.
//
// One failed export does not stop the others; results are returned in [AllTopSnapshots] order.
func (r *SnapshotRunner) ExportAll(ctx context.Context, accessToken string, workers int, progress chan<- ProgressUpdate) []SnapshotResult {
	snapshots := AllTopSnapshots()
	results := make([]SnapshotResult, len(snapshots))

	if workers < 1 {
		workers = 1
	}

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, s := range snapshots {
		g.Go(func() error {
			n, err := r.ExportTop(gctx, accessToken, s)
			results[i] = SnapshotResult{Snapshot: s, Items: n, Err: err}

			mu.Lock()
			done++
			step := done
			mu.Unlock()

			if err != nil {
				sendProgress(progress, exportFailedUpdate(step, len(snapshots), s.BlobName(), err))
			} else {
				sendProgress(progress, exportCompletedUpdate(step, len(snapshots), s.BlobName()))
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
