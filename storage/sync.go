package storage

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mtgjson/mtgjson/internal/errs"
)

// syncWorkers is the bounded pool size for object-store partition uploads
// (spec §5: ~16 workers).
const syncWorkers = 16

// maxUploadAttempts is the retry budget per partition upload before it's
// folded into the run's BuildReport as non-fatal.
const maxUploadAttempts = 3

// Upload is one partition file to push to the object store.
type Upload struct {
	Key  string
	Data []byte
}

// SyncUploads pushes every upload to the object store with a bounded worker
// pool, retrying each with exponential backoff before giving up and
// recording an ObjectStoreUploadError in report (non-fatal: the next run
// will simply re-upload it).
func SyncUploads(ctx context.Context, client *Client, uploads []Upload, log *zap.Logger, report *errs.Builder) error {
	sem := semaphore.NewWeighted(syncWorkers)
	g, ctx := errgroup.WithContext(ctx)

	for _, u := range uploads {
		u := u
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			if err := uploadWithRetry(ctx, client, u, log); err != nil {
				report.Add("object-store-sync", &errs.ObjectStoreUploadError{Key: u.Key, Err: err})
			}
			return nil
		})
	}
	return g.Wait()
}

func uploadWithRetry(ctx context.Context, client *Client, u Upload, log *zap.Logger) error {
	var lastErr error
	for attempt := 0; attempt < maxUploadAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := client.Put(ctx, u.Key, u.Data); err != nil {
			lastErr = err
			log.Warn("object-store upload attempt failed", zap.String("key", u.Key), zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		return nil
	}
	return lastErr
}

// PruneLocalRetention deletes every file older than keep from the local
// price lake, matching the spec's rolling 90-day local window (remote
// retention is indefinite; this never touches the object store).
func PruneLocalRetention(dates []time.Time, keep time.Duration, now time.Time, remove func(time.Time) error) (int, error) {
	pruned := 0
	cutoff := now.Add(-keep)
	for _, d := range dates {
		if d.Before(cutoff) {
			if err := remove(d); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
