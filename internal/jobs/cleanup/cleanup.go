package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

const (
	defaultRetention = 30 * 24 * time.Hour
	defaultBatchSize = 100
)

type ProfileSweeper interface {
	ListDeletedWithPhotos(ctx context.Context, cutoff time.Time, limit int) ([]model.Profile, error)
	ClearPhotos(ctx context.Context, id string, now time.Time) error
}

type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

type Result struct {
	Profiles int
	Objects  int
	Failed   int
}

// Job removes photo objects of profiles that have been soft-deleted for longer
// than the retention window.
type Job struct {
	profiles  ProfileSweeper
	storage   ObjectDeleter
	retention time.Duration
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

func NewMediaCleanupJob(profiles ProfileSweeper, storage ObjectDeleter, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = defaultRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		profiles:  profiles,
		storage:   storage,
		retention: retention,
		batchSize: defaultBatchSize,
		now:       time.Now,
		logger:    logger,
	}
}

// Run sweeps one batch. A profile keeps its photo references when any of its
// objects failed to delete, so the next run retries it.
func (j *Job) Run(ctx context.Context) (Result, error) {
	var res Result
	if j.profiles == nil || j.storage == nil {
		return res, nil
	}

	now := j.now().UTC()
	stale, err := j.profiles.ListDeletedWithPhotos(ctx, now.Add(-j.retention), j.batchSize)
	if err != nil {
		return res, fmt.Errorf("list deleted profiles with photos: %w", err)
	}

	for _, p := range stale {
		clean := true
		for _, photo := range p.Photos {
			if err := j.storage.Delete(ctx, photo.ObjectKey); err != nil {
				clean = false
				res.Failed++
				j.logger.Warn("failed to delete profile photo from storage",
					zap.String("profile_id", p.ID),
					zap.String("object_key", photo.ObjectKey),
					zap.Error(err),
				)
				continue
			}
			res.Objects++
		}
		if !clean {
			continue
		}
		if err := j.profiles.ClearPhotos(ctx, p.ID, now); err != nil {
			return res, fmt.Errorf("clear photos of profile %s: %w", p.ID, err)
		}
		res.Profiles++
	}

	if res.Profiles > 0 || res.Failed > 0 {
		j.logger.Info("media cleanup completed",
			zap.Int("profiles", res.Profiles),
			zap.Int("objects", res.Objects),
			zap.Int("failed", res.Failed),
		)
	}
	return res, nil
}

// RunEvery runs the job immediately and then on every tick until ctx ends.
func (j *Job) RunEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	if _, err := j.Run(ctx); err != nil {
		j.logger.Warn("media cleanup failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				j.logger.Warn("media cleanup failed", zap.Error(err))
			}
		}
	}
}
