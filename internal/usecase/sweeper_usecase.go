package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/logger"
)

const sweepBatchSize = 500

// SweepReport summarises one sweeper run.
type SweepReport struct {
	Scanned    int      `json:"scanned"`
	Referenced int      `json:"referenced"`
	TooRecent  int      `json:"too_recent"`
	Orphans    []string `json:"orphans"`
	Deleted    int      `json:"deleted"`
	Failed     int      `json:"failed"`
}

// OrphanSweeper removes stored objects that no resume row points at.
// Objects newer than the grace period are kept because their row may still be
// in flight.
type OrphanSweeper struct {
	store  domain.ObjectJanitor
	repo   domain.ResumeRepository
	prefix string
	grace  time.Duration
	dryRun bool
	now    func() time.Time
}

func NewOrphanSweeper(store domain.ObjectJanitor, repo domain.ResumeRepository, visibility string, grace time.Duration, dryRun bool) *OrphanSweeper {
	return &OrphanSweeper{
		store:  store,
		repo:   repo,
		prefix: strings.Trim(visibility, "/") + "/",
		grace:  grace,
		dryRun: dryRun,
		now:    time.Now,
	}
}

func (s *OrphanSweeper) Run(ctx context.Context) (*SweepReport, error) {
	objects, err := s.store.List(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	report := &SweepReport{Scanned: len(objects), Orphans: []string{}}
	cutoff := s.now().Add(-s.grace)

	var candidates []string
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			report.TooRecent++
			continue
		}
		candidates = append(candidates, obj.Path)
	}

	for start := 0; start < len(candidates); start += sweepBatchSize {
		end := start + sweepBatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		referenced, err := s.repo.ExistingFilePaths(ctx, batch)
		if err != nil {
			return report, fmt.Errorf("lookup file paths: %w", err)
		}

		for _, path := range batch {
			if referenced[path] {
				report.Referenced++
				continue
			}
			report.Orphans = append(report.Orphans, path)
			if s.dryRun {
				continue
			}
			if err := s.store.Delete(ctx, path); err != nil {
				report.Failed++
				logger.Log.Error("Failed to delete orphaned object", "path", path, "error", err)
				continue
			}
			report.Deleted++
		}
	}

	logger.Log.Info("Orphan sweep finished",
		"scanned", report.Scanned,
		"orphans", len(report.Orphans),
		"deleted", report.Deleted,
		"dry_run", s.dryRun,
	)
	return report, nil
}
