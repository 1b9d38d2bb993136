package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/smartcv/searchpanel/internal/logger"
)

type retentionRepository interface {
	RemoveOldRows(ctx context.Context, before time.Time) (int64, error)
}

// ResultsCleaner purges warehouse rows past their retention window so the
// warehouse holds only recent snapshots.
type ResultsCleaner struct {
	results       retentionRepository
	cron          *cron.Cron
	retentionDays int
}

func NewResultsCleaner(results retentionRepository, retentionDays int) (*ResultsCleaner, error) {

	if retentionDays <= 0 {
		return nil, errors.New("retention in days must be greater than zero")
	}

	rc := &ResultsCleaner{
		results:       results,
		cron:          cron.New(),
		retentionDays: retentionDays,
	}

	_, err := rc.cron.AddFunc("0 3 * * *", rc.cleanOldRows)
	if err != nil {
		return nil, err
	}

	rc.cron.Start()
	log.Infof("results cleaner started, retention in days: %d", rc.retentionDays)
	return rc, nil
}

func (rc *ResultsCleaner) Stop() {
	rc.cron.Stop()
}

func (rc *ResultsCleaner) cleanOldRows() {
	cutoff := time.Now().Add(-time.Duration(rc.retentionDays) * 24 * time.Hour)
	rowsAffected, err := rc.results.RemoveOldRows(context.Background(), cutoff)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("Failed to clean old results: %v", err)
	} else {
		log.Infof("Old results were cleaned at %v, affected rows: %v", time.Now(), rowsAffected)
	}
}
