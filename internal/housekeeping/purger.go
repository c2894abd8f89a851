// Package housekeeping удаляет открытые смены с прошедшей датой.
package housekeeping

import (
	"context"
	"time"

	"shiftbot/internal/domain"

	"github.com/sirupsen/logrus"
)

// Purger периодически удаляет смены, дата которых раньше сегодняшней.
type Purger struct {
	shifts   domain.ShiftRepository
	loc      *time.Location
	interval time.Duration
	now      func() time.Time
	logger   logrus.FieldLogger
}

// NewPurger создает Purger. "Сегодня" считается в часовом поясе loc.
func NewPurger(shifts domain.ShiftRepository, loc *time.Location, interval time.Duration, logger logrus.FieldLogger) *Purger {
	if loc == nil {
		loc = time.UTC
	}
	return &Purger{
		shifts:   shifts,
		loc:      loc,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// PurgeOnce удаляет смены с датой раньше сегодняшней и возвращает их число.
func (p *Purger) PurgeOnce(ctx context.Context) (int64, error) {
	today := domain.DateOf(p.now().In(p.loc))
	n, err := p.shifts.DeleteOpenBefore(ctx, today)
	if err != nil {
		return 0, err
	}
	p.logger.WithFields(logrus.Fields{
		"before":  today.Format(domain.DateLayout),
		"removed": n,
	}).Info("Expired shifts purged")
	return n, nil
}

// Run запускает очистку сразу и затем раз в interval до отмены ctx.
func (p *Purger) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.PurgeOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.WithError(err).Error("Failed to purge expired shifts")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
