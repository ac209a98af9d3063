package scheduler

import (
	"context"
	"time"

	"concertly/internal/notifications"
	"concertly/internal/shared/config"
	"concertly/pkg/logger"
)

// StalePendingCanceller cancels pending reservations older than maxAge and
// returns how many were cancelled. Implemented by the reservations service.
type StalePendingCanceller interface {
	CancelStalePending(ctx context.Context, maxAge time.Duration) (int, error)
}

// JobProcessor runs the periodic maintenance jobs: concert reminder emails
// and stale pending-reservation cleanup.
type JobProcessor struct {
	repo      Repository
	notifier  notifications.Service
	canceller StalePendingCanceller
	cfg       *config.SchedulerConfig
	log       *logger.Logger
	done      chan struct{}
}

func NewJobProcessor(repo Repository, notifier notifications.Service, canceller StalePendingCanceller, cfg *config.SchedulerConfig, log *logger.Logger) *JobProcessor {
	return &JobProcessor{
		repo:      repo,
		notifier:  notifier,
		canceller: canceller,
		cfg:       cfg,
		log:       log,
		done:      make(chan struct{}),
	}
}

func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.runReminderLoop(ctx)
	go jp.runCleanupLoop(ctx)
	jp.log.Info("scheduler jobs started",
		"reminder_interval", jp.cfg.ReminderInterval.String(),
		"cleanup_interval", jp.cfg.PendingCleanupInterval.String(),
	)
}

func (jp *JobProcessor) Stop() {
	close(jp.done)
}

func (jp *JobProcessor) runReminderLoop(ctx context.Context) {
	ticker := time.NewTicker(jp.cfg.ReminderInterval)
	defer ticker.Stop()

	jp.sendReminders(ctx)
	for {
		select {
		case <-ticker.C:
			jp.sendReminders(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) runCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(jp.cfg.PendingCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.cleanupStalePending(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) sendReminders(ctx context.Context) {
	candidates, err := jp.repo.ListReminderCandidates(ctx, jp.cfg.ReminderWindow)
	if err != nil {
		jp.log.WithError(err).Warn("failed to list reminder candidates")
		return
	}
	if len(candidates) == 0 {
		return
	}

	sent := 0
	for _, c := range candidates {
		err := jp.notifier.SendConcertReminder(ctx, notifications.ConcertReminder{
			ReservationID: c.ReservationID,
			ConcertName:   c.ConcertName,
			ConcertDate:   c.ConcertDate.Format("2006-01-02"),
			Venue:         c.Venue,
			CustomerName:  c.CustomerName,
			CustomerEmail: c.CustomerEmail,
			Quantity:      c.Quantity,
		})
		if err != nil {
			jp.log.WithError(err).Warn("failed to send concert reminder", "reservation_id", c.ReservationID)
			continue
		}
		if err := jp.repo.MarkReminded(ctx, c.ReservationID); err != nil {
			jp.log.WithError(err).Warn("failed to record reminder", "reservation_id", c.ReservationID)
			continue
		}
		sent++
	}
	jp.log.Info("concert reminders sent", "count", sent, "candidates", len(candidates))
}

func (jp *JobProcessor) cleanupStalePending(ctx context.Context) {
	cancelled, err := jp.canceller.CancelStalePending(ctx, jp.cfg.PendingMaxAge)
	if err != nil {
		jp.log.WithError(err).Warn("stale pending cleanup failed")
		return
	}
	if cancelled > 0 {
		jp.log.Info("stale pending reservations cancelled", "count", cancelled)
	}
}
