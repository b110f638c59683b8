package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"taskhive/internal/domain/task"
)

const scanTimeout = 30 * time.Second

// Scheduler runs the periodic reminder scan. Every minute it looks for
// unsent reminders whose time has passed, logs the delivery and marks them
// sent so they fire at most once.
type Scheduler struct {
	cron   *cron.Cron
	repo   task.TaskRepository
	logger *zap.Logger
}

func New(repo task.TaskRepository, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		repo:   repo,
		logger: logger,
	}
}

// Start registers the reminder scan and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", s.scanReminders); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("reminder scheduler stopped")
}

func (s *Scheduler) scanReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	now := time.Now()
	tasks, err := s.repo.FindWithDueReminders(ctx, now)
	if err != nil {
		s.logger.Error("reminder scan failed", zap.Error(err))
		return
	}

	for i := range tasks {
		t := &tasks[i]
		for idx, reminder := range t.Reminders {
			if reminder.Sent || reminder.Time.After(now) {
				continue
			}

			// Delivery is a log line; email and push transports hang off
			// this point when they exist.
			s.logger.Info("reminder due",
				zap.String("task_id", t.ID.Hex()),
				zap.String("user_id", t.UserID.Hex()),
				zap.String("title", t.Title),
				zap.String("channel", string(reminder.Channel)),
				zap.Time("reminder_time", reminder.Time))

			if err := s.repo.MarkReminderSent(ctx, t.ID, idx); err != nil {
				s.logger.Error("failed to mark reminder sent",
					zap.String("task_id", t.ID.Hex()),
					zap.Int("index", idx),
					zap.Error(err))
			}
		}
	}
}
