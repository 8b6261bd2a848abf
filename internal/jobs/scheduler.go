package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"coursehub/internal/notify"
	"coursehub/internal/repository"
)

// Scheduler runs the periodic jobs that live in the API process: payment
// reminders for stalled applications and a dead-letter depth check.
type Scheduler struct {
	cron          *cron.Cron
	queue         *redis.Client
	apps          *repository.ApplicationRepository
	dispatcher    *notify.StreamDispatcher
	deadLetter    string
	reminderAfter time.Duration
	log           zerolog.Logger
}

func NewScheduler(
	queue *redis.Client,
	apps *repository.ApplicationRepository,
	dispatcher *notify.StreamDispatcher,
	deadLetter string,
	reminderAfter time.Duration,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		queue:         queue,
		apps:          apps,
		dispatcher:    dispatcher,
		deadLetter:    deadLetter,
		reminderAfter: reminderAfter,
		log:           log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.sendPaymentReminders); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@every 15m", s.reportDeadLetterDepth); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("cron jobs did not finish before shutdown timeout")
	}
}

func (s *Scheduler) sendPaymentReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	targets, err := s.apps.ListPaymentReminderTargets(ctx, time.Now().Add(-s.reminderAfter))
	if err != nil {
		s.log.Error().Err(err).Msg("payment reminder query failed")
		return
	}

	for _, t := range targets {
		err := s.dispatcher.Enqueue(ctx, notify.Notification{
			Kind:           notify.KindLearnerPaymentReminder,
			RecipientEmail: t.LearnerEmail,
			RecipientName:  t.LearnerName,
			Data:           map[string]string{"course_title": t.CourseTitle},
		})
		if err != nil {
			s.log.Error().Err(err).Str("application_id", t.ApplicationID).Msg("enqueue payment reminder failed")
			continue
		}
		if err := s.apps.MarkPaymentReminded(ctx, t.ApplicationID); err != nil {
			// Worst case the learner gets a second reminder next hour.
			s.log.Error().Err(err).Str("application_id", t.ApplicationID).Msg("mark reminded failed")
		}
	}

	if len(targets) > 0 {
		s.log.Info().Int("count", len(targets)).Msg("payment reminders enqueued")
	}
}

func (s *Scheduler) reportDeadLetterDepth() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	depth, err := s.queue.XLen(ctx, s.deadLetter).Result()
	if err != nil {
		s.log.Error().Err(err).Msg("dead-letter depth check failed")
		return
	}
	if depth > 0 {
		s.log.Warn().Int64("depth", depth).Str("stream", s.deadLetter).Msg("dead-lettered notifications awaiting operator attention")
	}
}
