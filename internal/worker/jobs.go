package worker

import (
	"context"
	"fmt"
	"time"

	"cinema-showtime/internal/usecase"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 2 * time.Minute

// cronLogger routes robfig/cron's logging through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Sweeper periodically releases holds whose timer was lost.
type Sweeper struct {
	cron    *cron.Cron
	timeout usecase.TimeoutService
	log     *zap.Logger
}

func NewSweeper(timeout usecase.TimeoutService, interval time.Duration, log *zap.Logger) (*Sweeper, error) {
	if interval <= 0 {
		interval = time.Minute
	}

	log = log.With(zap.String("job", "sweeper"))
	cl := cronLogger{log: log.Sugar()}

	s := &Sweeper{
		cron:    cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		timeout: timeout,
		log:     log,
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.run); err != nil {
		return nil, fmt.Errorf("schedule sweeper: %w", err)
	}
	return s, nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.timeout.SweepExpired(ctx); err != nil {
		s.log.Error("Sweep failed", zap.Error(err))
	}
}

func (s *Sweeper) Start() {
	s.cron.Start()
	s.log.Info("Expired hold sweeper started")
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Reminders sends show reminders on a cron schedule.
type Reminders struct {
	scheduler gocron.Scheduler
	reminder  usecase.ReminderService
	log       *zap.Logger
}

func NewReminders(reminder usecase.ReminderService, expr string, loc *time.Location, log *zap.Logger) (*Reminders, error) {
	if loc == nil {
		loc = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create reminder scheduler: %w", err)
	}

	r := &Reminders{
		scheduler: s,
		reminder:  reminder,
		log:       log.With(zap.String("job", "reminders")),
	}

	_, err = s.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(r.run),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule reminders %q: %w", expr, err)
	}
	return r, nil
}

func (r *Reminders) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := r.reminder.SendShowReminders(ctx); err != nil {
		r.log.Error("Reminder run failed", zap.Error(err))
	}
}

func (r *Reminders) Start() {
	r.scheduler.Start()
	r.log.Info("Show reminder scheduler started")
}

func (r *Reminders) Stop() error {
	return r.scheduler.Shutdown()
}
