package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultReminderWindow applies when the run cadence is unknown.
const defaultReminderWindow = 10 * time.Minute

type ReminderService interface {
	// SendShowReminders enqueues a reminder for every paid booking whose show
	// starts roughly one lead time from now. It returns the number enqueued.
	SendShowReminders(ctx context.Context) (int, error)
}

type reminderService struct {
	repo      *repository.Repository
	publisher EventPublisher
	lead      time.Duration
	window    time.Duration
	loc       *time.Location
	log       *zap.Logger
	now       func() time.Time
}

// NewReminderService builds a reminder service whose runs happen every
// window. Each run covers the shows starting in [tick+lead-window, tick+lead),
// so consecutive runs tile the timeline and every show is reminded once.
func NewReminderService(repo *repository.Repository, publisher EventPublisher, lead, window time.Duration, loc *time.Location, log *zap.Logger) ReminderService {
	if lead <= 0 {
		lead = 8 * time.Hour
	}
	if window <= 0 {
		window = defaultReminderWindow
	}
	return &reminderService{
		repo:      repo,
		publisher: publisher,
		lead:      lead,
		window:    window,
		loc:       loc,
		log:       log.With(zap.String("service", "reminder")),
		now:       time.Now,
	}
}

func (s *reminderService) SendShowReminders(ctx context.Context) (int, error) {
	// Cron fires on minute boundaries; drop the scheduling delay.
	tick := s.now().Truncate(time.Minute)
	to := tick.Add(s.lead)
	from := to.Add(-s.window)

	shows, err := s.repo.Show.FindStartingBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("find upcoming shows: %w", err)
	}
	if len(shows) == 0 {
		return 0, nil
	}

	byID := make(map[uuid.UUID]*entity.Show, len(shows))
	ids := make([]uuid.UUID, 0, len(shows))
	for _, show := range shows {
		byID[show.ID] = show
		ids = append(ids, show.ID)
	}

	bookings, err := s.repo.Booking.FindPaidByShowIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("find paid bookings: %w", err)
	}

	titles := make(map[string]string)
	sent := make(map[string]bool)
	queued := 0

	for _, b := range bookings {
		if b.ContactEmail == nil || *b.ContactEmail == "" {
			continue
		}
		show, ok := byID[b.ShowID]
		if !ok {
			continue
		}

		key := *b.ContactEmail + "|" + b.ShowID.String()
		if sent[key] {
			continue
		}
		sent[key] = true

		title, ok := titles[show.MovieID]
		if !ok {
			title = s.movieTitle(ctx, show.MovieID)
			titles[show.MovieID] = title
		}

		n, err := showReminderMail(*b.ContactEmail, ticketMail{
			MovieTitle: title,
			ShowTime:   show.StartsAt,
			Seats:      b.Seats,
			Amount:     b.Amount,
		}, s.loc)
		if err != nil {
			s.log.Error("Failed to render reminder", zap.String("booking_id", b.ID.String()), zap.Error(err))
			continue
		}
		if err := s.publisher.EnqueueNotification(ctx, n); err != nil {
			s.log.Warn("Failed to enqueue reminder", zap.String("booking_id", b.ID.String()), zap.Error(err))
			continue
		}
		queued++
	}

	s.log.Info("Show reminders queued",
		zap.Int("shows", len(shows)),
		zap.Int("bookings", len(bookings)),
		zap.Int("queued", queued),
	)
	return queued, nil
}

func (s *reminderService) movieTitle(ctx context.Context, movieID string) string {
	movie, err := s.repo.Movie.FindByID(ctx, movieID)
	if err != nil || movie == nil {
		return "your movie"
	}
	return movie.Title
}
