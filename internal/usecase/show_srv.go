package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/internal/data/repository"
	"cinema-showtime/internal/dto/request"
	"cinema-showtime/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ShowService interface {
	// CreateShows creates one show per movie × theater × scheduled start.
	// A movie the catalog cannot resolve is skipped; the rest proceed.
	CreateShows(ctx context.Context, req *request.BulkCreateShowsRequest) (*response.BulkShowResult, error)
	CreateShow(ctx context.Context, req *request.CreateShowRequest) (*response.ShowResponse, error)
	GetShowSeats(ctx context.Context, showID string) (*response.ShowSeatsResponse, error)
}

type showService struct {
	repo      *repository.Repository
	catalog   CatalogService
	publisher EventPublisher
	loc       *time.Location
	log       *zap.Logger
	now       func() time.Time
}

func NewShowService(repo *repository.Repository, catalog CatalogService, publisher EventPublisher, loc *time.Location, log *zap.Logger) ShowService {
	if loc == nil {
		loc = time.UTC
	}
	return &showService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		loc:       loc,
		log:       log.With(zap.String("service", "show")),
		now:       time.Now,
	}
}

func (s *showService) CreateShows(ctx context.Context, req *request.BulkCreateShowsRequest) (*response.BulkShowResult, error) {
	if err := validateRequest(req); err != nil {
		s.log.Warn("Bulk show validation failed", zap.Error(err))
		return nil, err
	}

	starts, err := s.expandSchedule(req.Schedule)
	if err != nil {
		return nil, err
	}

	theaterIDs, err := parseUUIDSet("theater_ids", req.TheaterIDs)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTheaters(ctx, theaterIDs); err != nil {
		return nil, err
	}

	movieIDs := uniqueStrings(req.MovieIDs)
	result := &response.BulkShowResult{}

	for _, movieID := range movieIDs {
		movie, err := s.catalog.EnsureMovie(ctx, movieID)
		if err != nil {
			s.log.Warn("Skipping movie", zap.String("movie_id", movieID), zap.Error(err))
			result.Skipped = append(result.Skipped, response.SkippedMovie{MovieID: movieID, Reason: err.Error()})
			continue
		}

		now := s.now()
		shows := make([]*entity.Show, 0, len(theaterIDs)*len(starts))
		for _, theaterID := range theaterIDs {
			for _, start := range starts {
				shows = append(shows, &entity.Show{
					ID:            uuid.New(),
					MovieID:       movie.ID,
					TheaterID:     theaterID,
					StartsAt:      start,
					Price:         req.Price,
					OccupiedSeats: map[string]string{},
					Timestamps:    entity.Timestamps{CreatedAt: now, UpdatedAt: now},
				})
			}
		}

		if err := s.repo.Show.CreateBatch(ctx, shows); err != nil {
			s.log.Error("Failed to persist shows", zap.String("movie_id", movieID), zap.Error(err))
			result.Skipped = append(result.Skipped, response.SkippedMovie{MovieID: movieID, Reason: "persist shows failed"})
			continue
		}
		result.Created += len(shows)

		s.announce(ctx, movie, len(shows), starts[0])
	}

	result.SkippedMovies = len(result.Skipped)

	s.log.Info("Bulk shows created",
		zap.Int("created", result.Created),
		zap.Int("skipped_movies", result.SkippedMovies),
		zap.Int("theaters", len(theaterIDs)),
		zap.Int("starts", len(starts)),
	)

	return result, nil
}

func (s *showService) CreateShow(ctx context.Context, req *request.CreateShowRequest) (*response.ShowResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, s.loc)
	if err != nil {
		return nil, newValidationError("time", "Invalid date or time")
	}

	theaterID, err := uuid.Parse(req.TheaterID)
	if err != nil {
		return nil, newValidationError("theater_id", "Must be a valid UUID")
	}
	if err := s.ensureTheaters(ctx, []uuid.UUID{theaterID}); err != nil {
		return nil, err
	}

	movie, err := s.catalog.EnsureMovie(ctx, req.MovieID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	show := &entity.Show{
		ID:            uuid.New(),
		MovieID:       movie.ID,
		TheaterID:     theaterID,
		StartsAt:      start,
		Price:         req.Price,
		OccupiedSeats: map[string]string{},
		Timestamps:    entity.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.repo.Show.Create(ctx, show); err != nil {
		return nil, fmt.Errorf("create show: %w", err)
	}

	s.announce(ctx, movie, 1, start)

	resp := response.ShowToResponse(show)
	return &resp, nil
}

func (s *showService) GetShowSeats(ctx context.Context, showID string) (*response.ShowSeatsResponse, error) {
	id, err := uuid.Parse(showID)
	if err != nil {
		return nil, newValidationError("show_id", "Must be a valid UUID")
	}

	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get show seats: %w", err)
	}
	if show == nil {
		return nil, fmt.Errorf("%w: show %s", ErrNotFound, showID)
	}

	resp := response.ShowToSeatsResponse(show)
	return &resp, nil
}

// announce publishes show.added; failures never fail the request.
func (s *showService) announce(ctx context.Context, movie *entity.Movie, count int, first time.Time) {
	evt := ShowAddedEvent{
		MovieID:    movie.ID,
		MovieTitle: movie.Title,
		ShowCount:  count,
		FirstShow:  first,
		AddedAt:    s.now(),
	}
	if err := s.publisher.PublishShowAdded(ctx, evt); err != nil {
		s.log.Warn("Failed to publish show added", zap.String("movie_id", movie.ID), zap.Error(err))
	}
}

// expandSchedule turns date → times into sorted start instants. A time listed
// twice yields two starts.
func (s *showService) expandSchedule(schedule []request.ScheduleInput) ([]time.Time, error) {
	var starts []time.Time

	for _, entry := range schedule {
		for _, clock := range entry.Times {
			start, err := time.ParseInLocation("2006-01-02 15:04", entry.Date+" "+clock, s.loc)
			if err != nil {
				return nil, newValidationError("shows_input", fmt.Sprintf("Invalid date/time %s %s", entry.Date, clock))
			}
			starts = append(starts, start)
		}
	}

	if len(starts) == 0 {
		return nil, newValidationError("shows_input", "At least one show time is required")
	}

	sort.SliceStable(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts, nil
}

func (s *showService) ensureTheaters(ctx context.Context, ids []uuid.UUID) error {
	theaters, err := s.repo.Theater.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load theaters: %w", err)
	}

	found := make(map[uuid.UUID]bool, len(theaters))
	for _, t := range theaters {
		found[t.ID] = true
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return newValidationError("theater_ids", "Unknown theaters: "+strings.Join(missing, ", "))
	}
	return nil
}

func parseUUIDSet(field string, raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, newValidationError(field, "Must be a valid UUID")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
