package usecase

import (
	"time"

	"cinema-showtime/internal/data/repository"
	"cinema-showtime/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Catalog  CatalogService
	Show     ShowService
	Booking  BookingService
	Timeout  TimeoutService
	Payment  PaymentService
	Reminder ReminderService
}

// Publisher is what the services need from the message broker.
type Publisher interface {
	EventPublisher
	ReleaseScheduler
}

func NewService(repo *repository.Repository, config *utils.Config, source MovieSource, publisher Publisher, log *zap.Logger) *Service {
	catalog := NewCatalogService(repo, source, log)
	policy := NewBookingPolicy(config.Booking)
	loc := config.App.Location()

	return &Service{
		Catalog:  catalog,
		Show:     NewShowService(repo, catalog, publisher, loc, log),
		Booking:  NewBookingService(repo, publisher, policy, log),
		Timeout:  NewTimeoutService(repo, publisher, policy.HoldWindow, log),
		Payment:  NewPaymentService(repo, publisher, loc, log),
		Reminder: NewReminderService(repo, publisher, time.Duration(config.Jobs.ReminderLeadHours)*time.Hour, config.Jobs.ReminderInterval(), loc, log),
	}
}
