package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"roombot/internal/database"
	"roombot/internal/domain"
	"roombot/internal/events"
	"roombot/internal/models"
	"roombot/internal/schedule"

	"github.com/rs/zerolog"
)

// BookingService glues the availability engine to the store. Reads of
// booking data are advisory only; the no-overlap invariant is enforced by
// the store's checked insert at commit time, never by the reads here.
type BookingService struct {
	repo          domain.Repository
	window        schedule.Window
	eventBus      domain.EventPublisher
	notifyWorker  domain.NotifyWorker
	forwardMonths int
	logger        *zerolog.Logger
}

func NewBookingService(
	repo domain.Repository,
	window schedule.Window,
	eventBus domain.EventPublisher,
	notifyWorker domain.NotifyWorker,
	forwardMonths int,
	logger *zerolog.Logger,
) *BookingService {
	if forwardMonths <= 0 {
		forwardMonths = models.DefaultForwardMonths
	}
	return &BookingService{
		repo:          repo,
		window:        window,
		eventBus:      eventBus,
		notifyWorker:  notifyWorker,
		forwardMonths: forwardMonths,
		logger:        logger,
	}
}

func (s *BookingService) ValidateBookingDate(date schedule.Date) error {
	today := schedule.Today()
	if date.Before(today) {
		return database.ErrPastDate
	}

	maxDate := schedule.DateOf(today.Time().AddDate(0, s.forwardMonths, 0))
	if date.After(maxDate) {
		return database.ErrDateTooFar
	}

	return nil
}

func (s *BookingService) AvailableStartTimes(ctx context.Context, date schedule.Date) ([]schedule.Clock, error) {
	booked, err := s.bookedIntervals(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.window.StartTimes(booked), nil
}

func (s *BookingService) AvailableEndTimes(ctx context.Context, date schedule.Date, start schedule.Clock) ([]schedule.Clock, error) {
	booked, err := s.bookedIntervals(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.window.EndTimes(start, booked), nil
}

// CreateBooking validates and commits a booking. The store re-checks the
// no-overlap invariant inside the insert transaction, so success here means
// the row exists and conflicts with nothing.
func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := s.ValidateBookingDate(booking.Date); err != nil {
		return err
	}
	if strings.TrimSpace(booking.Details) == "" {
		return database.ErrEmptyDetails
	}

	if err := s.repo.CreateBookingChecked(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingCreated, booking)
	s.enqueueNotify(ctx, booking, false)

	return nil
}

// DeleteBooking removes a booking after verifying ownership. Unknown ids
// and foreign-owner bookings fail with distinct errors; the row is left
// intact in both cases.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64, owner string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Owner != owner {
		return nil, database.ErrNotOwner
	}

	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingDeleted, booking)
	s.enqueueNotify(ctx, booking, true)

	return booking, nil
}

// GetUpcomingBookings returns bookings that have not yet ended, ordered by
// date then start time.
func (s *BookingService) GetUpcomingBookings(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	all, err := s.repo.GetAllBookings(ctx)
	if err != nil {
		return nil, err
	}

	var upcoming []*models.Booking
	for _, b := range all {
		if !b.EndsBefore(now) {
			upcoming = append(upcoming, b)
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].Date.At(upcoming[i].Start).Before(upcoming[j].Date.At(upcoming[j].Start))
	})

	return upcoming, nil
}

func (s *BookingService) GetBookingsByOwner(ctx context.Context, owner string) ([]*models.Booking, error) {
	return s.repo.GetBookingsByOwner(ctx, owner)
}

func (s *BookingService) GetBookingsByDate(ctx context.Context, date schedule.Date) ([]*models.Booking, error) {
	return s.repo.GetBookingsByDate(ctx, date)
}

func (s *BookingService) bookedIntervals(ctx context.Context, date schedule.Date) ([]schedule.Interval, error) {
	bookings, err := s.repo.GetBookingsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	intervals := make([]schedule.Interval, 0, len(bookings))
	for _, b := range bookings {
		intervals = append(intervals, b.Interval())
	}
	return intervals, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		Date:      booking.Date.String(),
		StartTime: booking.Start.String(),
		EndTime:   booking.End.String(),
		Owner:     booking.Owner,
		Details:   booking.Details,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueNotify(ctx context.Context, booking *models.Booking, deleted bool) {
	if s.notifyWorker == nil {
		return
	}

	var err error
	if deleted {
		err = s.notifyWorker.EnqueueDeleted(ctx, booking)
	} else {
		err = s.notifyWorker.EnqueueCreated(ctx, booking)
	}
	if err != nil {
		// Best-effort: the booking outcome stands regardless.
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("notify enqueue error")
	}
}
