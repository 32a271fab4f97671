package service

import (
	"context"
	"time"

	"venue-booking/core/constants"
	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	"venue-booking/core/storage"
	"venue-booking/core/utils"
	"venue-booking/modules/booking/dto"
	"venue-booking/modules/booking/entity"
	"venue-booking/modules/booking/repository"
	matchingService "venue-booking/modules/matching/service"
	riskEntity "venue-booking/modules/risk/entity"
	riskService "venue-booking/modules/risk/service"
	tableDto "venue-booking/modules/table/dto"
	tableEntity "venue-booking/modules/table/entity"
	waitlistEntity "venue-booking/modules/waitlist/entity"

	"github.com/google/uuid"
)

const codeAttempts = 3

type TableBooker interface {
	ResolveAvailability(ctx context.Context, req tableDto.AvailabilityRequest) ([]tableEntity.AvailabilitySlot, error)
	GetTables(ctx context.Context, ids []uuid.UUID) ([]tableEntity.Table, error)
	BookDirect(ctx context.Context, ids []uuid.UUID) error
	Confirm(ctx context.Context, ids []uuid.UUID) error
	Free(ctx context.Context, ids []uuid.UUID) error
}

type LimitSource interface {
	LimitRecord(ctx context.Context, customerID uuid.UUID, date string) (*riskEntity.CustomerLimitRecord, error)
	RecordExcessAttempt(ctx context.Context, customerID uuid.UUID) error
}

type RiskChecker interface {
	ValidateLimits(ctx context.Context, in riskService.ValidateInput) (*riskEntity.RiskAssessment, error)
	RecordPayment(ctx context.Context, customerID uuid.UUID, paymentMethodID string) error
}

// SlotMatcher offers freed tables to the waitlist.
type SlotMatcher interface {
	OnSlotFreed(ctx context.Context, slot matchingService.FreedSlot) (*waitlistEntity.WaitlistEntry, error)
}

type BookingService struct {
	repo     repository.BookingRepositoryInterface
	tables   TableBooker
	limits   LimitSource
	risk     RiskChecker
	matcher  SlotMatcher
	archiver storage.Archiver
}

func NewBookingService(
	repo repository.BookingRepositoryInterface,
	tables TableBooker,
	limits LimitSource,
	risk RiskChecker,
	matcher SlotMatcher,
	archiver storage.Archiver,
) *BookingService {
	if archiver == nil {
		archiver = storage.NopArchiver{}
	}
	return &BookingService{
		repo:     repo,
		tables:   tables,
		limits:   limits,
		risk:     risk,
		matcher:  matcher,
		archiver: archiver,
	}
}

// Book is the direct booking flow: validate limits, resolve availability, book the
// first slot that is still free and store the booking. NO_AVAILABILITY tells the
// caller to join the waitlist instead.
func (s *BookingService) Book(ctx context.Context, customerID uuid.UUID, req *dto.CreateBookingRequest) (*entity.Booking, error) {
	if err := utils.ValidateDate(req.Date); err != nil {
		return nil, err
	}
	if err := utils.ValidateTimeSlot(req.TimeSlot); err != nil {
		return nil, err
	}
	if err := utils.ValidatePartySize(req.PartySize); err != nil {
		return nil, err
	}

	record, err := s.limits.LimitRecord(ctx, customerID, req.Date)
	if err != nil {
		return nil, err
	}

	requestedTables := 1
	if req.PartySize > constants.CombinedSearchAbove || len(req.TableIDs) > 1 {
		requestedTables = 2
	}
	assessment, err := s.risk.ValidateLimits(ctx, riskService.ValidateInput{
		Record:          *record,
		RequestedTables: requestedTables,
		RequestedGuests: req.PartySize,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		return nil, err
	}
	if err := riskService.EnsureAllowed(assessment); err != nil {
		logger.Info("BookingService:Book:Rejected", "customer_id", customerID, "score", assessment.RiskScore)
		if assessment.ExceedsLimits() {
			if recErr := s.limits.RecordExcessAttempt(ctx, customerID); recErr != nil {
				logger.Warn("BookingService:Book:RecordExcessAttempt:Error:", recErr, "customer_id", customerID)
			}
		}
		return nil, err
	}

	slots, err := s.tables.ResolveAvailability(ctx, tableDto.AvailabilityRequest{
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		PartySize: req.PartySize,
		Floor:     req.Floor,
	})
	if err != nil {
		return nil, err
	}
	if len(req.TableIDs) > 0 {
		slots = pinned(slots, req.TableIDs)
	}

	for _, slot := range slots {
		err := s.tables.BookDirect(ctx, slot.TableIDs)
		if errors.Is(err, errors.ErrStateConflict) {
			logger.Debug("BookingService:Book:SlotTaken", "tables", slot.TableIDs.Strings())
			continue
		}
		if err != nil {
			return nil, err
		}

		booking, err := s.create(ctx, customerID, slot.TableIDs, req.Date, req.TimeSlot, req.PartySize, nil)
		if err != nil {
			if freeErr := s.tables.Free(ctx, slot.TableIDs); freeErr != nil {
				logger.Error("BookingService:Book:Free:Error:", freeErr, "tables", slot.TableIDs.Strings())
			}
			return nil, err
		}

		if err := s.risk.RecordPayment(ctx, customerID, req.PaymentMethodID); err != nil {
			logger.Warn("BookingService:Book:RecordPayment:Error:", err, "booking_id", booking.ID)
		}
		s.archive(ctx, booking)

		logger.Info("BookingService:Book",
			"id", booking.ID,
			"code", booking.Code,
			"customer_id", customerID,
			"tables", len(booking.TableIDs),
		)
		return booking, nil
	}

	return nil, errors.NewAppError(errors.ErrNoAvailability, "No table is available for this slot; join the waitlist", nil)
}

func pinned(slots []tableEntity.AvailabilitySlot, ids []uuid.UUID) []tableEntity.AvailabilitySlot {
	want := tableEntity.AvailabilitySlot{TableIDs: ids}
	for _, slot := range slots {
		probe := want
		probe.Date, probe.TimeSlot = slot.Date, slot.TimeSlot
		if slot.Key() == probe.Key() {
			return []tableEntity.AvailabilitySlot{slot}
		}
	}
	return nil
}

// CreateForWaitlist books the tables held for a converted entry. It is keyed by the
// entry id, so a repeated call returns the booking made by the first one.
func (s *BookingService) CreateForWaitlist(ctx context.Context, entry *waitlistEntity.WaitlistEntry) (*entity.Booking, error) {
	existing, err := s.repo.GetByWaitlistEntry(ctx, entry.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	if len(entry.AssignedTableIDs) == 0 {
		return nil, errors.NewStateConflict("Waitlist entry has no assigned tables")
	}

	if err := s.tables.Confirm(ctx, entry.AssignedTableIDs); err != nil {
		if !errors.Is(err, errors.ErrStateConflict) || !s.alreadyBooked(ctx, entry.AssignedTableIDs) {
			logger.Error("BookingService:CreateForWaitlist:Confirm:Error:", err, "entry_id", entry.ID)
			return nil, err
		}
	}

	entryID := entry.ID
	booking, err := s.create(ctx, entry.CustomerID, entry.AssignedTableIDs, entry.PreferredDate,
		entry.AssignedTimeSlot, entry.PartySize, &entryID)
	if errors.Is(err, errors.ErrAlreadyExists) {
		return s.repo.GetByWaitlistEntry(ctx, entry.ID)
	}
	if err != nil {
		return nil, err
	}

	s.archive(ctx, booking)
	logger.Info("BookingService:CreateForWaitlist", "id", booking.ID, "entry_id", entry.ID, "code", booking.Code)
	return booking, nil
}

// alreadyBooked covers a retry after the tables were confirmed but the booking row was not written.
func (s *BookingService) alreadyBooked(ctx context.Context, ids []uuid.UUID) bool {
	tables, err := s.tables.GetTables(ctx, ids)
	if err != nil || len(tables) != len(ids) {
		return false
	}
	for _, t := range tables {
		if t.Status != tableEntity.TableStatusBooked {
			return false
		}
	}
	return true
}

func (s *BookingService) create(ctx context.Context, customerID uuid.UUID, tableIDs []uuid.UUID, date, timeSlot string, partySize int, entryID *uuid.UUID) (*entity.Booking, error) {
	var lastErr error
	for i := 0; i < codeAttempts; i++ {
		code, err := utils.GenerateBookingCode()
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to generate booking code", err)
		}

		now := time.Now()
		booking := &entity.Booking{
			Code:            code,
			CustomerID:      customerID,
			TableIDs:        append(coreEntity.IDList{}, tableIDs...),
			Date:            date,
			TimeSlot:        timeSlot,
			PartySize:       partySize,
			WaitlistEntryID: entryID,
			Status:          entity.StatusConfirmed,
			BaseEntity: coreEntity.BaseEntity{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
		}

		lastErr = s.repo.Create(ctx, booking)
		if lastErr == nil {
			return booking, nil
		}
		// An entry id collision is final; a code collision gets a fresh code.
		if !errors.Is(lastErr, errors.ErrAlreadyExists) || entryID != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (s *BookingService) archive(ctx context.Context, booking *entity.Booking) {
	if err := s.archiver.Archive(ctx, booking.ArchiveKey(), booking); err != nil {
		logger.Warn("BookingService:Archive:Error:", err, "booking_id", booking.ID)
	}
}

func (s *BookingService) Get(ctx context.Context, id, customerID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, errors.NewNotFound("Booking not found")
	}
	return booking, nil
}

func (s *BookingService) ListMine(ctx context.Context, customerID uuid.UUID) ([]entity.Booking, error) {
	bookings, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list bookings", err)
	}
	if bookings == nil {
		bookings = []entity.Booking{}
	}
	return bookings, nil
}

// CustomerDayStats feeds the customer limit record.
func (s *BookingService) CustomerDayStats(ctx context.Context, customerID uuid.UUID, date string) (int, []uuid.UUID, error) {
	return s.repo.CustomerDayStats(ctx, customerID, date)
}

// Cancel frees the booking's tables and offers them to the waitlist.
func (s *BookingService) Cancel(ctx context.Context, id, customerID uuid.UUID) (*entity.Booking, error) {
	if _, err := s.Get(ctx, id, customerID); err != nil {
		return nil, err
	}

	booking, err := s.repo.Cancel(ctx, id, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.tables.Free(ctx, booking.TableIDs); err != nil {
		logger.Error("BookingService:Cancel:Free:Error:", err, "booking_id", booking.ID)
		return booking, nil
	}

	if s.matcher != nil {
		notified, err := s.matcher.OnSlotFreed(ctx, matchingService.FreedSlot{
			Date:     booking.Date,
			TimeSlot: booking.TimeSlot,
			TableIDs: booking.TableIDs,
		})
		if err != nil {
			logger.Error("BookingService:Cancel:OnSlotFreed:Error:", err, "booking_id", booking.ID)
		} else if notified != nil {
			logger.Info("BookingService:Cancel:Offered", "booking_id", booking.ID, "entry_id", notified.ID)
		}
	}

	logger.Info("BookingService:Cancel", "id", booking.ID, "customer_id", customerID)
	return booking, nil
}
