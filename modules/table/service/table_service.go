package service

import (
	"context"
	"fmt"
	"time"

	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	"venue-booking/core/utils"
	"venue-booking/modules/table/dto"
	"venue-booking/modules/table/entity"
	"venue-booking/modules/table/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type TableService struct {
	repo     repository.TableRepositoryInterface
	resolver *Resolver
}

func NewTableService(repo repository.TableRepositoryInterface, resolver *Resolver) *TableService {
	if resolver == nil {
		resolver = NewResolver()
	}
	return &TableService{repo: repo, resolver: resolver}
}

// ResolveAvailability evaluates the request against one snapshot of the table registry.
func (s *TableService) ResolveAvailability(ctx context.Context, req dto.AvailabilityRequest) ([]entity.AvailabilitySlot, error) {
	in, err := toResolveInput(req)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load tables", err)
	}

	slots := s.resolver.Resolve(snapshot, in)
	logger.Debug("TableService:ResolveAvailability",
		"date", in.Date, "party_size", in.PartySize, "slots", len(slots))
	return slots, nil
}

func toResolveInput(req dto.AvailabilityRequest) (ResolveInput, error) {
	if err := utils.ValidateDate(req.Date); err != nil {
		return ResolveInput{}, err
	}
	if err := utils.ValidateTimeSlot(req.TimeSlot); err != nil {
		return ResolveInput{}, err
	}
	if err := utils.ValidatePartySize(req.PartySize); err != nil {
		return ResolveInput{}, err
	}

	in := ResolveInput{Date: req.Date, TimeSlot: req.TimeSlot, PartySize: req.PartySize}
	if req.Floor != "" {
		floor := entity.Floor(req.Floor)
		if !floor.Valid() {
			return ResolveInput{}, errors.NewValidationError(fmt.Sprintf("unknown floor %q", req.Floor))
		}
		in.Floor = &floor
	}
	return in, nil
}

func (s *TableService) CreateTable(ctx context.Context, req *dto.CreateTableRequest) (*entity.Table, error) {
	if req.Name == "" {
		return nil, errors.NewValidationError("name is required")
	}
	if req.CapacityMin < 1 || req.CapacityMin > req.CapacityMax {
		return nil, errors.NewValidationError("capacity_min must be at least 1 and not above capacity_max")
	}
	floor := entity.Floor(req.Floor)
	if !floor.Valid() {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown floor %q", req.Floor))
	}

	code := req.Code
	if code == "" {
		code = slug.Make(req.Name)
	}

	now := time.Now()
	table := &entity.Table{
		Code:           code,
		Name:           req.Name,
		CapacityMin:    req.CapacityMin,
		CapacityMax:    req.CapacityMax,
		Floor:          floor,
		CombinableWith: coreEntity.IDList(req.CombinableWith),
		Status:         entity.TableStatusAvailable,
		BaseEntity: coreEntity.BaseEntity{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if table.CombinableWith == nil {
		table.CombinableWith = coreEntity.IDList{}
	}

	if err := s.repo.Create(ctx, table); err != nil {
		return nil, err
	}
	logger.Info("TableService:CreateTable", "id", table.ID, "code", table.Code)
	return table, nil
}

func (s *TableService) ListTables(ctx context.Context) ([]entity.Table, error) {
	return s.repo.List(ctx)
}

func (s *TableService) GetTables(ctx context.Context, ids []uuid.UUID) ([]entity.Table, error) {
	return s.repo.ListByIDs(ctx, ids)
}

func (s *TableService) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	st := entity.TableStatus(status)
	if !st.Valid() {
		return errors.NewValidationError(fmt.Sprintf("unknown table status %q", status))
	}
	return s.repo.SetStatus(ctx, id, st)
}

// Hold reserves tables for a notified waitlist entry.
func (s *TableService) Hold(ctx context.Context, ids []uuid.UUID) error {
	return s.repo.TransitionStatus(ctx, ids, entity.TableStatusAvailable, entity.TableStatusPending)
}

// Release returns held tables to the bookable pool.
func (s *TableService) Release(ctx context.Context, ids []uuid.UUID) error {
	return s.repo.TransitionStatus(ctx, ids, entity.TableStatusPending, entity.TableStatusAvailable)
}

// Confirm turns held tables into booked ones.
func (s *TableService) Confirm(ctx context.Context, ids []uuid.UUID) error {
	return s.repo.TransitionStatus(ctx, ids, entity.TableStatusPending, entity.TableStatusBooked)
}

// BookDirect books available tables without a hold.
func (s *TableService) BookDirect(ctx context.Context, ids []uuid.UUID) error {
	return s.repo.TransitionStatus(ctx, ids, entity.TableStatusAvailable, entity.TableStatusBooked)
}

// Free releases booked tables after a cancellation.
func (s *TableService) Free(ctx context.Context, ids []uuid.UUID) error {
	return s.repo.TransitionStatus(ctx, ids, entity.TableStatusBooked, entity.TableStatusAvailable)
}
