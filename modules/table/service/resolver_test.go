package service

import (
	"context"
	"testing"

	coreEntity "venue-booking/core/entity"
	"venue-booking/core/errors"
	"venue-booking/modules/table/dto"
	"venue-booking/modules/table/entity"
	"venue-booking/modules/table/repository"

	"github.com/google/uuid"
)

func newTable(code string, min, max int, floor entity.Floor) entity.Table {
	return entity.Table{
		Code:           code,
		Name:           code,
		CapacityMin:    min,
		CapacityMax:    max,
		Floor:          floor,
		Status:         entity.TableStatusAvailable,
		CombinableWith: coreEntity.IDList{},
		BaseEntity:     coreEntity.BaseEntity{ID: uuid.New()},
	}
}

func link(a, b *entity.Table) {
	a.CombinableWith = append(a.CombinableWith, b.ID)
}

func TestResolveSinglesTightestFirst(t *testing.T) {
	t1 := newTable("t1", 2, 8, entity.FloorDownstairs)
	t2 := newTable("t2", 2, 4, entity.FloorDownstairs)
	t3 := newTable("t3", 4, 6, entity.FloorUpstairs)
	booked := newTable("t4", 2, 4, entity.FloorDownstairs)
	booked.Status = entity.TableStatusBooked

	slots := NewResolver().Resolve([]entity.Table{t1, t2, t3, booked}, ResolveInput{
		Date: "2026-10-20", TimeSlot: "19:00", PartySize: 4,
	})

	want := []uuid.UUID{t2.ID, t3.ID, t1.ID}
	if len(slots) != len(want) {
		t.Fatalf("Resolve() returned %d slots, want %d", len(slots), len(want))
	}
	for i, id := range want {
		if slots[i].TableIDs[0] != id {
			t.Errorf("slot[%d] = %v, want %v", i, slots[i].TableIDs[0], id)
		}
		if slots[i].Capacity < 4 {
			t.Errorf("slot[%d].Capacity = %d, cannot seat 4", i, slots[i].Capacity)
		}
	}
}

func TestResolveRespectsCapacityMin(t *testing.T) {
	big := newTable("big", 6, 10, entity.FloorDownstairs)

	slots := NewResolver().Resolve([]entity.Table{big}, ResolveInput{Date: "2026-10-20", TimeSlot: "19:00", PartySize: 2})
	if len(slots) != 0 {
		t.Errorf("Resolve() = %v, want no slot below capacity_min", slots)
	}
}

func TestResolveFloorFilter(t *testing.T) {
	up := newTable("up", 2, 4, entity.FloorUpstairs)
	down := newTable("down", 2, 4, entity.FloorDownstairs)
	floor := entity.FloorUpstairs

	slots := NewResolver().Resolve([]entity.Table{up, down}, ResolveInput{
		Date: "2026-10-20", TimeSlot: "19:00", PartySize: 3, Floor: &floor,
	})
	if len(slots) != 1 || slots[0].TableIDs[0] != up.ID {
		t.Errorf("Resolve() = %v, want only %v", slots, up.ID)
	}
}

func TestResolveCombinationsSymmetricNoDuplicates(t *testing.T) {
	a := newTable("a", 4, 6, entity.FloorDownstairs)
	b := newTable("b", 4, 6, entity.FloorDownstairs)
	c := newTable("c", 6, 8, entity.FloorDownstairs)
	d := newTable("d", 2, 2, entity.FloorDownstairs)
	// a<->b stored both ways, b->c one way only, d combines with a but is too small.
	link(&a, &b)
	link(&b, &a)
	link(&b, &c)
	link(&d, &a)

	slots := NewResolver().Resolve([]entity.Table{a, b, c, d}, ResolveInput{
		Date: "2026-10-20", TimeSlot: "20:00", PartySize: 12,
	})

	if len(slots) != 2 {
		t.Fatalf("Resolve() returned %d slots, want 2: %+v", len(slots), slots)
	}
	// a+b capacity 12 (excess 0) sorts before b+c capacity 14 (excess 2).
	if got := slots[0].Key(); got != (entity.AvailabilitySlot{Date: "2026-10-20", TimeSlot: "20:00", TableIDs: coreEntity.IDList{b.ID, a.ID}}).Key() {
		t.Errorf("slot[0] = %v, want a+b", slots[0].TableIDs)
	}
	if slots[0].Capacity != 12 || slots[1].Capacity != 14 {
		t.Errorf("capacities = %d,%d, want 12,14", slots[0].Capacity, slots[1].Capacity)
	}
	for _, s := range slots {
		if !s.Combined() {
			t.Errorf("slot %v is not combined", s.TableIDs)
		}
	}
}

func TestResolveNoCombinationsForSmallParty(t *testing.T) {
	a := newTable("a", 2, 4, entity.FloorDownstairs)
	b := newTable("b", 2, 4, entity.FloorDownstairs)
	link(&a, &b)

	slots := NewResolver().Resolve([]entity.Table{a, b}, ResolveInput{Date: "2026-10-20", TimeSlot: "19:00", PartySize: 7})
	if len(slots) != 0 {
		t.Errorf("Resolve() = %v, want empty for party of 7", slots)
	}
}

func TestResolveSinglesSuppressCombinations(t *testing.T) {
	a := newTable("a", 4, 6, entity.FloorDownstairs)
	b := newTable("b", 4, 6, entity.FloorDownstairs)
	big := newTable("big", 8, 12, entity.FloorUpstairs)
	link(&a, &b)

	slots := NewResolver().Resolve([]entity.Table{a, b, big}, ResolveInput{Date: "2026-10-20", TimeSlot: "19:00", PartySize: 10})
	if len(slots) != 1 || slots[0].TableIDs[0] != big.ID {
		t.Errorf("Resolve() = %v, want single big table", slots)
	}
}

type fixedStrategy struct {
	calls int
}

func (f *fixedStrategy) Combine(candidates []entity.Table, partySize int) [][]entity.Table {
	f.calls++
	if len(candidates) < 2 {
		return nil
	}
	return [][]entity.Table{{candidates[0], candidates[1]}, {candidates[1], candidates[0]}}
}

func TestResolvePluggableStrategy(t *testing.T) {
	a := newTable("a", 4, 6, entity.FloorDownstairs)
	b := newTable("b", 4, 6, entity.FloorDownstairs)
	strategy := &fixedStrategy{}
	r := &Resolver{CombineAbove: 8, Strategy: strategy}

	slots := r.Resolve([]entity.Table{a, b}, ResolveInput{Date: "2026-10-20", TimeSlot: "19:00", PartySize: 11})
	if strategy.calls != 1 {
		t.Errorf("strategy calls = %d, want 1", strategy.calls)
	}
	if len(slots) != 1 {
		t.Errorf("Resolve() = %d slots, want reversed duplicate dropped", len(slots))
	}
}

func TestResolveAvailabilityValidation(t *testing.T) {
	svc := NewTableService(repository.NewMemoryTableRepository(), nil)

	cases := []dto.AvailabilityRequest{
		{Date: "20-10-2026", TimeSlot: "19:00", PartySize: 2},
		{Date: "2026-10-20", TimeSlot: "7pm", PartySize: 2},
		{Date: "2026-10-20", TimeSlot: "19:00", PartySize: 0},
		{Date: "2026-10-20", TimeSlot: "19:00", PartySize: 21},
		{Date: "2026-10-20", TimeSlot: "19:00", PartySize: 2, Floor: "rooftop"},
	}
	for _, tc := range cases {
		_, err := svc.ResolveAvailability(context.Background(), tc)
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("ResolveAvailability(%+v) error = %v, want INVALID_INPUT", tc, err)
		}
	}
}

func TestCreateTableRejectsInvertedCapacity(t *testing.T) {
	svc := NewTableService(repository.NewMemoryTableRepository(), nil)

	_, err := svc.CreateTable(context.Background(), &dto.CreateTableRequest{
		Name: "Window 1", CapacityMin: 6, CapacityMax: 4, Floor: "upstairs",
	})
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("CreateTable() error = %v, want INVALID_INPUT", err)
	}

	table, err := svc.CreateTable(context.Background(), &dto.CreateTableRequest{
		Name: "Window Booth 3", CapacityMin: 2, CapacityMax: 4, Floor: "upstairs",
	})
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if table.Code != "window-booth-3" {
		t.Errorf("Code = %q, want %q", table.Code, "window-booth-3")
	}
}
