package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"venue-booking/core/errors"
	"venue-booking/modules/table/entity"

	"github.com/google/uuid"
)

// MemoryTableRepository keeps tables in process. Every method takes the lock once,
// so List is a consistent snapshot and TransitionStatus is all-or-nothing.
type MemoryTableRepository struct {
	mu     sync.Mutex
	tables map[uuid.UUID]entity.Table
}

func NewMemoryTableRepository(tables ...entity.Table) *MemoryTableRepository {
	r := &MemoryTableRepository{tables: make(map[uuid.UUID]entity.Table)}
	for _, t := range tables {
		r.tables[t.ID] = t
	}
	return r
}

func (r *MemoryTableRepository) Create(_ context.Context, table *entity.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tables {
		if t.Code == table.Code {
			return errors.NewAppError(errors.ErrAlreadyExists, "Table code already exists", nil)
		}
	}
	r.tables[table.ID] = cloneTable(*table)
	return nil
}

func (r *MemoryTableRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[id]
	if !ok {
		return nil, errors.NewNotFound("Table not found")
	}
	out := cloneTable(t)
	return &out, nil
}

func (r *MemoryTableRepository) List(_ context.Context) ([]entity.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, cloneTable(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MemoryTableRepository) ListByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Table, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.tables[id]; ok {
			out = append(out, cloneTable(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MemoryTableRepository) SetStatus(_ context.Context, id uuid.UUID, status entity.TableStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[id]
	if !ok {
		return errors.NewNotFound("Table not found")
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	r.tables[id] = t
	return nil
}

func (r *MemoryTableRepository) TransitionStatus(_ context.Context, ids []uuid.UUID, from, to entity.TableStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		t, ok := r.tables[id]
		if !ok || t.Status != from {
			return errors.NewStateConflict("Table status changed concurrently")
		}
	}
	now := time.Now()
	for _, id := range ids {
		t := r.tables[id]
		t.Status = to
		t.UpdatedAt = now
		r.tables[id] = t
	}
	return nil
}

func cloneTable(t entity.Table) entity.Table {
	out := t
	out.CombinableWith = append(t.CombinableWith[:0:0], t.CombinableWith...)
	return out
}
