package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"venue-booking/core/database"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	"venue-booking/modules/table/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type TableRepositoryInterface interface {
	Create(ctx context.Context, table *entity.Table) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Table, error)
	// List returns every table from a single read.
	List(ctx context.Context) ([]entity.Table, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Table, error)
	SetStatus(ctx context.Context, id uuid.UUID, status entity.TableStatus) error
	// TransitionStatus moves every table in ids from -> to, or none of them.
	// It fails with STATE_CONFLICT when any table is not in from.
	TransitionStatus(ctx context.Context, ids []uuid.UUID, from, to entity.TableStatus) error
}

type TableRepository struct {
	db database.Database
}

func NewTableRepository(db database.Database) *TableRepository {
	return &TableRepository{db: db}
}

func (r *TableRepository) Create(ctx context.Context, table *entity.Table) error {
	query := `
		INSERT INTO venue_tables (id, code, name, capacity_min, capacity_max, floor, combinable_with, status, created_at, updated_at)
		VALUES (:id, :code, :name, :capacity_min, :capacity_max, :floor, :combinable_with, :status, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, table); err != nil {
		logger.Error("TableRepository:Create:Error:", err)
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errors.NewAppError(errors.ErrAlreadyExists, "Table code already exists", err)
		}
		return err
	}
	return nil
}

func (r *TableRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Table, error) {
	var table entity.Table
	err := r.db.GetContext(ctx, &table, `SELECT * FROM venue_tables WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("Table not found")
	}
	if err != nil {
		logger.Error("TableRepository:GetByID:Error:", err)
		return nil, err
	}
	return &table, nil
}

func (r *TableRepository) List(ctx context.Context) ([]entity.Table, error) {
	var tables []entity.Table
	if err := r.db.SelectContext(ctx, &tables, `SELECT * FROM venue_tables ORDER BY code`); err != nil {
		logger.Error("TableRepository:List:Error:", err)
		return nil, err
	}
	return tables, nil
}

func (r *TableRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Table, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tables []entity.Table
	query := `SELECT * FROM venue_tables WHERE id = ANY($1::uuid[]) ORDER BY code`
	if err := r.db.SelectContext(ctx, &tables, query, pq.Array(uuidStrings(ids))); err != nil {
		logger.Error("TableRepository:ListByIDs:Error:", err)
		return nil, err
	}
	return tables, nil
}

func (r *TableRepository) SetStatus(ctx context.Context, id uuid.UUID, status entity.TableStatus) error {
	res, err := r.db.ExecResultContext(ctx,
		`UPDATE venue_tables SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		logger.Error("TableRepository:SetStatus:Error:", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("Table not found")
	}
	return nil
}

func (r *TableRepository) TransitionStatus(ctx context.Context, ids []uuid.UUID, from, to entity.TableStatus) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("TableRepository:TransitionStatus:Begin:Error:", err)
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE venue_tables SET status = $1, updated_at = $2 WHERE id = ANY($3::uuid[]) AND status = $4`,
		to, time.Now(), pq.Array(uuidStrings(ids)), from)
	if err != nil {
		logger.Error("TableRepository:TransitionStatus:Exec:Error:", err)
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(ids) {
		return errors.NewStateConflict("Table status changed concurrently")
	}

	return tx.Commit()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
