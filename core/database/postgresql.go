package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"venue-booking/core/constants"
	"venue-booking/core/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// IDatabase is the subset of sqlx the repositories use.
type IDatabase interface {
	ExecContext(ctx context.Context, query string, args ...any) error
	// ExecResultContext is ExecContext for conditional writes that need RowsAffected.
	ExecResultContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedQueryContext(ctx context.Context, query string, arg any) (*sqlx.Rows, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	Rebind(query string) string
}

type Database struct {
	sqlx *sqlx.DB
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

func (c DatabaseConfig) dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, constants.DatabaseSSLMode)
}

func InitDB(config DatabaseConfig) (Database, error) {
	conn, err := sqlx.Connect("postgres", config.dsn())
	if err != nil {
		logger.Error("Database:InitDB:Connect:Error:", err, "host", config.Host, "database", config.DBName)
		return Database{}, fmt.Errorf("connect database: %w", err)
	}

	conn.SetMaxOpenConns(constants.DatabaseMaxOpenConns)
	conn.SetMaxIdleConns(constants.DatabaseMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(constants.DatabaseConnMaxLifetime) * time.Minute)

	logger.Info("Database:InitDB",
		"host", config.Host,
		"port", config.Port,
		"database", config.DBName,
		"maxOpenConns", constants.DatabaseMaxOpenConns,
	)
	return Database{sqlx: conn}, nil
}

func (d *Database) Close() error {
	return d.sqlx.Close()
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) error {
	_, err := d.sqlx.ExecContext(ctx, query, args...)
	return err
}

func (d *Database) ExecResultContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.sqlx.ExecContext(ctx, query, args...)
}

func (d *Database) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.GetContext(ctx, dest, query, args...)
}

func (d *Database) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.SelectContext(ctx, dest, query, args...)
}

func (d *Database) NamedQueryContext(ctx context.Context, query string, arg any) (*sqlx.Rows, error) {
	return d.sqlx.NamedQueryContext(ctx, query, arg)
}

func (d *Database) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return d.sqlx.NamedExecContext(ctx, query, arg)
}

func (d *Database) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return d.sqlx.BeginTxx(ctx, opts)
}

func (d *Database) Rebind(query string) string {
	return d.sqlx.Rebind(query)
}
