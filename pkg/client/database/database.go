// Package database provides the handles the teardown uses to probe and
// reconfigure the database server behind a replication service.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrUnsupportedType = errors.New("unsupported datasource type")
	ErrNoValue         = errors.New("query returned no value")
)

const connectTimeout = 2 * time.Second

// Handle is a reachable database server.
type Handle interface {
	// GetValue returns the first column of the first row, or ErrNoValue.
	GetValue(ctx context.Context, query string) (string, error)
	Run(ctx context.Context, statement string) error
	Close() error
}

// ReadOnlyToggler is implemented by servers that carry a global read-only
// flag which has to be cleared before replication metadata can be reset.
type ReadOnlyToggler interface {
	Handle
	// ReadOnly returns "1" or "0"; any error means the server is not responsive.
	ReadOnly(ctx context.Context) (string, error)
	DisableReadOnly(ctx context.Context) error
}

type Datasource struct {
	Type     string
	Host     string
	Port     int
	User     string
	Password string
}

// Open returns a handle for the datasource. No connection is made until the
// first query.
func Open(ds Datasource) (Handle, error) {
	var (
		h   Handle
		err error
	)
	switch strings.ToLower(ds.Type) {
	case "", "mysql":
		h, err = NewMySQL(ds)
	case "postgresql", "postgres":
		h, err = NewPostgreSQL(ds)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedType, ds.Type)
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

type sqlHandle struct {
	db *sqlx.DB
}

func (h *sqlHandle) GetValue(ctx context.Context, query string) (string, error) {
	var value *string
	if err := h.db.QueryRowxContext(ctx, query).Scan(&value); err != nil {
		return "", err
	}
	if value == nil {
		return "", ErrNoValue
	}
	return *value, nil
}

func (h *sqlHandle) Run(ctx context.Context, statement string) error {
	_, err := h.db.ExecContext(ctx, statement)
	return err
}

func (h *sqlHandle) Close() error {
	return h.db.Close()
}

func open(driver, dsn string) (*sqlHandle, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Minute)
	return &sqlHandle{db: db}, nil
}
