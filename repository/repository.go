// Package repository owns every read and write against the catalog store.
// Handlers receive a *Repository at construction time and never touch gorm
// directly.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/logger"
)

// ReconnectAttempts is the number of reopen cycles tried per operation
// before StorageUnavailableError is returned.
const ReconnectAttempts = 3

// Store is the connection owner the repository draws sessions from.
// Reopen replaces the pool only while stale is still the current one.
type Store interface {
	GetDB() *gorm.DB
	Reopen(stale *gorm.DB) error
}

type Repository struct {
	store    Store
	log      *logger.Logger
	pageSize int
}

type Option func(*Repository)

// WithPageSize overrides DefaultPageSize for every listing.
func WithPageSize(size int) Option {
	return func(r *Repository) {
		if size > 0 {
			r.pageSize = size
		}
	}
}

func New(store Store, log *logger.Logger, opts ...Option) *Repository {
	if log == nil {
		log = logger.Nop()
	}
	r := &Repository{store: store, log: log, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PageSize returns the size used when a PageRequest carries none.
func (r *Repository) PageSize() int {
	return r.pageSize
}

// run executes op against a context-bound session. Connectivity failures
// reopen the store and retry the whole op, up to ReconnectAttempts times.
func (r *Repository) run(ctx context.Context, op func(db *gorm.DB) error) error {
	db := r.store.GetDB()
	err := op(db.WithContext(ctx))
	if err == nil || !IsConnectivityError(err) {
		return translate(err)
	}

	for attempt := 1; attempt <= ReconnectAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.log.Warn("store connection lost, reopening", "attempt", attempt, "error", err)
		if rerr := r.store.Reopen(db); rerr != nil {
			err = rerr
			continue
		}
		db = r.store.GetDB()
		err = op(db.WithContext(ctx))
		if err == nil || !IsConnectivityError(err) {
			return translate(err)
		}
	}

	r.log.Error("store unavailable", "attempts", ReconnectAttempts, "error", err)
	return &apperr.StorageUnavailableError{Attempts: ReconnectAttempts, Err: err}
}

// transaction runs fn inside a single transaction; any error rolls it back.
// fn must use only the tx handle it is given.
func (r *Repository) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.run(ctx, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}

// IsConnectivityError reports failures that a fresh connection may cure.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "sql: database is closed") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe")
}

// translate maps store constraint failures that slipped past the explicit
// pre-checks onto the catalog error kinds. Catalog errors pass through.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Duplicate("Resource already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Referential("Resource is referenced by, or references, a missing or dependent resource")
	}
	return err
}

// exists runs a SELECT EXISTS probe; query is the inner SELECT.
func exists(tx *gorm.DB, query string, args ...interface{}) (bool, error) {
	var found bool
	err := tx.Raw("SELECT EXISTS("+query+")", args...).Scan(&found).Error
	return found, err
}
