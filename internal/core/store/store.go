// Package store holds the pieces every repository shares: error translation
// into the application taxonomy and per-operation timeouts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// Timeout bounds a single store operation.
type Timeout time.Duration

func (t Timeout) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return apperrors.WithTimeout(ctx, time.Duration(t))
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Translate maps a raw store error onto the application taxonomy. AppErrors
// pass through untouched so repositories can return domain errors from inside
// transactions.
func Translate(err error, op string, notFound *apperrors.AppError) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.IsAppError(err); ok {
		return err
	}
	if notFound != nil && IsNotFound(err) {
		return notFound
	}
	return apperrors.NewStoreError(op, err)
}

// UnknownEmployee is shown wherever a row points at an employee that no longer resolves.
const UnknownEmployee = "Unknown employee"

// DisplayName joins the user name columns of a LEFT JOIN, falling back to
// UnknownEmployee when the join found nothing.
func DisplayName(first, last sql.NullString) string {
	name := strings.TrimSpace(first.String + " " + last.String)
	if name == "" {
		return UnknownEmployee
	}
	return name
}
