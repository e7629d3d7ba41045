package postgres

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/auth"
	"github.com/frahmantamala/hr-backoffice/internal/core/store"
	"gorm.io/gorm"
)

type Repository struct {
	db      *gorm.DB
	timeout store.Timeout
}

func NewRepository(db *gorm.DB, timeout time.Duration) *Repository {
	return &Repository{
		db:      db,
		timeout: store.Timeout(timeout),
	}
}

func (r *Repository) GetCredentials(ctx context.Context, username string) (*auth.Credentials, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var rows []struct {
		UserID       int64
		Username     string
		PasswordHash string
		RoleName     sql.NullString
		DeptID       sql.NullInt64
		Status       string
	}
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.user_id, u.username, u.password_hash, ro.role_name, u.dept_id, u.status").
		Joins("LEFT JOIN roles ro ON ro.role_id = u.role_id").
		Where("u.username = ?", username).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, store.Translate(err, "failed to load credentials", nil)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFoundError("user not found", apperrors.ErrCodeInvalidCredentials)
	}

	row := rows[0]
	creds := &auth.Credentials{
		UserID:       row.UserID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Role:         row.RoleName.String,
		Status:       row.Status,
	}
	if row.DeptID.Valid {
		id := row.DeptID.Int64
		creds.DepartmentID = &id
	}
	return creds, nil
}
