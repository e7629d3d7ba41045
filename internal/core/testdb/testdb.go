// Package testdb opens an in-memory SQLite database carrying the full HR schema
// for repository tests.
package testdb

import (
	"github.com/frahmantamala/hr-backoffice/internal/core/datamodel/attendance"
	"github.com/frahmantamala/hr-backoffice/internal/core/datamodel/employee"
	"github.com/frahmantamala/hr-backoffice/internal/core/datamodel/outbox"
	"github.com/frahmantamala/hr-backoffice/internal/core/datamodel/payroll"
	"github.com/frahmantamala/hr-backoffice/internal/core/datamodel/request"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated database. The pool is pinned to one connection since
// every new connection to :memory: would see an empty database.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	err = db.AutoMigrate(
		&employee.Department{},
		&employee.Role{},
		&employee.User{},
		&employee.Employee{},
		&payroll.Payroll{},
		&payroll.TaxPolicy{},
		&attendance.Attendance{},
		&request.LeaveRequest{},
		&request.BankRequest{},
		&request.SalaryAdvanceRequest{},
		&request.Reimbursement{},
		&outbox.Event{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SQLX shares the gorm connection pool with sqlx read models.
func SQLX(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
