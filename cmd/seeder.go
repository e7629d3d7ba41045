package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/auth"
	"github.com/frahmantamala/hr-backoffice/internal/core/datamodel/employee"
	"github.com/frahmantamala/hr-backoffice/internal/core/datamodel/payroll"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	clearData    bool
	seedPassword string
)

type seedAccount struct {
	Username  string
	FirstName string
	LastName  string
	Role      string
	Dept      string
	Position  string
	Gender    string
	Salary    string
}

var seedAccounts = []seedAccount{
	{"admin", "System", "Admin", internal.RoleAdmin, "Human Resources", "Administrator", "Female", "90000"},
	{"hr.manager", "Hana", "Rahman", internal.RoleHR, "Human Resources", "HR Manager", "Female", "75000"},
	{"dev.one", "Dimas", "Pratama", internal.RoleEmployee, "Engineering", "Software Engineer", "Male", "60000"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed roles, departments, staff accounts and an active tax policy for development and testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"outbox_events", "reimbursements", "salary_advance_requests", "bank_requests",
				"leave_requests", "payroll", "attendance",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared transactional tables")
		}

		roles := make(map[string]int64)
		for _, name := range []string{internal.RoleAdmin, internal.RoleHR, internal.RoleEmployee} {
			role := employee.Role{RoleName: name}
			if err := db.Where(employee.Role{RoleName: name}).FirstOrCreate(&role).Error; err != nil {
				log.Fatalf("failed to seed role %s: %v", name, err)
			}
			roles[name] = role.RoleID
		}
		fmt.Println("Seeded roles")

		depts := make(map[string]int64)
		for _, name := range []string{"Human Resources", "Engineering", "Finance"} {
			dept := employee.Department{DeptName: name}
			if err := db.Where(employee.Department{DeptName: name}).FirstOrCreate(&dept).Error; err != nil {
				log.Fatalf("failed to seed department %s: %v", name, err)
			}
			depts[name] = dept.DeptID
		}
		fmt.Println("Seeded departments")

		hash, err := auth.NewBcryptHasher(cfg.Security.BCryptCost).Hash(seedPassword)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		today := time.Now().UTC().Truncate(24 * time.Hour)
		for _, a := range seedAccounts {
			if err := seedStaff(db, a, roles[a.Role], depts[a.Dept], hash, today); err != nil {
				log.Fatalf("failed to seed user %s: %v", a.Username, err)
			}
			fmt.Printf("Seeded %s user: %s\n", a.Role, a.Username)
		}

		var active int64
		if err := db.Model(&payroll.TaxPolicy{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
			log.Fatalf("failed to count tax policies: %v", err)
		}
		if active == 0 {
			policy := payroll.TaxPolicy{
				Name:          "Standard",
				TaxRate:       decimal.RequireFromString("10"),
				IsActive:      true,
				EffectiveFrom: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			}
			if err := db.Create(&policy).Error; err != nil {
				log.Fatalf("failed to seed tax policy: %v", err)
			}
			fmt.Println("Seeded active tax policy:", policy.Name)
		}

		fmt.Println("Seeding finished")
	},
}

func seedStaff(db *gorm.DB, a seedAccount, roleID, deptID int64, hash string, joined time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		user := employee.User{
			Username:      a.Username,
			FirstName:     a.FirstName,
			LastName:      a.LastName,
			Email:         a.Username + "@hr.local",
			RoleID:        roleID,
			DeptID:        &deptID,
			Designation:   a.Position,
			DateOfJoining: &joined,
			PasswordHash:  hash,
			Status:        employee.StatusActive,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Where("username = ?", a.Username).First(&user).Error; err != nil {
			return err
		}

		emp := employee.Employee{
			UserID:     user.UserID,
			DeptID:     &deptID,
			Position:   a.Position,
			Salary:     decimal.NewNullDecimal(decimal.RequireFromString(a.Salary)),
			Status:     employee.StatusActive,
			Gender:     a.Gender,
			DateJoined: &joined,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&emp).Error
	})
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear payroll, requests, attendance and outbox rows before seeding")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "Password given to every seeded account")
}
