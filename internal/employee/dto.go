package employee

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

type OnboardInput struct {
	Username     string           `json:"username" validate:"required,min=3,max=50"`
	Password     string           `json:"password" validate:"required,min=8"`
	FirstName    string           `json:"first_name" validate:"required,max=100"`
	LastName     string           `json:"last_name" validate:"max=100"`
	Email        string           `json:"email" validate:"omitempty,email"`
	Phone        string           `json:"phone" validate:"max=30"`
	RoleID       int64            `json:"role_id" validate:"required,gt=0"`
	DepartmentID *int64           `json:"department_id"`
	Designation  string           `json:"designation"`
	Position     string           `json:"position"`
	Salary       *decimal.Decimal `json:"salary"`
	Gender       string           `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	BankAccount  string           `json:"bank_account" validate:"max=34"`
	DateJoined   *time.Time       `json:"date_joined"`
}

func (in OnboardInput) Validate() error {
	v := validation.NewValidator()
	v.Field("username", strings.TrimSpace(in.Username)).Required().MinLength(3).MaxLength(50)
	v.Field("password", in.Password).Required().MinLength(8)
	v.Field("first_name", strings.TrimSpace(in.FirstName)).Required().MaxLength(100)
	v.Field("role_id", in.RoleID).Required().Positive()
	if in.Gender != "" {
		v.Field("gender", in.Gender).OneOf("Male", "Female", "Other")
	}
	if in.Salary != nil {
		v.Field("salary", *in.Salary).NonNegative()
	}
	if in.DateJoined != nil {
		v.Field("date_joined", *in.DateJoined).NotFuture()
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (in OnboardInput) salary() decimal.NullDecimal {
	if in.Salary == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*in.Salary)
}

type ReassignRequest struct {
	DepartmentID int64 `json:"department_id" validate:"required,gt=0"`
}
