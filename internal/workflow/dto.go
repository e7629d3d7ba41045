package workflow

import (
	"strings"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// SubmitInput creates a Pending request. Only the fields of the chosen kind are read.
type SubmitInput struct {
	Kind       Kind
	EmployeeID int64
	Start      time.Time
	End        time.Time
	Reason     string
	OldAccount string
	NewAccount string
	Amount     decimal.Decimal
}

func (in SubmitInput) Validate() error {
	if !in.Kind.Valid() {
		return apperrors.ErrInvalidRequestKind
	}

	v := validation.NewValidator()
	v.Field("employee_id", in.EmployeeID).Required().Positive()
	v.Field("reason", in.Reason).MaxLength(500)

	switch in.Kind {
	case KindLeave:
		v.Field("start_date", in.Start).Required()
		v.Field("end_date", in.End).Required().NotBefore(in.Start, "start_date")
	case KindBankChange:
		v.Field("new_account", strings.TrimSpace(in.NewAccount)).Required().MaxLength(34)
		v.Field("new_account", in.NewAccount).Custom(func(value interface{}) *apperrors.AppError {
			if strings.TrimSpace(in.OldAccount) != "" && strings.TrimSpace(in.OldAccount) == strings.TrimSpace(in.NewAccount) {
				return apperrors.NewValidationFieldError("new_account", "new_account must differ from old_account", apperrors.ErrCodeValidationFailed)
			}
			return nil
		})
	case KindSalaryAdvance, KindReimbursement:
		v.Field("amount", in.Amount).Positive()
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Payload builds the kind-specific part of the request.
func (in SubmitInput) Payload() Payload {
	switch in.Kind {
	case KindLeave:
		return LeavePayload{Start: in.Start.UTC(), End: in.End.UTC(), Reason: in.Reason}
	case KindBankChange:
		return BankChangePayload{OldAccount: strings.TrimSpace(in.OldAccount), NewAccount: strings.TrimSpace(in.NewAccount)}
	case KindSalaryAdvance:
		return SalaryAdvancePayload{Amount: in.Amount, Reason: in.Reason}
	case KindReimbursement:
		return ReimbursementPayload{Amount: in.Amount, Reason: in.Reason}
	}
	return nil
}

type SubmitRequest struct {
	Kind       string          `json:"kind" validate:"required"`
	EmployeeID int64           `json:"employee_id" validate:"required,gt=0"`
	StartDate  string          `json:"start_date,omitempty"`
	EndDate    string          `json:"end_date,omitempty"`
	Reason     string          `json:"reason,omitempty" validate:"max=500"`
	OldAccount string          `json:"old_account,omitempty"`
	NewAccount string          `json:"new_account,omitempty"`
	Amount     decimal.Decimal `json:"amount,omitempty"`
}

func (r SubmitRequest) ToInput() (SubmitInput, error) {
	kind, err := ParseKind(r.Kind)
	if err != nil {
		return SubmitInput{}, err
	}

	in := SubmitInput{
		Kind:       kind,
		EmployeeID: r.EmployeeID,
		Reason:     r.Reason,
		OldAccount: r.OldAccount,
		NewAccount: r.NewAccount,
		Amount:     r.Amount,
	}
	if r.StartDate != "" {
		if in.Start, err = time.Parse(dateLayout, r.StartDate); err != nil {
			return SubmitInput{}, apperrors.NewValidationFieldError("start_date", "start_date must look like YYYY-MM-DD", apperrors.ErrCodeInvalidDate)
		}
	}
	if r.EndDate != "" {
		if in.End, err = time.Parse(dateLayout, r.EndDate); err != nil {
			return SubmitInput{}, apperrors.NewValidationFieldError("end_date", "end_date must look like YYYY-MM-DD", apperrors.ErrCodeInvalidDate)
		}
	}
	return in, nil
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
