package payroll

import (
	"context"
	"net/http"
	"strconv"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/frahmantamala/hr-backoffice/internal/transport"
	"github.com/frahmantamala/hr-backoffice/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	Generate(ctx context.Context, employeeID int64, p period.Period) (decimal.Decimal, error)
	Record(ctx context.Context, in RecordInput) (*Line, error)
	MarkProcessed(ctx context.Context, employeeID int64, p period.Period) (*Line, error)
	ListForEmployee(ctx context.Context, employeeID int64) ([]View, error)
	ListFiltered(ctx context.Context, filter Filter) ([]View, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	validate *validator.Validate
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     service,
		validate:    validator.New(),
	}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.HandleServiceError(w, apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed))
		return
	}

	p, err := period.Parse(req.Month, req.Year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	net, err := h.Service.Generate(r.Context(), req.EmployeeID, p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, GenerateResponse{
		EmployeeID: req.EmployeeID,
		Month:      p.MonthName(),
		Year:       p.Year,
		NetSalary:  net,
	})
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.HandleServiceError(w, apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed))
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	line, err := h.Service.Record(r.Context(), in)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewLineResponse(line))
}

func (h *Handler) MarkProcessed(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.IDParam(r, "employeeID")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.HandleServiceError(w, apperrors.NewValidationFieldError("year", "year must be a number", apperrors.ErrCodeInvalidPeriod))
		return
	}
	p, err := period.Parse(chi.URLParam(r, "month"), year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	line, err := h.Service.MarkProcessed(r.Context(), employeeID, p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewLineResponse(line))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	views, err := h.Service.ListFiltered(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"payroll": views,
		"count":   len(views),
	})
}

func (h *Handler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	views, err := h.Service.ListForEmployee(r.Context(), employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"payroll": views,
		"count":   len(views),
	})
}

func filterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	var f Filter

	if month := q.Get("month"); month != "" {
		year, err := strconv.Atoi(q.Get("year"))
		if err != nil {
			return Filter{}, apperrors.NewValidationFieldError("year", "year is required with month", apperrors.ErrCodeInvalidPeriod)
		}
		p, err := period.Parse(month, year)
		if err != nil {
			return Filter{}, err
		}
		f.Period = &p
	}
	if raw := q.Get("department_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, apperrors.NewValidationFieldError("department_id", "department_id must be a number", apperrors.ErrCodeValidationFailed)
		}
		f.DepartmentID = &id
	}
	if raw := q.Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Filter{}, apperrors.NewValidationFieldError("employee_id", "employee_id must be a number", apperrors.ErrCodeValidationFailed)
		}
		f.EmployeeID = &id
	}
	f.Status = q.Get("status")
	return f, nil
}
