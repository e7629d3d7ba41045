package kpi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/frahmantamala/hr-backoffice/internal/transport"
	"github.com/frahmantamala/hr-backoffice/pkg/logger"
)

type ServiceAPI interface {
	Summary(ctx context.Context) (*Summary, error)
	HeadcountByDepartment(ctx context.Context) ([]DepartmentHeadcount, error)
	GenderDistribution(ctx context.Context) ([]Bucket, error)
	AttendanceDistribution(ctx context.Context, date time.Time) (*AttendanceDistribution, error)
	PayrollTotals(ctx context.Context, p period.Period) (*PayrollTotals, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     service,
	}
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) HeadcountByDepartment(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.HeadcountByDepartment(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"departments": rows})
}

func (h *Handler) GenderDistribution(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.Service.GenderDistribution(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"genders": buckets})
}

func (h *Handler) AttendanceDistribution(w http.ResponseWriter, r *http.Request) {
	var date time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.HandleServiceError(w, apperrors.NewValidationFieldError("date", "date must be YYYY-MM-DD", apperrors.ErrCodeInvalidDate))
			return
		}
		date = parsed
	}

	dist, err := h.Service.AttendanceDistribution(r.Context(), date)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dist)
}

func (h *Handler) PayrollTotals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		h.HandleServiceError(w, apperrors.NewValidationFieldError("year", "year must be a number", apperrors.ErrCodeInvalidPeriod))
		return
	}
	p, err := period.Parse(q.Get("month"), year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	totals, err := h.Service.PayrollTotals(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, totals)
}
