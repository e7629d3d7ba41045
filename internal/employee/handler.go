package employee

import (
	"context"
	"net/http"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/transport"
	"github.com/frahmantamala/hr-backoffice/pkg/logger"
	"github.com/go-playground/validator/v10"
)

type ServiceAPI interface {
	Onboard(ctx context.Context, in OnboardInput) (*Employee, error)
	Terminate(ctx context.Context, employeeID int64) (*Employee, error)
	Reassign(ctx context.Context, employeeID, departmentID int64) (*Employee, error)
	Get(ctx context.Context, employeeID int64) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
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

func (h *Handler) Onboard(w http.ResponseWriter, r *http.Request) {
	var req OnboardInput
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.HandleServiceError(w, apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed))
		return
	}

	emp, err := h.Service.Onboard(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, emp)
}

func (h *Handler) Terminate(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	emp, err := h.Service.Terminate(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) Reassign(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var req ReassignRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.HandleServiceError(w, apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed))
		return
	}

	emp, err := h.Service.Reassign(r.Context(), id, req.DepartmentID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"employees": employees,
		"count":     len(employees),
	})
}
