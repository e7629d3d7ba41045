package workflow

import (
	"context"
	"net/http"
	"strconv"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/transport"
	"github.com/frahmantamala/hr-backoffice/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
)

type ServiceAPI interface {
	List(ctx context.Context, filter Filter) ([]Request, error)
	Get(ctx context.Context, kind Kind, id int64) (*Request, error)
	UpdateStatus(ctx context.Context, actor *apperrors.Actor, kind Kind, id int64, target Status) (*Request, error)
	Submit(ctx context.Context, in SubmitInput) (*Request, error)
	AggregateCounts(ctx context.Context) (*Counts, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter Filter

	if raw := q.Get("kind"); raw != "" {
		kind, err := ParseKind(raw)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		filter.Kind = &kind
	}
	if raw := q.Get("status"); raw != "" {
		filter.Status = Status(raw)
	}
	if raw := q.Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.HandleServiceError(w, apperrors.NewValidationFieldError("employee_id", "employee_id must be a number", apperrors.ErrCodeValidationFailed))
			return
		}
		filter.EmployeeID = &id
	}

	requests, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	kind, id, err := h.kindAndID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	request, err := h.Service.Get(r.Context(), kind, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := apperrors.ActorFromContext(r.Context())
	if !ok {
		h.Logger.Error("UpdateStatus: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	kind, id, err := h.kindAndID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var req UpdateStatusRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	target, err := ParseTargetStatus(req.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	request, err := h.Service.UpdateStatus(r.Context(), actor, kind, id, target)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("UpdateStatus: request resolved",
		"kind", kind,
		"id", id,
		"status", target,
		"user_id", actor.UserID)

	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
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

	request, err := h.Service.Submit(r.Context(), in)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, request)
}

func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Service.AggregateCounts(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, counts)
}

func (h *Handler) kindAndID(r *http.Request) (Kind, int64, error) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", 0, err
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}
