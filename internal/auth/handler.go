package auth

import (
	"context"
	"net/http"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/transport"
	"github.com/frahmantamala/hr-backoffice/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*apperrors.Actor, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Me echoes the acting user resolved from the bearer token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := apperrors.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrInvalidToken)
		return
	}
	h.WriteJSON(w, http.StatusOK, actor)
}

// AuthMiddleware puts the acting user of a valid bearer token into the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, apperrors.NewUnauthorizedError("missing authorization token", apperrors.ErrCodeInvalidToken))
			return
		}

		actor, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		ctx := apperrors.ContextWithActor(r.Context(), actor)
		ctx = logger.With(ctx, "user_id", actor.UserID, "role", actor.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
