package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "a-test-secret-that-is-long-enough-for-hs256"

// Mock repository for testing
type mockAuthRepository struct {
	users map[string]*auth.Credentials
}

func (m *mockAuthRepository) GetCredentials(ctx context.Context, username string) (*auth.Credentials, error) {
	creds, ok := m.users[username]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found", apperrors.ErrCodeInvalidCredentials)
	}
	return creds, nil
}

var _ = Describe("Service", func() {
	var (
		repo    *mockAuthRepository
		tokens  *auth.JWTTokenGenerator
		service *auth.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		hash, err := auth.NewBcryptHasher(bcrypt.MinCost).Hash("hunter2-hunter2")
		Expect(err).NotTo(HaveOccurred())

		dept := int64(4)
		repo = &mockAuthRepository{users: map[string]*auth.Credentials{
			"hr.lead": {UserID: 42, Username: "hr.lead", PasswordHash: hash, Role: apperrors.RoleHR, DepartmentID: &dept, Status: "Active"},
			"gone":    {UserID: 43, Username: "gone", PasswordHash: hash, Role: apperrors.RoleEmployee, Status: "Inactive"},
		}}
		tokens = auth.NewJWTTokenGenerator(testSecret, time.Hour)
		service = auth.NewService(repo, tokens, nil)
		ctx = context.Background()
	})

	Describe("Authenticate", func() {
		It("issues a token that resolves back to the acting user", func() {
			issued, err := service.Authenticate(ctx, auth.LoginDTO{Username: "hr.lead", Password: "hunter2-hunter2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(issued.TokenType).To(Equal("Bearer"))

			actor, err := service.ValidateAccessToken(issued.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(actor.UserID).To(Equal(int64(42)))
			Expect(actor.Role).To(Equal(apperrors.RoleHR))
			Expect(*actor.DepartmentID).To(Equal(int64(4)))
			Expect(actor.CanResolveRequests()).To(BeTrue())
		})

		It("rejects a wrong password and an unknown user the same way", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Username: "hr.lead", Password: "wrong"})
			Expect(err).To(MatchError(apperrors.ErrInvalidCredentials))

			_, err = service.Authenticate(ctx, auth.LoginDTO{Username: "nobody", Password: "hunter2-hunter2"})
			Expect(err).To(MatchError(apperrors.ErrInvalidCredentials))
		})

		It("refuses inactive users", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Username: "gone", Password: "hunter2-hunter2"})
			Expect(err).To(MatchError(apperrors.ErrUserInactive))
		})

		It("validates the request", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Username: " "})
			Expect(apperrors.IsType(err, apperrors.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("ValidateAccessToken", func() {
		It("reports expired tokens", func() {
			past := time.Now().Add(-3 * time.Hour)
			old := auth.NewJWTTokenGenerator(testSecret, time.Hour).WithClock(func() time.Time { return past })
			token, _, err := old.GenerateAccessToken(&apperrors.Actor{UserID: 42, Role: apperrors.RoleHR})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(MatchError(apperrors.ErrTokenExpired))
		})

		It("rejects tokens signed with another secret", func() {
			other := auth.NewJWTTokenGenerator("another-secret-that-is-also-long-enough", time.Hour)
			token, _, err := other.GenerateAccessToken(&apperrors.Actor{UserID: 42, Role: apperrors.RoleAdmin})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(MatchError(apperrors.ErrInvalidToken))
		})
	})

	Describe("AuthMiddleware", func() {
		var handler *auth.Handler

		BeforeEach(func() {
			handler = auth.NewHandler(service)
		})

		serve := func(header string) (*httptest.ResponseRecorder, *apperrors.Actor) {
			var seen *apperrors.Actor
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = apperrors.ActorFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, req)
			return rec, seen
		}

		It("puts the actor into the request context", func() {
			token, _, err := tokens.GenerateAccessToken(&apperrors.Actor{UserID: 7, Username: "jdoe", Role: apperrors.RoleEmployee})
			Expect(err).NotTo(HaveOccurred())

			rec, actor := serve("Bearer " + token)
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(actor).NotTo(BeNil())
			Expect(actor.Username).To(Equal("jdoe"))
		})

		It("rejects missing and malformed tokens", func() {
			rec, actor := serve("")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(actor).To(BeNil())

			rec, _ = serve("Bearer not.a.token")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(strings.Contains(rec.Body.String(), string(apperrors.ErrCodeInvalidToken))).To(BeTrue())
		})
	})
})
