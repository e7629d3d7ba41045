package internal_test

import (
	"context"
	"time"

	"github.com/frahmantamala/hr-backoffice/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			AllowedOrigins:    "http://localhost:3000",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
		},
		Database: internal.DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          "postgres://hr:hr@localhost:5432/hr?sslmode=disable",
		},
		Security: internal.SecurityConfig{
			JWTSecret:           "0123456789abcdef0123456789abcdef",
			AccessTokenDuration: time.Hour,
			BCryptCost:          10,
		},
		Observability: internal.ObservabilityConfig{
			Logging: internal.LoggingConfig{Level: "info", Format: "json"},
		},
	}
}

var _ = Describe("Config", func() {
	Describe("Validate", func() {
		It("accepts a complete config", func() {
			Expect(validConfig().Validate()).To(Succeed())
		})

		It("rejects a short jwt secret", func() {
			cfg := validConfig()
			cfg.Security.JWTSecret = "short"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("JWTSecret")))
		})

		It("rejects more idle than open connections", func() {
			cfg := validConfig()
			cfg.Database.MaxIdleConns = 20
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
		})

		It("rejects a read timeout shorter than the header timeout", func() {
			cfg := validConfig()
			cfg.Server.ReadTimeout = time.Second
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("read_timeout")))
		})

		It("rejects an unknown log level", func() {
			cfg := validConfig()
			cfg.Observability.Logging.Level = "verbose"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("Level")))
		})

		It("collects every failure", func() {
			cfg := validConfig()
			cfg.Database.Source = ""
			cfg.Security.BCryptCost = 40
			err := cfg.Validate()
			Expect(err).To(MatchError(ContainSubstring("Source")))
			Expect(err).To(MatchError(ContainSubstring("BCryptCost")))
		})
	})

	Describe("LoadConfigFromEnv", func() {
		It("reads overrides from the environment", func() {
			GinkgoT().Setenv("HTTP_PORT", "9090")
			GinkgoT().Setenv("DB_SOURCE", "postgres://example")
			GinkgoT().Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
			GinkgoT().Setenv("PAYROLL_CRON", "@monthly")

			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Server.Port).To(Equal(9090))
			Expect(cfg.Database.Source).To(Equal("postgres://example"))
			Expect(cfg.Messaging.Brokers()).To(Equal([]string{"k1:9092", "k2:9092"}))
			Expect(cfg.Scheduler.PayrollCron).To(Equal("@monthly"))
		})

		It("falls back to defaults", func() {
			GinkgoT().Setenv("KAFKA_BROKERS", "")
			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Messaging.Brokers()).To(BeNil())
			Expect(cfg.Redis.DedupTTL).To(Equal(24 * time.Hour))
			Expect(cfg.Database.QueryTimeout).To(Equal(5 * time.Second))
		})
	})
})

var _ = Describe("AppError", func() {
	It("matches a sentinel after WithCause", func() {
		err := internal.ErrEmployeeNotFound.WithCause(internal.ErrRoleNotFound)
		Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
	})

	It("reports store timeouts with their own code", func() {
		err := internal.NewStoreError("load payroll", context.DeadlineExceeded)
		Expect(err.Code).To(Equal(internal.ErrCodeStoreTimeout))
	})

	It("uses the first field message for validation errors", func() {
		err := internal.NewValidationFieldError("year", "year must be positive", internal.ErrCodeInvalidPeriod)
		Expect(err.Error()).To(Equal("year must be positive"))
	})
})

var _ = Describe("Actor", func() {
	It("round trips through the context", func() {
		ctx := internal.ContextWithActor(context.Background(), &internal.Actor{UserID: 1, Role: internal.RoleHR})
		actor, ok := internal.ActorFromContext(ctx)
		Expect(ok).To(BeTrue())
		Expect(actor.CanResolveRequests()).To(BeTrue())
		Expect(actor.IsAdmin()).To(BeFalse())
	})
})
