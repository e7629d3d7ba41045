package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	"github.com/frahmantamala/hr-backoffice/internal/core/period"
	"github.com/frahmantamala/hr-backoffice/internal/notification"
	notificationPostgres "github.com/frahmantamala/hr-backoffice/internal/notification/postgres"
	"github.com/frahmantamala/hr-backoffice/internal/payroll"
	payrollPostgres "github.com/frahmantamala/hr-backoffice/internal/payroll/postgres"
	"github.com/frahmantamala/hr-backoffice/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start the outbox relay, the monthly payroll scheduler or the notification consumer.`,
}

var outboxWorkerCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Start the outbox relay",
	Long:  `Poll pending outbox events and publish them to kafka, or to the in-process bus when no brokers are configured`,
	Run: func(cmd *cobra.Command, args []string) {
		startOutboxWorker()
	},
}

var payrollWorkerCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Start the monthly payroll scheduler",
	Long:  `Generate payroll lines for every active employee on the configured cron schedule`,
	Run: func(cmd *cobra.Command, args []string) {
		startPayrollWorker()
	},
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Start the notification consumer",
	Long:  `Consume relayed events from kafka, drop redeliveries through redis and dispatch notifications`,
	Run: func(cmd *cobra.Command, args []string) {
		startNotificationWorker()
	},
}

var (
	batchSize     int
	pollInterval  time.Duration
	payrollSpec   string
	payrollPeriod string
	runOnce       bool
)

func startOutboxWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.LoggerWrapper()

	sqlDB, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer sqlDB.Close()
	db, err := initGorm(sqlDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}

	var publisher notification.Publisher
	bus := events.NewEventBus(log)
	if brokers := config.Messaging.Brokers(); len(brokers) > 0 {
		writer := notification.NewKafkaWriter(brokers)
		defer writer.Close()
		publisher = notification.NewKafkaPublisher(writer)
		log.Info("outbox relay publishing to kafka", "brokers", brokers, "topic", config.Messaging.Topic)
	} else {
		subscribeAuditLog(bus, log)
		publisher = notification.NewBusPublisher(bus)
		log.Warn("no kafka brokers configured, relaying onto the in-process bus")
	}

	relay := notification.NewRelay(
		notificationPostgres.NewOutboxRepository(db, config.Messaging.Topic),
		publisher,
		log,
		getDurationFlag(pollInterval, config.Messaging.OutboxPollInterval),
		getIntFlag(batchSize, config.Messaging.OutboxBatchSize),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay.Run(ctx)
	bus.Wait()
	log.Info("outbox worker shutdown complete")
}

func startPayrollWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.LoggerWrapper()

	sqlDB, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer sqlDB.Close()
	db, err := initGorm(sqlDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}

	bus := events.NewEventBus(log)
	subscribeAuditLog(bus, log)
	service := payroll.NewService(payrollPostgres.NewPayrollRepository(db, config.Database.QueryTimeout), bus, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run := func(p period.Period) {
		result, err := service.GenerateForActive(ctx, p)
		if err != nil {
			log.Error("payroll batch failed", "period", p.String(), "error", err)
			return
		}
		for empID, ferr := range result.Failures {
			log.Warn("payroll line not generated", "emp_id", empID, "period", p.String(), "error", ferr)
		}
	}

	if runOnce {
		p := payrollPeriodFor(time.Now().UTC())
		if payrollPeriod != "" {
			if p, err = period.ParseYearMonth(payrollPeriod); err != nil {
				fmt.Fprintf(os.Stderr, "Invalid --period: %v\n", err)
				os.Exit(1)
			}
		}
		run(p)
		bus.Wait()
		return
	}

	spec := getStringFlag(payrollSpec, config.Scheduler.PayrollCron)
	scheduler := cron.New(cron.WithLocation(time.UTC))
	if _, err := scheduler.AddFunc(spec, func() { run(payrollPeriodFor(time.Now().UTC())) }); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid payroll schedule %q: %v\n", spec, err)
		os.Exit(1)
	}

	scheduler.Start()
	log.Info("payroll scheduler started", "schedule", spec)

	<-ctx.Done()
	log.Info("received signal, stopping payroll scheduler")
	<-scheduler.Stop().Done()
	bus.Wait()
	log.Info("payroll scheduler shutdown complete")
}

// payrollPeriodFor returns the month a scheduled run closes: the previous
// calendar month of now.
func payrollPeriodFor(now time.Time) period.Period {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return period.Of(first.AddDate(0, -1, 0))
}

func startNotificationWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.LoggerWrapper()

	brokers := config.Messaging.Brokers()
	if len(brokers) == 0 {
		fmt.Fprintln(os.Stderr, "Notification worker needs messaging.kafka_brokers")
		os.Exit(1)
	}

	rdb := initRedis(config.Redis)
	defer rdb.Close()

	reader := notification.NewKafkaReader(brokers, config.Messaging.Topic, config.Messaging.ConsumerGroup)
	defer reader.Close()

	consumer := notification.NewConsumer(
		reader,
		notification.NewDeduplicator(rdb, config.Redis.DedupTTL),
		notification.LogDispatcher(log),
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.Run(ctx)
	log.Info("notification worker shutdown complete")
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	outboxWorkerCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Outbox events per poll (overrides config)")
	outboxWorkerCmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "Outbox poll interval (overrides config)")

	payrollWorkerCmd.Flags().StringVar(&payrollSpec, "schedule", "", "Cron schedule (overrides config)")
	payrollWorkerCmd.Flags().BoolVar(&runOnce, "once", false, "Generate one period and exit")
	payrollWorkerCmd.Flags().StringVar(&payrollPeriod, "period", "", "Period for --once as YYYY-MM (defaults to the previous month)")

	workerCmd.AddCommand(outboxWorkerCmd)
	workerCmd.AddCommand(payrollWorkerCmd)
	workerCmd.AddCommand(notificationWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
