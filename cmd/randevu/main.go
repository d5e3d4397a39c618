package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/randevuhq/randevu/app/controllers"
	"github.com/randevuhq/randevu/app/repository"
	"github.com/randevuhq/randevu/internal/pkg/cache"
	"github.com/randevuhq/randevu/internal/pkg/database"
	"github.com/randevuhq/randevu/internal/pkg/env"
	"github.com/randevuhq/randevu/internal/pkg/geoip"
	"github.com/randevuhq/randevu/internal/pkg/limits"
	"github.com/randevuhq/randevu/internal/pkg/notify"
	"github.com/randevuhq/randevu/internal/pkg/payment"
	"github.com/randevuhq/randevu/internal/pkg/plancatalog"
	"github.com/randevuhq/randevu/internal/pkg/router"
	"github.com/randevuhq/randevu/internal/pkg/subscription"
	"github.com/randevuhq/randevu/internal/pkg/sweeper"
)

func main() {
	app, shutdown := NewApplication()
	defer shutdown()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

// NewApplication wires the full service. The returned shutdown func stops the
// background workers and must run before the process exits.
func NewApplication() (*fiber.App, func()) {
	env.SetupEnvFile()
	database.SetupDatabase()
	database.SeedDefaultPlans()
	cache.SetupCache()

	repos := repository.NewRepositories(database.GetDB())

	queue := notify.NewQueue(notify.LogSender{}, repos.Notification)
	queue.Start()

	notifier := notify.NewQueueNotifier(queue)
	gateway := payment.NewStripeGatewayFromEnv()
	svc := subscription.NewService(repos, gateway, notifier)

	catalog := plancatalog.NewCatalog(repos.Plan, geoip.NewClientFromEnv())
	validator := limits.NewValidator(repos.Subscription, repos.Plan, repos.Usage)

	manager := sweeper.NewManager(svc)
	manager.Start()

	app := fiber.New(fiber.Config{
		AppName: "randevu",
	})

	app.Use(recover.New(), logger.New())

	router.InstallRouters(app,
		router.NewApiRouter(
			controllers.NewPlanController(catalog),
			controllers.NewSubscriptionController(svc),
			controllers.NewUsageController(validator),
			controllers.NewSweeperController(svc),
		),
	)

	shutdown := func() {
		manager.Stop()
		queue.Stop()
	}

	return app, shutdown
}
