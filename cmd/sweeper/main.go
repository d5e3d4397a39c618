// Command sweeper runs one lifecycle sweep and exits. Meant for cron setups
// that prefer a process per run over the in-server ticker.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/randevuhq/randevu/app/repository"
	"github.com/randevuhq/randevu/internal/pkg/cache"
	"github.com/randevuhq/randevu/internal/pkg/database"
	"github.com/randevuhq/randevu/internal/pkg/env"
	"github.com/randevuhq/randevu/internal/pkg/notify"
	"github.com/randevuhq/randevu/internal/pkg/payment"
	"github.com/randevuhq/randevu/internal/pkg/subscription"
)

func main() {
	var (
		renewals = flag.Bool("renewals", false, "process due renewals")
		expired  = flag.Bool("expired", false, "process ended and exhausted subscriptions")
		trials   = flag.Bool("trial-notices", false, "queue trial-ending notices")
		timeout  = flag.Duration("timeout", 10*time.Minute, "overall sweep deadline")
	)
	flag.Parse()

	if !*renewals && !*expired && !*trials {
		*renewals, *expired, *trials = true, true, true
	}

	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repos := repository.NewRepositories(database.GetDB())

	queue := notify.NewQueue(notify.LogSender{}, repos.Notification)
	queue.Start()
	defer queue.Stop()

	svc := subscription.NewService(repos, payment.NewStripeGatewayFromEnv(), notify.NewQueueNotifier(queue))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *renewals {
		res, err := svc.ProcessSubscriptionRenewals(ctx)
		if err != nil {
			log.Fatalf("renewal sweep: %v", err)
		}
		log.Printf("renewal sweep: processed=%d renewed=%d past_due=%d failed=%d",
			res.Processed, res.Renewed, res.MarkedPastDue, res.Failed)
	}

	if *expired {
		res, err := svc.ProcessExpiredSubscriptions(ctx)
		if err != nil {
			log.Fatalf("expiry sweep: %v", err)
		}
		log.Printf("expiry sweep: processed=%d canceled=%d expired=%d failed=%d",
			res.Processed, res.Canceled, res.Expired, res.Failed)
	}

	if *trials {
		notified, err := svc.NotifyTrialsEnding(ctx)
		if err != nil {
			log.Fatalf("trial notice sweep: %v", err)
		}
		log.Printf("trial notice sweep: notified=%d", notified)
	}
}
