package notify

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/randevuhq/randevu/app/models"
)

// Notifier hands alerts to the delivery collaborator. All methods are
// fire-and-forget: they must never return an error into a lifecycle
// transition, and enqueue failures are only logged.
type Notifier interface {
	TrialEnding(businessID uint, trialEnd time.Time)
	PaymentFailed(businessID uint, failedCount int)
	SubscriptionRenewed(businessID uint, periodEnd time.Time)
	SubscriptionExpired(businessID uint)
}

// QueueNotifier enqueues alert jobs onto the Redis-backed queue for the
// background worker to deliver.
type QueueNotifier struct {
	queue *Queue
}

// NewQueueNotifier creates a notifier writing to the given queue.
func NewQueueNotifier(queue *Queue) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (n *QueueNotifier) enqueue(businessID uint, alertType, message string) {
	if err := n.queue.Enqueue(Job{
		BusinessID: businessID,
		Type:       alertType,
		Message:    message,
	}); err != nil {
		log.Errorf("[Notify] failed to enqueue %s alert for business %d: %v", alertType, businessID, err)
	}
}

func (n *QueueNotifier) TrialEnding(businessID uint, trialEnd time.Time) {
	msg := fmt.Sprintf("Your trial ends on %s. Add a payment method to keep your subscription.",
		trialEnd.Format("2006-01-02"))
	n.enqueue(businessID, models.NotificationTypeTrialEnding, msg)
}

func (n *QueueNotifier) PaymentFailed(businessID uint, failedCount int) {
	msg := fmt.Sprintf("Your renewal payment failed (attempt %d). Please update your payment method.", failedCount)
	n.enqueue(businessID, models.NotificationTypePaymentFailed, msg)
}

func (n *QueueNotifier) SubscriptionRenewed(businessID uint, periodEnd time.Time) {
	msg := fmt.Sprintf("Your subscription was renewed through %s.", periodEnd.Format("2006-01-02"))
	n.enqueue(businessID, models.NotificationTypeRenewed, msg)
}

func (n *QueueNotifier) SubscriptionExpired(businessID uint) {
	n.enqueue(businessID, models.NotificationTypeExpired, "Your subscription has expired.")
}

// NopNotifier discards all alerts. Used in tests and one-shot CLI runs where
// no queue is wired.
type NopNotifier struct{}

func (NopNotifier) TrialEnding(uint, time.Time)         {}
func (NopNotifier) PaymentFailed(uint, int)             {}
func (NopNotifier) SubscriptionRenewed(uint, time.Time) {}
func (NopNotifier) SubscriptionExpired(uint)            {}
