package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/randevuhq/randevu/app/models"
	"github.com/randevuhq/randevu/app/repository"
	"github.com/randevuhq/randevu/internal/pkg/cache"
)

const (
	// Redis keys
	alertQueueKey = "notify_queue"

	popTimeout = 5 * time.Second
)

// Job is one queued alert.
type Job struct {
	ID         string    `json:"id"`
	BusinessID uint      `json:"business_id"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// Sender delivers an alert through an external channel (SMS/push/email
// provider). The default implementation only logs; real providers are wired
// by the deployment.
type Sender interface {
	Send(job Job) error
}

// LogSender writes alerts to the application log.
type LogSender struct{}

func (LogSender) Send(job Job) error {
	log.Infof("[Notify] business=%d type=%s message=%q", job.BusinessID, job.Type, job.Message)
	return nil
}

// Queue is a Redis-list-backed alert queue with a single background worker.
// Delivery is best-effort: a failed send is logged and dropped, never retried
// into lifecycle state.
type Queue struct {
	client        *redis.Client
	sender        Sender
	notifications repository.NotificationRepository
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

// NewQueue creates an alert queue. A nil sender falls back to LogSender.
func NewQueue(sender Sender, notifications repository.NotificationRepository) *Queue {
	if sender == nil {
		sender = LogSender{}
	}
	return &Queue{
		client:        cache.GetClient(),
		sender:        sender,
		notifications: notifications,
		stopCh:        make(chan struct{}),
	}
}

// Enqueue pushes an alert job onto the queue.
func (q *Queue) Enqueue(job Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(context.Background(), alertQueueKey, raw).Err()
}

// Start launches the delivery worker.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.stopCh = make(chan struct{})
	q.running = true

	q.wg.Add(1)
	go q.worker()
	log.Info("[Notify] delivery worker started")
}

// Stop stops the delivery worker and waits for it to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.stopCh)
	q.mu.Unlock()

	q.wg.Wait()
	log.Info("[Notify] delivery worker stopped")
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			return
		default:
		}

		res, err := q.client.BRPop(context.Background(), popTimeout, alertQueueKey).Result()
		if err != nil {
			if err != redis.Nil {
				log.Errorf("[Notify] queue pop failed: %v", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(res) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Errorf("[Notify] dropping malformed job: %v", err)
			continue
		}
		q.deliver(job)
	}
}

func (q *Queue) deliver(job Job) {
	trace := &models.Notification{
		BusinessID: job.BusinessID,
		Type:       job.Type,
		Message:    job.Message,
	}
	if q.notifications != nil {
		if err := q.notifications.Create(trace); err != nil {
			log.Errorf("[Notify] failed to persist notification trace: %v", err)
		}
	}

	if err := q.sender.Send(job); err != nil {
		log.Errorf("[Notify] delivery failed for business %d (%s): %v", job.BusinessID, job.Type, err)
		return
	}
	if q.notifications != nil && trace.ID != 0 {
		if err := q.notifications.MarkDelivered(trace.ID, time.Now()); err != nil {
			log.Errorf("[Notify] failed to mark notification delivered: %v", err)
		}
	}
}
