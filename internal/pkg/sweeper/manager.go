package sweeper

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/randevuhq/randevu/internal/pkg/env"
	"github.com/randevuhq/randevu/internal/pkg/subscription"
)

// Manager runs the renewal and expiry sweeps on recurring intervals. Sweeps
// are also safe to trigger externally (cron or the internal HTTP endpoints)
// because every transition is a status-guarded conditional update.
type Manager struct {
	svc           *subscription.Service
	renewalTicker *time.Ticker
	expiryTicker  *time.Ticker
	trialTicker   *time.Ticker
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

// NewManager creates a sweep manager for the given lifecycle service.
func NewManager(svc *subscription.Service) *Manager {
	return &Manager{
		svc:    svc,
		stopCh: make(chan struct{}),
	}
}

// Start starts the background sweep loops.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be
	// restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[Sweeper] starting background sweeps")

	renewalInterval := intervalFromEnv("SWEEP_RENEWAL_INTERVAL_MINUTES", 15)
	expiryInterval := intervalFromEnv("SWEEP_EXPIRY_INTERVAL_MINUTES", 30)
	trialInterval := intervalFromEnv("SWEEP_TRIAL_NOTICE_INTERVAL_MINUTES", 360)

	m.renewalTicker = time.NewTicker(renewalInterval)
	m.wg.Add(1)
	go m.renewalWorker()

	m.expiryTicker = time.NewTicker(expiryInterval)
	m.wg.Add(1)
	go m.expiryWorker()

	m.trialTicker = time.NewTicker(trialInterval)
	m.wg.Add(1)
	go m.trialNoticeWorker()

	log.Info("[Sweeper] started successfully")
}

// Stop stops the sweep loops and waits for them to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[Sweeper] stopping background sweeps...")

	if m.renewalTicker != nil {
		m.renewalTicker.Stop()
	}
	if m.expiryTicker != nil {
		m.expiryTicker.Stop()
	}
	if m.trialTicker != nil {
		m.trialTicker.Stop()
	}

	close(m.stopCh)
	m.wg.Wait()
	m.running = false

	log.Info("[Sweeper] stopped")
}

func (m *Manager) renewalWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.renewalTicker.C:
			result, err := m.svc.ProcessSubscriptionRenewals(context.Background())
			if err != nil {
				log.Errorf("[Sweeper] renewal sweep failed: %v", err)
				continue
			}
			log.Infof("[Sweeper] renewal sweep: processed=%d renewed=%d past_due=%d failed=%d",
				result.Processed, result.Renewed, result.MarkedPastDue, result.Failed)
		}
	}
}

func (m *Manager) expiryWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.expiryTicker.C:
			result, err := m.svc.ProcessExpiredSubscriptions(context.Background())
			if err != nil {
				log.Errorf("[Sweeper] expiry sweep failed: %v", err)
				continue
			}
			log.Infof("[Sweeper] expiry sweep: processed=%d canceled=%d expired=%d failed=%d",
				result.Processed, result.Canceled, result.Expired, result.Failed)
		}
	}
}

func (m *Manager) trialNoticeWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.trialTicker.C:
			count, err := m.svc.NotifyTrialsEnding(context.Background())
			if err != nil {
				log.Errorf("[Sweeper] trial notice sweep failed: %v", err)
				continue
			}
			if count > 0 {
				log.Infof("[Sweeper] trial notice sweep: queued=%d", count)
			}
		}
	}
}

func intervalFromEnv(key string, defMinutes int) time.Duration {
	if raw := env.GetEnv(key, ""); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return time.Duration(v) * time.Minute
		}
	}
	return time.Duration(defMinutes) * time.Minute
}
