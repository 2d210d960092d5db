package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/metrics"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/push"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount     int           // default: 2
	QueueSize       int           // default: 1000
	DispatchTimeout time.Duration // default: 10 seconds
}

type service struct {
	sender push.Sender
	config Config

	queue  chan notification.Notification
	wg     sync.WaitGroup
	stopCh chan struct{}
	once   sync.Once
}

// NewNotificationService creates a notification service with background
// dispatch workers. Delivery is fire-and-forget: Queue never blocks, and a
// full queue drops the notification with a log line.
func NewNotificationService(sender push.Sender, cfg Config) notification.Service {
	// Set defaults
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if cfg.DispatchTimeout == 0 {
		cfg.DispatchTimeout = 10 * time.Second
	}

	s := &service{
		sender: sender,
		config: cfg,
		queue:  make(chan notification.Notification, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)

	return s
}

// Queue implements notification.Service.
func (s *service) Queue(ctx context.Context, n notification.Notification) error {
	select {
	case s.queue <- n:
		metrics.NotificationsQueuedTotal.Inc()
		return nil
	default:
		metrics.NotificationsDroppedTotal.Inc()
		slog.Warn("Notification queue full, dropping",
			"topic", n.Topic, "type", n.Type)
		return nil
	}
}

// worker drains the queue until Stop closes it.
func (s *service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case n := <-s.queue:
					s.dispatch(id, n)
				default:
					return
				}
			}
		case n := <-s.queue:
			s.dispatch(id, n)
		}
	}
}

func (s *service) dispatch(workerID int, n notification.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.DispatchTimeout)
	defer cancel()

	msg := push.Message{
		Topic: n.Topic,
		Title: n.Title,
		Body:  n.Message,
		Data:  n.Data,
	}
	if msg.Data == nil {
		msg.Data = map[string]interface{}{}
	}
	msg.Data["type"] = string(n.Type)

	if err := s.sender.Send(ctx, msg); err != nil {
		metrics.NotificationDispatchFailuresTotal.Inc()
		slog.Error("Notification dispatch failed",
			"worker", workerID, "topic", n.Topic, "type", n.Type, "error", err)
	}
}

// Stop implements notification.Service.
func (s *service) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
	slog.Info("Notification service stopped")
}
