package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const deliverTimeout = 30 * time.Second

// InProcessDispatcher delivers from a buffered channel on background goroutines.
// Messages are dropped when the buffer is full.
type InProcessDispatcher struct {
	deliverer *Deliverer
	queue     chan Message
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	log       *zap.Logger
}

func NewInProcessDispatcher(deliverer *Deliverer, buffer, workers int, log *zap.Logger) *InProcessDispatcher {
	if buffer <= 0 {
		buffer = 100
	}
	if workers <= 0 {
		workers = 1
	}

	d := &InProcessDispatcher{
		deliverer: deliverer,
		queue:     make(chan Message, buffer),
		log:       log.With(zap.String("component", "notify_inprocess")),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *InProcessDispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		_ = d.deliverer.Deliver(ctx, msg)
		cancel()
	}
}

func (d *InProcessDispatcher) Dispatch(ctx context.Context, msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("Dispatcher closed, dropping message",
			zap.String("template", msg.TemplateKey),
			zap.String("correlation_id", msg.CorrelationID),
		)
		return nil
	}

	select {
	case d.queue <- msg:
	default:
		d.log.Warn("Notification queue full, dropping message",
			zap.String("template", msg.TemplateKey),
			zap.String("channel", string(msg.Channel)),
			zap.String("correlation_id", msg.CorrelationID),
		)
	}
	return nil
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (d *InProcessDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
