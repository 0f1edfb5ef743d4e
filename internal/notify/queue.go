package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	// TypeDeliver is the asynq task type carrying one Message.
	TypeDeliver = "notification:deliver"
	// QueueName is the asynq queue notifications are enqueued on.
	QueueName = "notifications"

	maxRetry = 5
)

// QueueDispatcher enqueues messages on Redis for the worker process to deliver.
type QueueDispatcher struct {
	client *asynq.Client
	log    *zap.Logger
}

func NewQueueDispatcher(client *asynq.Client, log *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{
		client: client,
		log:    log.With(zap.String("component", "notify_queue")),
	}
}

func NewDeliverTask(msg Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return asynq.NewTask(TypeDeliver, payload, asynq.MaxRetry(maxRetry), asynq.Queue(QueueName)), nil
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, msg Message) error {
	task, err := NewDeliverTask(msg)
	if err != nil {
		return err
	}

	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue notification %s: %w", msg.TemplateKey, err)
	}

	d.log.Debug("Notification enqueued",
		zap.String("task_id", info.ID),
		zap.String("template", msg.TemplateKey),
		zap.String("channel", string(msg.Channel)),
		zap.String("correlation_id", msg.CorrelationID),
	)
	return nil
}

// HandleDeliverTask is the asynq handler for TypeDeliver. Undecodable payloads are not retried.
func (d *Deliverer) HandleDeliverTask(ctx context.Context, task *asynq.Task) error {
	var msg Message
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		d.log.Error("Invalid notification payload", zap.Error(err))
		return fmt.Errorf("decode notification payload: %v: %w", err, asynq.SkipRetry)
	}
	return d.Deliver(ctx, msg)
}
