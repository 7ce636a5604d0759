package job

import (
	"context"
	"time"

	"shopledger/internal/config"
	"shopledger/internal/infrastructure/mq"
	"shopledger/internal/model"
	"shopledger/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	dispatchInterval = 5 * time.Second
	dispatchBatch    = 100
)

// OutboxDispatcher polls PENDING outbox rows and publishes them to
// Kafka. Rows that keep failing are parked as FAILED so the remediation
// endpoint can surface them; nothing is ever silently dropped.
type OutboxDispatcher struct {
	outboxRepo *repository.OutboxRepository
	maxRetry   int
	stop       chan struct{}
	done       chan struct{}
}

func NewOutboxDispatcher(outboxRepo *repository.OutboxRepository, maxRetry int) *OutboxDispatcher {
	if maxRetry < 1 {
		maxRetry = 3
	}
	return &OutboxDispatcher{
		outboxRepo: outboxRepo,
		maxRetry:   maxRetry,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (d *OutboxDispatcher) Start() {
	go d.run()
	config.Logger().Info("outbox dispatcher started")
}

func (d *OutboxDispatcher) Stop() {
	close(d.stop)
	<-d.done
	config.Logger().Info("outbox dispatcher stopped")
}

func (d *OutboxDispatcher) run() {
	defer close(d.done)

	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			d.dispatchPending()
		}
	}
}

func (d *OutboxDispatcher) dispatchPending() {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchInterval)
	defer cancel()

	messages, err := d.outboxRepo.GetPendingMessages(ctx, dispatchBatch)
	if err != nil {
		config.LogError("outbox", "dispatchPending", nil, err)
		return
	}

	for _, msg := range messages {
		if err := mq.SendMessage(msg.Topic, msg.MessageKey, msg.Payload); err != nil {
			d.handleSendFailure(ctx, msg, err)
			continue
		}
		if err := d.outboxRepo.UpdateStatus(ctx, msg.ID, model.OutboxStatusSent); err != nil {
			config.LogError("outbox", "dispatchPending", logrus.Fields{
				"message_id": msg.ID,
			}, err)
		}
	}
}

func (d *OutboxDispatcher) handleSendFailure(ctx context.Context, msg *model.OutboxMessage, sendErr error) {
	config.LogError("outbox", "handleSendFailure", logrus.Fields{
		"message_id":  msg.ID,
		"event_type":  msg.EventType,
		"retry_count": msg.RetryCount,
	}, sendErr)

	if msg.RetryCount+1 >= d.maxRetry {
		if err := d.outboxRepo.MarkAsFailed(ctx, msg.ID); err != nil {
			config.LogError("outbox", "handleSendFailure", logrus.Fields{
				"message_id": msg.ID,
			}, err)
		}
		return
	}
	if err := d.outboxRepo.IncrementRetryCount(ctx, msg.ID); err != nil {
		config.LogError("outbox", "handleSendFailure", logrus.Fields{
			"message_id": msg.ID,
		}, err)
	}
}
