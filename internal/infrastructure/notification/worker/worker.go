// Package worker consumes order lifecycle events from the bus and emits
// notification log lines plus an event counter. It stands in for the
// downstream channels (mail, push) a full deployment would have.
package worker

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	domorder "github.com/storeprime/backend/internal/domain/order"
	domoutbox "github.com/storeprime/backend/internal/domain/outbox"
)

type Worker struct {
	subscriber domoutbox.Subscriber
	events     *prometheus.CounterVec
	log        *zap.Logger
}

func New(subscriber domoutbox.Subscriber, events *prometheus.CounterVec, logger *zap.Logger) *Worker {
	return &Worker{
		subscriber: subscriber,
		events:     events,
		log:        logger.With(zap.String("component", "notification_worker")),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(domorder.CreatedEvent{}.EventName(), w.handleCreated)
	w.subscriber.Subscribe(domorder.StatusChangedEvent{}.EventName(), w.handleStatusChanged)
	w.subscriber.Subscribe(domorder.CancelledEvent{}.EventName(), w.handleCancelled)
}

func (w *Worker) handleCreated(ctx context.Context, e domoutbox.Event) error {
	_ = ctx
	evt, ok := e.(domorder.CreatedEvent)
	if !ok {
		return nil
	}
	w.count(evt.EventName())
	w.log.Info("order_created_notification",
		zap.String("order_id", evt.OrderID),
		zap.String("buyer_id", evt.BuyerID),
		zap.String("total", evt.Total),
	)
	return nil
}

func (w *Worker) handleStatusChanged(ctx context.Context, e domoutbox.Event) error {
	_ = ctx
	evt, ok := e.(domorder.StatusChangedEvent)
	if !ok {
		return nil
	}
	w.count(evt.EventName())
	w.log.Info("order_status_notification",
		zap.String("order_id", evt.OrderID),
		zap.String("seller_id", evt.SellerID),
		zap.String("status", string(evt.Status)),
	)
	return nil
}

func (w *Worker) handleCancelled(ctx context.Context, e domoutbox.Event) error {
	_ = ctx
	evt, ok := e.(domorder.CancelledEvent)
	if !ok {
		return nil
	}
	w.count(evt.EventName())
	w.log.Info("order_cancelled_notification",
		zap.String("order_id", evt.OrderID),
		zap.String("buyer_id", evt.BuyerID),
		zap.String("refunded", evt.Total),
	)
	return nil
}

func (w *Worker) count(event string) {
	if w.events != nil {
		w.events.WithLabelValues(event).Inc()
	}
}
