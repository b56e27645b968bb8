package worker

import (
	"context"

	"ticketing-backend/internal/queue"
	"ticketing-backend/internal/service"
	"ticketing-backend/monitoring"
	"ticketing-backend/pkg/logger"

	"go.uber.org/zap"
)

type DeliveryWorker interface {
	// 訂閱寄送任務隊列
	Start(ctx context.Context) error
}

type DeliveryWorkerImpl struct {
	service service.DeliveryService
	queue   queue.DeliveryQueue
}

func NewDeliveryWorker(service service.DeliveryService, queue queue.DeliveryQueue) DeliveryWorker {
	return &DeliveryWorkerImpl{
		service: service,
		queue:   queue,
	}
}

func (w *DeliveryWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeDeliveries(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			err := w.service.DeliverTicket(ctx, msg.Data)

			if err != nil {
				// 暫時性失敗（SMTP 連不上、DB 讀取失敗）就重試；票已提交，寄送只能盡力而為
				logger.WithComponent("worker").Warn("deliver ticket failed, will retry",
					zap.Int("ticket_id", msg.Data.TicketID), zap.Error(err))
				monitoring.TicketDeliveries.WithLabelValues("failed").Inc()
				msg.Nack(true)
			} else {
				monitoring.TicketDeliveries.WithLabelValues("delivered").Inc()
				msg.Ack()
			}
		}
	}()
	return nil
}
