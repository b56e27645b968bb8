package queue

import (
	"context"

	"ticketing-backend/internal/model"
)

type Delivery struct {
	Data *model.TicketDelivery
	Ack  func()
	Nack func(requeue bool)
}

type DeliveryQueue interface {
	// 發送寄送任務到隊列
	PublishDelivery(ctx context.Context, delivery *model.TicketDelivery) error
	// 訂閱寄送任務隊列
	SubscribeDeliveries(ctx context.Context) (<-chan Delivery, error)
}

type DeliveryQueueImpl struct {
	// 使用 Go channel 的記憶體版隊列，測試與單機部署使用
	ch chan *model.TicketDelivery
}

func NewDeliveryQueue(bufferSize int) DeliveryQueue {
	return &DeliveryQueueImpl{
		ch: make(chan *model.TicketDelivery, bufferSize),
	}
}

func (q *DeliveryQueueImpl) PublishDelivery(ctx context.Context, delivery *model.TicketDelivery) error {
	q.ch <- delivery
	return nil
}

func (q *DeliveryQueueImpl) SubscribeDeliveries(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: delivery,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- delivery // 簡單重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
