package kafka_middleware

import (
	"context"
	"time"

	"agenda/pkg/kafka"
	"agenda/pkg/metrics"
)

func MetricsProducerMiddleware(m *metrics.KafkaMetrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		m.ObservePublish(msg.EventType(), err == nil, time.Since(start).Seconds())
		return err
	}
}
