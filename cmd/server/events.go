package main

import (
	"context"
	"fmt"
	"log/slog"

	"tickethub/internal/notify"
	"tickethub/internal/platform/config"
)

// newEventSink selects where provisioning events go. The log sink is the
// default so a bare process needs no broker.
func newEventSink(ctx context.Context, cfg config.Events, log *slog.Logger) (notify.Sink, error) {
	switch cfg.Sink {
	case "", "log":
		return notify.NewLogSink(log), nil
	case "kafka":
		sink, err := notify.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, fmt.Errorf("kafka event sink: %w", err)
		}
		return sink, nil
	case "rabbitmq":
		sink, err := notify.NewRabbitMQSink(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq event sink: %w", err)
		}
		return sink, nil
	}
	return nil, fmt.Errorf("unknown EVENTS_SINK %q", cfg.Sink)
}
