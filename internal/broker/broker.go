package broker

import (
	"context"

	"sticker-processor/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
)

type TaskProducer interface {
	SendTask(ctx context.Context, task *domain.ConversionTask) error
	Close() error
}

type ResultProducer interface {
	SendResult(ctx context.Context, result *domain.ConversionResult) error
	Close() error
}

type TaskConsumer interface {
	StartConsuming(ctx context.Context, out chan<- kafka.Message, strategy retry.Strategy)
	Commit(ctx context.Context, msg kafka.Message) error
	Close() error
}
