package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"sticker-processor/internal/config"
	"sticker-processor/internal/domain"

	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

type TaskPublisher struct {
	producer *wbkafka.Producer
	retries  retry.Strategy
}

func NewTaskPublisher(cfg *config.Config) *TaskPublisher {
	return &TaskPublisher{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TaskTopic),
		retries:  cfg.DefaultRetryStrategy(),
	}
}

func (p *TaskPublisher) SendTask(ctx context.Context, task *domain.ConversionTask) error {
	value, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	return p.producer.SendWithRetry(ctx, p.retries, []byte(task.StickerID), value)
}

func (p *TaskPublisher) Close() error {
	return p.producer.Close()
}

type ResultPublisher struct {
	producer *wbkafka.Producer
	retries  retry.Strategy
}

func NewResultPublisher(cfg *config.Config) *ResultPublisher {
	return &ResultPublisher{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ResultTopic),
		retries:  cfg.DefaultRetryStrategy(),
	}
}

func (p *ResultPublisher) SendResult(ctx context.Context, result *domain.ConversionResult) error {
	value, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return p.producer.SendWithRetry(ctx, p.retries, []byte(result.StickerID), value)
}

func (p *ResultPublisher) Close() error {
	return p.producer.Close()
}
