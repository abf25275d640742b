package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"sticker-processor/internal/broker"
	kafka_impl "sticker-processor/internal/broker/kafka"
	"sticker-processor/internal/cache"
	memory_cache "sticker-processor/internal/cache/memory"
	postgres_cache "sticker-processor/internal/cache/postgres"
	redis_cache "sticker-processor/internal/cache/redis"
	"sticker-processor/internal/codec/lottie"
	"sticker-processor/internal/codec/still"
	"sticker-processor/internal/codec/video"
	"sticker-processor/internal/config"
	"sticker-processor/internal/domain"
	"sticker-processor/internal/matrix"
	"sticker-processor/internal/offload"
	"sticker-processor/internal/pipeline"
	minio_repo "sticker-processor/internal/repository/sticker/cloud/minio"
	postgres_repo "sticker-processor/internal/repository/sticker/db/postgres"
	"sticker-processor/internal/uploader"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

// Worker consumes conversion tasks, runs each sticker through the pipeline
// and uploads the result content-addressed.
type Worker struct {
	cfg         *config.Config
	logger      *zlog.Zerolog
	db          *dbpg.DB
	consumer    broker.TaskConsumer
	results     broker.ResultProducer
	fileRepo    *minio_repo.FileRepository
	stickerRepo *postgres_repo.StickersRepository
	pipeline    *pipeline.Pipeline
	uploader    *uploader.Uploader
	exec        *offload.Executor
	concurrency int
	wg          sync.WaitGroup
}

func NewWorker(cfg *config.Config, logger *zlog.Zerolog) (*Worker, error) {
	dbOpts := &dbpg.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}

	db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	fileRepo, err := minio_repo.NewMinIORepository(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}

	dedupCache, err := newDedupCache(cfg, db)
	if err != nil {
		return nil, err
	}

	exec := offload.New(cfg.Worker.OffloadWorkers)

	pipe := pipeline.New(
		exec,
		lottie.NewRenderer(cfg.Convert.LottieBinary),
		video.NewTranscoder(cfg.Convert.FFmpegBinary, cfg.Convert.FFprobeBinary),
		still.NewCodec(),
		logger,
	)

	matrixClient := matrix.NewClient(matrix.Config{
		HomeserverURL: cfg.Matrix.HomeserverURL,
		AccessToken:   cfg.Matrix.AccessToken,
	})

	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.TaskTopic).
		Str("group", cfg.Kafka.GroupID).
		Str("cache_backend", cfg.CacheBackend).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("Worker configuration")

	return &Worker{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		consumer:    kafka_impl.NewConsumerClient(cfg),
		results:     kafka_impl.NewResultPublisher(cfg),
		fileRepo:    fileRepo,
		stickerRepo: postgres_repo.NewStickersRepository(db, cfg.DefaultRetryStrategy()),
		pipeline:    pipe,
		uploader:    uploader.New(matrixClient, dedupCache, logger),
		exec:        exec,
		concurrency: cfg.Worker.Concurrency,
	}, nil
}

func newDedupCache(cfg *config.Config, db *dbpg.DB) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case "postgres":
		return postgres_cache.New(db, cfg.DefaultRetryStrategy()), nil
	case "redis":
		c, err := redis_cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		return c, nil
	case "memory":
		return memory_cache.New(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.CacheBackend)
	}
}

func (w *Worker) Run() error {
	w.logger.Info().Int("concurrency", w.concurrency).Msg("Starting worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		w.logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal, stopping worker")
		cancel()
	}()

	messages := make(chan kafka.Message, w.concurrency*2)
	go w.consumer.StartConsuming(ctx, messages, w.cfg.DefaultRetryStrategy())

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.processWorker(ctx, id, messages)
		}(i)
	}

	<-ctx.Done()
	w.logger.Info().Msg("Shutting down worker gracefully")

	w.wg.Wait()
	w.exec.Close()

	if w.db != nil && w.db.Master != nil {
		w.db.Master.Close()
	}
	if w.consumer != nil {
		w.consumer.Close()
	}
	if w.results != nil {
		w.results.Close()
	}

	w.logger.Info().Msg("Worker stopped gracefully")
	return nil
}

func (w *Worker) processWorker(ctx context.Context, id int, messages <-chan kafka.Message) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Int("worker_id", id).Msg("Worker stopping")
			return
		case msg := <-messages:
			start := time.Now()
			if err := w.safeProcessMessage(ctx, id, msg); err != nil {
				w.logger.Error().
					Err(err).
					Int("worker_id", id).
					Int64("offset", msg.Offset).
					Msg("Failed to process message")
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				w.logger.Error().
					Err(err).
					Int("worker_id", id).
					Int64("offset", msg.Offset).
					Msg("Failed to commit message")
				continue
			}
			w.logger.Debug().
				Int("worker_id", id).
				Int64("offset", msg.Offset).
				Dur("duration", time.Since(start)).
				Msg("Message processed and committed")
		}
	}
}

func (w *Worker) safeProcessMessage(ctx context.Context, workerID int, msg kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Int("worker_id", workerID).
				Interface("panic", r).
				Int64("offset", msg.Offset).
				Msg("Panic recovered while processing message")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.processMessage(ctx, msg)
}

func (w *Worker) processMessage(ctx context.Context, msg kafka.Message) error {
	var task domain.ConversionTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		w.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to unmarshal task")
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}

	w.logger.Info().
		Str("task_id", task.ID).
		Str("sticker_id", task.StickerID).
		Str("filename", task.OriginalFilename).
		Msg("Processing conversion task")

	media, err := w.fetchOriginal(ctx, task)
	if err != nil {
		return w.fail(ctx, task, fmt.Errorf("fetch original: %w", err))
	}

	converted, err := w.pipeline.Convert(ctx, media, task.AnimationFormat, task.MaxWidth, task.MaxHeight)
	if err != nil {
		return w.fail(ctx, task, fmt.Errorf("convert: %w", err))
	}

	uri, isNew, err := w.uploader.Upload(ctx, converted)
	if err != nil {
		return w.fail(ctx, task, fmt.Errorf("upload: %w", err))
	}

	if err := w.stickerRepo.MarkCompleted(ctx, task.StickerID, uri, converted.Width, converted.Height, !isNew); err != nil {
		w.logger.Error().Err(err).Str("sticker_id", task.StickerID).Msg("Failed to record completion")
	}

	w.sendResult(ctx, &domain.ConversionResult{
		ID:         task.ID,
		StickerID:  task.StickerID,
		Status:     domain.StatusCompleted,
		ContentURI: uri,
		Width:      converted.Width,
		Height:     converted.Height,
		Reused:     !isNew,
	})

	w.logger.Info().
		Str("sticker_id", task.StickerID).
		Str("content_uri", uri.String()).
		Bool("reused", !isNew).
		Msg("Sticker converted and uploaded")
	return nil
}

func (w *Worker) fetchOriginal(ctx context.Context, task domain.ConversionTask) (domain.Media, error) {
	reader, err := w.fileRepo.GetObject(ctx, task.OriginalPath)
	if err != nil {
		return domain.Media{}, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return domain.Media{}, err
	}

	return domain.NewMedia(task.OriginalFilename, data), nil
}

func (w *Worker) fail(ctx context.Context, task domain.ConversionTask, err error) error {
	w.logger.Error().Err(err).Str("sticker_id", task.StickerID).Msg("Conversion failed")

	if dbErr := w.stickerRepo.MarkFailed(ctx, task.StickerID, err.Error()); dbErr != nil {
		w.logger.Error().Err(dbErr).Str("sticker_id", task.StickerID).Msg("Failed to record failure")
	}

	w.sendResult(ctx, &domain.ConversionResult{
		ID:        task.ID,
		StickerID: task.StickerID,
		Status:    domain.StatusFailed,
		Error:     err.Error(),
	})

	return err
}

func (w *Worker) sendResult(ctx context.Context, result *domain.ConversionResult) {
	if err := w.results.SendResult(ctx, result); err != nil {
		w.logger.Error().Err(err).Str("sticker_id", result.StickerID).Msg("Failed to send result")
	}
}
