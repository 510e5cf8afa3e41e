package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rgclark/putterbase/internal/config"
	"github.com/rgclark/putterbase/internal/metrics"
	"github.com/rgclark/putterbase/pkg/logger"
)

// Consumer reads JSON observation messages from Kafka and feeds them to
// the batch ingester. Offsets commit only after a batch is stored, so
// delivery is at-least-once; the store's duplicate skip makes redelivery
// harmless.
type Consumer struct {
	reader    *kafka.Reader
	ingester  *Ingester
	log       *slog.Logger
	batchSize int
	maxWait   time.Duration
}

// NewConsumer creates a Consumer from stream config.
func NewConsumer(cfg config.StreamConfig, ing *Ingester, log *slog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   cfg.Topic,
			MaxWait: cfg.MaxWait,
		}),
		ingester:  ing,
		log:       logger.Component(log, "stream"),
		batchSize: cfg.BatchSize,
		maxWait:   cfg.MaxWait,
	}
}

// Run consumes until the context is canceled. Malformed messages are
// logged, counted, and committed past; they are never retried.
func (c *Consumer) Run(ctx context.Context) error {
	var (
		batch   []RawObservation
		pending []kafka.Message
	)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if _, err := c.ingester.Ingest(ctx, batch); err != nil {
			return fmt.Errorf("ingesting stream batch: %w", err)
		}
		if err := c.reader.CommitMessages(ctx, pending...); err != nil {
			return fmt.Errorf("committing offsets: %w", err)
		}
		batch = batch[:0]
		pending = pending[:0]
		return nil
	}

	for {
		fetchCtx, cancel := context.WithTimeout(ctx, c.maxWait)
		msg, err := c.reader.FetchMessage(fetchCtx)
		cancel()

		switch {
		case errors.Is(err, context.Canceled) && ctx.Err() != nil:
			return flush()
		case errors.Is(err, context.DeadlineExceeded):
			// Quiet topic; push out what we have.
			if err := flush(); err != nil {
				return err
			}
			continue
		case errors.Is(err, io.EOF):
			return flush()
		case err != nil:
			return fmt.Errorf("fetching message: %w", err)
		}

		metrics.StreamLagSeconds.Set(time.Since(msg.Time).Seconds())

		var raw RawObservation
		if err := json.Unmarshal(msg.Value, &raw); err != nil {
			c.log.Warn("dropping malformed message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			metrics.IngestSkippedTotal.WithLabelValues("malformed_message").Inc()
			pending = append(pending, msg)
			continue
		}

		batch = append(batch, raw)
		pending = append(pending, msg)

		if len(batch) >= c.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
}

// Close shuts down the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
