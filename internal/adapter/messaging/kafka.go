package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafka.Writer the relay needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

const DefaultBatchSize = 100

// NewKafkaWriter builds a producer for topic. Messages are keyed by aggregate
// id, so the hash balancer keeps one loan's events in order.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            5,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// KafkaRelay ships outbox rows to the broker. Rows leave pending only after
// the broker acknowledged them; delivery is at-least-once, consumers dedupe
// on the event id header.
type KafkaRelay struct {
	outbox *OutboxPublisher
	writer MessageWriter
	batch  int
	now    func() time.Time
}

func NewKafkaRelay(outbox *OutboxPublisher, writer MessageWriter, batch int) *KafkaRelay {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &KafkaRelay{outbox: outbox, writer: writer, batch: batch, now: func() time.Time { return time.Now().UTC() }}
}

// Drain relays pending rows batch by batch until none are left or a write
// fails. It returns how many rows were sent.
func (r *KafkaRelay) Drain(ctx context.Context) (int, error) {
	sent := 0
	for {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		rows, err := r.outbox.Pending(ctx, r.batch)
		if err != nil {
			return sent, err
		}
		if len(rows) == 0 {
			return sent, nil
		}

		msgs := make([]kafka.Message, 0, len(rows))
		ids := make([]uint64, 0, len(rows))
		for _, row := range rows {
			msgs = append(msgs, kafka.Message{
				Key:   []byte(row.AggregateID),
				Value: []byte(row.Payload),
				Time:  row.OccurredAt,
				Headers: []kafka.Header{
					{Key: "event", Value: []byte(row.Name)},
					{Key: "event_id", Value: []byte(row.EventID)},
				},
			})
			ids = append(ids, row.ID)
		}

		if err := r.writer.WriteMessages(ctx, msgs...); err != nil {
			zap.L().Error("outbox relay write failed", zap.Int("rows", len(rows)), zap.Error(err))
			if merr := r.outbox.markFailed(ctx, ids, err); merr != nil {
				return sent, errors.Join(err, merr)
			}
			return sent, err
		}
		if err := r.outbox.markSent(ctx, ids, r.now()); err != nil {
			return sent, err
		}
		sent += len(rows)
		zap.L().Debug("outbox relayed", zap.Int("rows", len(rows)))

		if len(rows) < r.batch {
			return sent, nil
		}
	}
}
