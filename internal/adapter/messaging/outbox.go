package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"p2p-lending-engine/internal/domain/event"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
)

// OutboxEvent is one notification waiting to be relayed to the broker.
type OutboxEvent struct {
	ID          uint64       `gorm:"primaryKey;column:id"`
	EventID     string       `gorm:"size:36;uniqueIndex:ux_outbox_event_id"`
	Name        string       `gorm:"size:64;index"`
	AggregateID string       `gorm:"size:32"`
	Payload     string       `gorm:"type:text"`
	Status      OutboxStatus `gorm:"size:16;index:idx_outbox_status_id"`
	Attempts    int          `gorm:"not null;default:0"`
	LastError   string       `gorm:"type:text"`
	OccurredAt  time.Time
	SentAt      *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }

var _ event.Publisher = (*OutboxPublisher)(nil)

// OutboxPublisher stores events for the relay. It runs after the financial
// commit, so a failed insert loses nothing but the notification.
type OutboxPublisher struct {
	db *gorm.DB
}

func NewOutboxPublisher(db *gorm.DB) *OutboxPublisher { return &OutboxPublisher{db: db} }

func (p *OutboxPublisher) Publish(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]OutboxEvent, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", e.Name, err)
		}
		rows = append(rows, OutboxEvent{
			EventID:     e.ID,
			Name:        string(e.Name),
			AggregateID: e.AggregateID,
			Payload:     string(payload),
			Status:      OutboxPending,
			OccurredAt:  e.OccurredAt,
		})
	}
	if err := p.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("outbox insert: %w", err)
	}
	return nil
}

// Pending returns up to limit unsent rows, oldest first.
func (p *OutboxPublisher) Pending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	var out []OutboxEvent
	q := p.db.WithContext(ctx).Where("status = ?", OutboxPending).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (p *OutboxPublisher) markSent(ctx context.Context, ids []uint64, at time.Time) error {
	return p.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": OutboxSent, "sent_at": at, "last_error": ""}).Error
}

func (p *OutboxPublisher) markFailed(ctx context.Context, ids []uint64, cause error) error {
	return p.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"attempts": gorm.Expr("attempts + 1"), "last_error": cause.Error()}).Error
}

// Purge deletes sent rows older than before.
func (p *OutboxPublisher) Purge(ctx context.Context, before time.Time) (int64, error) {
	res := p.db.WithContext(ctx).
		Where("status = ? AND sent_at < ?", OutboxSent, before).
		Delete(&OutboxEvent{})
	return res.RowsAffected, res.Error
}
