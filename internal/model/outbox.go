package model

import (
	"time"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

const (
	EventAccountingPosted   = "accounting.posted"
	EventAccountingReversed = "accounting.reversed"
)

// OutboxMessage journals accounting events inside the same transaction
// that posts them, so downstream consumers see every posting and
// reversal at least once even though the order operation itself never
// waits on accounting. FAILED rows remain queryable for remediation.
type OutboxMessage struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageKey    string    `gorm:"type:varchar(64);not null" json:"message_key"`
	Topic         string    `gorm:"type:varchar(64);not null" json:"topic"`
	EventType     string    `gorm:"type:varchar(64);not null" json:"event_type"`
	Payload       string    `gorm:"type:text;not null" json:"payload"`
	CorrelationID string    `gorm:"type:varchar(64);index" json:"correlation_id"`
	Status        string    `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	RetryCount    int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_message"
}
