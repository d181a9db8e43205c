// internal/models/stream_log.go
package models

import (
	"time"
)

// StreamLog is one attributed stream payment. TxHash carries the unique
// index that makes recording idempotent under at-least-once webhook
// delivery: a redelivered transaction inserts nothing. The column is a
// pointer so client-confirmed streams without a signature store NULL,
// which Postgres exempts from the uniqueness constraint.
type StreamLog struct {
	BaseModel
	SongMint       string       `json:"song_mint" gorm:"size:64;not null;index"`
	TxHash         *string      `json:"tx_hash" gorm:"size:128;uniqueIndex"`
	Payer          string       `json:"payer" gorm:"size:64;index"`
	Destination    string       `json:"destination" gorm:"size:64"`
	AmountLamports int64        `json:"amount_lamports" gorm:"default:0"`
	Slot           int64        `json:"slot" gorm:"default:0"`
	Timestamp      time.Time    `json:"timestamp"`
	Source         StreamSource `json:"source" gorm:"type:varchar(20);default:'webhook'"`
	Raw            JSONB        `json:"raw,omitempty" gorm:"type:jsonb"`
}
