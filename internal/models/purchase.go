// internal/models/purchase.go
package models

// Purchase grants a wallet permanent access to a song. Existence of a row
// for (song_mint, user_address) is the only access signal downstream code
// consumes; rows are never updated or deleted once written. TxHash is
// unique so duplicate webhook deliveries and retried client confirmations
// collapse to a single grant.
type Purchase struct {
	BaseModel
	SongMint       string `json:"song_mint" gorm:"size:64;not null;index:idx_purchases_song_user,priority:1"`
	UserAddress    string `json:"user_address" gorm:"size:64;not null;index:idx_purchases_song_user,priority:2"`
	TxHash         string `json:"tx_hash" gorm:"size:128;not null;uniqueIndex"`
	AmountLamports int64  `json:"amount_lamports" gorm:"not null"`
}
