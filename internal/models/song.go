// internal/models/song.go
package models

import (
	"github.com/lib/pq"
)

// Song is a registered piece of monetizable content, identified by its
// NFT mint address. The artist and curator wallets are the recipients the
// webhook attribution engine matches transfer destinations against.
//
// StreamCount and LastStreamSlot are maintained exclusively by the
// recording engine: the counter only ever moves by atomic +1 per recorded
// stream, and the slot only ever moves forward.
type Song struct {
	BaseModel
	Mint            string         `json:"mint" gorm:"size:64;not null;uniqueIndex"`
	Title           string         `json:"title" gorm:"size:255"`
	Artist          string         `json:"artist" gorm:"size:64;not null;index"`
	Curator         string         `json:"curator" gorm:"size:64;not null;index"`
	CuratorShareBps int            `json:"curator_share_bps" gorm:"default:2000"`
	StreamLamports  int64          `json:"stream_lamports" gorm:"default:0"`
	BuyLamports     int64          `json:"buy_lamports" gorm:"default:0"`
	StreamCount     int64          `json:"stream_count" gorm:"default:0"`
	LastStreamSlot  int64          `json:"last_stream_slot" gorm:"default:0"`
	IPFSAudioCID    string         `json:"ipfs_audio_cid" gorm:"size:100"`
	MetadataURI     string         `json:"metadata_uri" gorm:"size:500"`
	CoverURL        string         `json:"cover_url" gorm:"size:500"`
	Tags            pq.StringArray `json:"tags" gorm:"type:text[]"`
	Status          SongStatus     `json:"status" gorm:"type:varchar(20);default:'active';index"`
}
