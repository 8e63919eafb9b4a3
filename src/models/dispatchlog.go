package models

import "time"

const (
	DISPATCH_SENT     = "sent"
	DISPATCH_NO_TOKEN = "no_token"
	DISPATCH_FAILED   = "failed"
	DISPATCH_DECLINED = "declined"
)

// DispatchLog records every delivery attempt and worker decline, so
// reporting can tell a raced-out offer from a self-declined one.
type DispatchLog struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	BookingRowID uint      `gorm:"index" json:"booking_row_id"`
	WorkerID     uint      `json:"worker_id"`
	Outcome      string    `json:"outcome"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime:nano" json:"created_at"`
}
