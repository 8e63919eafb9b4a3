package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentLedgerEntry is append-only. The composite unique index makes
// (row, payment ref) the natural dedup key for retried reconciliations.
type PaymentLedgerEntry struct {
	ID           uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	BookingRowID uint      `gorm:"uniqueIndex:idx_row_payment_ref" json:"booking_row_id"`
	PaymentRef   string    `gorm:"uniqueIndex:idx_row_payment_ref" json:"payment_ref"`
	Amount       float64   `json:"amount"`
	CreatedAt    time.Time `gorm:"autoCreateTime:nano" json:"created_at"`
}
