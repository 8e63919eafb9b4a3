package models

import "time"

// CancellationRecord and RescheduleRecord are append-only audit rows,
// written once per transition and never updated.

type CancellationRecord struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	BookingRowID uint      `gorm:"index" json:"booking_row_id"`
	Reason       string    `json:"reason"`
	ActorType    string    `json:"actor_type"`
	CreatedAt    time.Time `gorm:"autoCreateTime:nano" json:"created_at"`
}

type RescheduleRecord struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	BookingRowID   uint      `gorm:"index" json:"booking_row_id"`
	RescheduleDate time.Time `json:"reschedule_date"`
	Reason         string    `json:"reason"`
	ActorType      string    `json:"actor_type"`
	CreatedAt      time.Time `gorm:"autoCreateTime:nano" json:"created_at"`
}
