package models

import (
	"time"

	"workerlink/src/types"
)

// Booking is one offer row: a single worker's chance to take a job. All
// rows for the same logical job share BookingID.
type Booking struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	BookingID       string              `gorm:"index" json:"booking_id"`
	WorkerID        uint                `gorm:"index" json:"worker_id"`
	UserID          uint                `json:"user_id"`
	Status          types.BookingStatus `gorm:"default:0" json:"status"`
	PaymentStatus   bool                `gorm:"default:false" json:"payment_status"`
	Amount          *float64            `json:"amount,omitempty"`
	WorkLocation    string              `json:"work_location,omitempty"`
	WorkLocationLat *float64            `json:"work_location_lat,omitempty"`
	WorkLocationLng *float64            `json:"work_location_lng,omitempty"`
	BookingTime     time.Time           `json:"booking_time"`
	Description     string              `json:"description,omitempty"`
	ContactNumber   string              `json:"contact_number,omitempty"`
	ContactName     string              `json:"contact_name,omitempty"`

	Worker *Worker `gorm:"foreignKey:worker_id" json:"worker,omitempty"`
	User   *Seeker `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
