package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

// BookingStatus values are stable wire numbers shared with the mobile
// clients; never reorder.
type BookingStatus int

const (
	BOOKING_PENDING BookingStatus = iota
	BOOKING_ACCEPTED
	BOOKING_COMPLETED
	BOOKING_CANCELLED_FLOW
	BOOKING_MISSED
	BOOKING_CANCELLED
	BOOKING_RESCHEDULED
)

func (s BookingStatus) Valid() bool {
	return s >= BOOKING_PENDING && s <= BOOKING_RESCHEDULED
}

func (s BookingStatus) String() string {
	switch s {
	case BOOKING_PENDING:
		return "pending"
	case BOOKING_ACCEPTED:
		return "accepted"
	case BOOKING_COMPLETED:
		return "completed"
	case BOOKING_CANCELLED_FLOW:
		return "cancelled_by_flow"
	case BOOKING_MISSED:
		return "missed"
	case BOOKING_CANCELLED:
		return "cancelled"
	case BOOKING_RESCHEDULED:
		return "rescheduled"
	}
	return "unknown"
}

const (
	ACTOR_SEEKER = "seeker"
	ACTOR_WORKER = "worker"
)

type CreateBookingRequestBody struct {
	BookingID       string   `json:"booking_id" binding:"required"`
	UserID          uint     `json:"user_id" binding:"required"`
	WorkerID        uint     `json:"worker_id,omitempty"`
	WorkerIDs       []uint   `json:"worker_ids,omitempty"`
	BookingTime     string   `json:"booking_time" binding:"required,bookingdate" time_format:"2006-01-02 15:04:05 -07:00"`
	WorkLocation    string   `json:"work_location,omitempty"`
	WorkLocationLat *float64 `json:"work_location_lat,omitempty"`
	WorkLocationLng *float64 `json:"work_location_lng,omitempty"`
	Description     string   `json:"description,omitempty"`
	ContactNumber   string   `json:"contact_number,omitempty"`
	ContactName     string   `json:"contact_name,omitempty"`
}

type UpdateBookingStatusRequestBody struct {
	Status           *int   `json:"status" binding:"required"`
	CancelReason     string `json:"cancel_reason,omitempty"`
	RescheduleDate   string `json:"reschedule_date,omitempty"`
	RescheduleReason string `json:"reschedule_reason,omitempty"`
	ActorType        string `json:"actor_type,omitempty" binding:"omitempty,oneof=seeker worker"`
}

type UpdateBookingPaymentRequestBody struct {
	PaymentStatus *int     `json:"payment_status" binding:"required"`
	Amount        *float64 `json:"amount" binding:"required"`
	PaymentID     string   `json:"payment_id,omitempty"`
}

type AlertActionRequestBody struct {
	BookingID string `json:"booking_id" binding:"required"`
	WorkerID  uint   `json:"worker_id" binding:"required"`
	Reason    string `json:"reason,omitempty"`
}

type RegisterPushTokenRequestBody struct {
	UserID   uint   `json:"user_id" binding:"required"`
	UserType string `json:"user_type" binding:"required,oneof=seeker worker"`
	Token    string `json:"token" binding:"required"`
}

type WorkerLocationRequestBody struct {
	WorkerID  uint     `json:"worker_id" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type WorkerAddressRequestBody struct {
	Address string `json:"address" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type WorkerRequestParams struct {
	WorkerID uint `uri:"workerId" binding:"required"`
}
