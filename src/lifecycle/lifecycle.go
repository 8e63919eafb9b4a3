package lifecycle

import (
	"errors"
	"time"

	"workerlink/src/db"
	"workerlink/src/models"
	"workerlink/src/types"

	"gorm.io/gorm"
)

var (
	ErrRowNotFound         = errors.New("booking row not found")
	ErrInvalidStatusValue  = errors.New("invalid booking status value")
	ErrMissingContextField = errors.New("missing required field for requested status")
	ErrInvalidTransition   = errors.New("booking is no longer in a state that allows this transition")
	ErrAlreadyProcessed    = errors.New("offer has already been processed")
)

// TransitionContext carries the optional fields some target statuses
// require.
type TransitionContext struct {
	CancelReason     string
	RescheduleDate   *time.Time
	RescheduleReason string
	ActorType        string
}

// Transition validates and applies one status change on a single booking
// row. All writes are conditional single statements; the accepted path
// gates on the row still being pending so the first accept to land wins
// and competitors update zero rows. Returns the updated row and how many
// sibling rows were demoted to missed (always 0 for non-accept targets).
func Transition(rowID uint, requested types.BookingStatus, tctx TransitionContext) (*models.Booking, int64, error) {
	if !requested.Valid() {
		return nil, 0, ErrInvalidStatusValue
	}
	switch requested {
	case types.BOOKING_CANCELLED:
		if tctx.CancelReason == "" {
			return nil, 0, ErrMissingContextField
		}
	case types.BOOKING_RESCHEDULED:
		if tctx.RescheduleDate == nil || tctx.RescheduleReason == "" {
			return nil, 0, ErrMissingContextField
		}
	}
	actor := tctx.ActorType
	if actor == "" {
		actor = types.ACTOR_SEEKER
	}

	var row models.Booking
	var demoted int64
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", rowID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRowNotFound
			}
			return err
		}

		switch requested {
		case types.BOOKING_ACCEPTED:
			res := tx.
				Model(&models.Booking{}).
				Where("id = ? AND status = ?", rowID, types.BOOKING_PENDING).
				Update("status", types.BOOKING_ACCEPTED)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInvalidTransition
			}
			dem := tx.
				Model(&models.Booking{}).
				Where("booking_id = ? AND id <> ? AND status = ?", row.BookingID, rowID, types.BOOKING_PENDING).
				Update("status", types.BOOKING_MISSED)
			if dem.Error != nil {
				return dem.Error
			}
			demoted = dem.RowsAffected
		case types.BOOKING_COMPLETED:
			res := tx.
				Model(&models.Booking{}).
				Where("id = ? AND status = ?", rowID, types.BOOKING_ACCEPTED).
				Update("status", types.BOOKING_COMPLETED)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInvalidTransition
			}
		case types.BOOKING_CANCELLED:
			if err := tx.
				Model(&models.Booking{}).
				Where("id = ?", rowID).
				Update("status", types.BOOKING_CANCELLED).
				Error; err != nil {
				return err
			}
			record := models.CancellationRecord{
				BookingRowID: rowID,
				Reason:       tctx.CancelReason,
				ActorType:    actor,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		case types.BOOKING_RESCHEDULED:
			if err := tx.
				Model(&models.Booking{}).
				Where("id = ?", rowID).
				Updates(map[string]any{
					"status":       types.BOOKING_RESCHEDULED,
					"booking_time": *tctx.RescheduleDate,
				}).
				Error; err != nil {
				return err
			}
			record := models.RescheduleRecord{
				BookingRowID:   rowID,
				RescheduleDate: *tctx.RescheduleDate,
				Reason:         tctx.RescheduleReason,
				ActorType:      actor,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		default:
			if err := tx.
				Model(&models.Booking{}).
				Where("id = ?", rowID).
				Update("status", requested).
				Error; err != nil {
				return err
			}
		}

		return tx.
			Model(&models.Booking{}).
			Where("id = ?", rowID).
			First(&row).
			Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &row, demoted, nil
}

// AcceptOffer resolves the row for (bookingID, workerID) that is still
// pending and runs the accepted transition on it. A missing pending row
// means some competitor got there first.
func AcceptOffer(bookingID string, workerID uint) (*models.Booking, int64, error) {
	var row models.Booking
	dbi := db.GetDb()
	err := dbi.
		Model(&models.Booking{}).
		Where("booking_id = ? AND worker_id = ? AND status = ?", bookingID, workerID, types.BOOKING_PENDING).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrAlreadyProcessed
		}
		return nil, 0, err
	}
	return Transition(row.ID, types.BOOKING_ACCEPTED, TransitionContext{ActorType: types.ACTOR_WORKER})
}

// RejectOffer is the worker's own decline: a direct pending-to-missed
// conditional update. Rejecting an offer that is no longer pending is a
// no-op reported as already processed.
func RejectOffer(bookingID string, workerID uint, reason string) error {
	dbi := db.GetDb()
	return dbi.Transaction(func(tx *gorm.DB) error {
		var row models.Booking
		if err := tx.
			Model(&models.Booking{}).
			Where("booking_id = ? AND worker_id = ?", bookingID, workerID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlreadyProcessed
			}
			return err
		}
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", row.ID, types.BOOKING_PENDING).
			Update("status", types.BOOKING_MISSED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}
		entry := models.DispatchLog{
			BookingRowID: row.ID,
			WorkerID:     workerID,
			Outcome:      models.DISPATCH_DECLINED,
			Detail:       reason,
		}
		return tx.Create(&entry).Error
	})
}
