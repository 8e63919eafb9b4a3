package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"workerlink/src/db"
	"workerlink/src/lib"
	"workerlink/src/models"
	"workerlink/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBookingNotFound = errors.New("no booking rows exist for this booking id")

const smsTimeout = 5 * time.Second

// ReconcilePayment marks every accepted row of a logical booking as paid
// and appends one ledger entry per row. Missed or cancelled siblings are
// never touched. Calling again with the same payment ref updates the same
// rows and inserts no duplicate ledger entries. Returns the number of
// rows updated; zero with a nil error means the booking exists but no row
// is accepted.
func ReconcilePayment(bookingID string, amount float64, paymentRef string) (int64, error) {
	var updated int64
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.
			Model(&models.Booking{}).
			Where("booking_id = ?", bookingID).
			Count(&total).
			Error; err != nil {
			return err
		}
		if total == 0 {
			return ErrBookingNotFound
		}

		var rowIDs []uint
		if err := tx.
			Model(&models.Booking{}).
			Where("booking_id = ? AND status = ?", bookingID, types.BOOKING_ACCEPTED).
			Pluck("id", &rowIDs).
			Error; err != nil {
			return err
		}
		if len(rowIDs) == 0 {
			return nil
		}

		res := tx.
			Model(&models.Booking{}).
			Where("booking_id = ? AND status = ?", bookingID, types.BOOKING_ACCEPTED).
			Updates(map[string]any{"payment_status": true, "amount": amount})
		if res.Error != nil {
			return res.Error
		}
		updated = res.RowsAffected

		if paymentRef == "" {
			return nil
		}
		entries := make([]models.PaymentLedgerEntry, 0, len(rowIDs))
		for _, rowID := range rowIDs {
			entries = append(entries, models.PaymentLedgerEntry{
				BookingRowID: rowID,
				PaymentRef:   paymentRef,
				Amount:       amount,
			})
		}
		// the unique index absorbs concurrent retries with the same ref
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "booking_row_id"}, {Name: "payment_ref"}},
				DoNothing: true,
			}).
			Create(&entries).
			Error
	})
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		go notifyWorkerPaid(bookingID, amount)
	}
	return updated, nil
}

// notifyWorkerPaid sends the confirmation SMS to the accepted worker.
// Best effort: a failed send is logged and never unwinds the
// reconciliation that already committed.
func notifyWorkerPaid(bookingID string, amount float64) {
	var row models.Booking
	dbi := db.GetDb()
	err := dbi.
		Model(&models.Booking{}).
		Where("booking_id = ? AND status = ?", bookingID, types.BOOKING_ACCEPTED).
		Preload("Worker").
		First(&row).
		Error
	if err != nil {
		log.Printf("[SMS] Could not load accepted row for booking %s: %s\n", bookingID, err.Error())
		return
	}
	if row.Worker == nil || row.Worker.Phone == "" {
		log.Printf("[SMS] No phone on record for worker %d, skipping payment confirmation\n", row.WorkerID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), smsTimeout)
	defer cancel()
	msg := fmt.Sprintf("Payment of %.2f received for booking %s", amount, bookingID)
	if err := lib.PublishSMS(ctx, row.Worker.Phone, msg); err != nil {
		log.Printf("[SMS] Failed to confirm payment for booking %s to worker %d: %s\n", bookingID, row.WorkerID, err.Error())
	}
}
