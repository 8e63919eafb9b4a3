package lifecycle

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"workerlink/src/db"
	"workerlink/src/models"
	"workerlink/src/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	_, _, err := Transition(1, types.BookingStatus(9), TransitionContext{})
	assert.ErrorIs(t, err, ErrInvalidStatusValue)
}

func TestTransitionRequiresCancelReason(t *testing.T) {
	_, _, err := Transition(1, types.BOOKING_CANCELLED, TransitionContext{})
	assert.ErrorIs(t, err, ErrMissingContextField)
}

func TestTransitionRequiresRescheduleFields(t *testing.T) {
	_, _, err := Transition(1, types.BOOKING_RESCHEDULED, TransitionContext{})
	assert.ErrorIs(t, err, ErrMissingContextField)

	when := time.Now().Add(48 * time.Hour)
	_, _, err = Transition(1, types.BOOKING_RESCHEDULED, TransitionContext{RescheduleDate: &when})
	assert.ErrorIs(t, err, ErrMissingContextField)
}

// setupTestDB points the package at a real database. Tests that need it
// are skipped unless TEST_DATABASE_DSN is set.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.Worker{},
		&models.Seeker{},
		&models.Booking{},
		&models.CancellationRecord{},
		&models.RescheduleRecord{},
		&models.DispatchLog{},
	))
	db.NewDB(gdb)
	return gdb
}

func seedFanout(t *testing.T, gdb *gorm.DB, workerIDs ...uint) (string, []models.Booking) {
	t.Helper()
	bookingID := uuid.NewString()
	require.NoError(t, gdb.FirstOrCreate(&models.Seeker{}, models.Seeker{ID: 1}).Error)
	rows := make([]models.Booking, 0, len(workerIDs))
	for _, wid := range workerIDs {
		require.NoError(t, gdb.FirstOrCreate(&models.Worker{}, models.Worker{ID: wid}).Error)
		rows = append(rows, models.Booking{
			BookingID:   bookingID,
			WorkerID:    wid,
			UserID:      1,
			BookingTime: time.Now().Add(24 * time.Hour),
		})
	}
	require.NoError(t, gdb.Create(&rows).Error)
	return bookingID, rows
}

func TestAcceptDemotesSiblings(t *testing.T) {
	gdb := setupTestDB(t)
	bookingID, rows := seedFanout(t, gdb, 11, 12, 13)

	row, demoted, err := Transition(rows[1].ID, types.BOOKING_ACCEPTED, TransitionContext{ActorType: types.ACTOR_WORKER})
	require.NoError(t, err)
	assert.Equal(t, types.BOOKING_ACCEPTED, row.Status)
	assert.Equal(t, int64(2), demoted)

	var siblings []models.Booking
	require.NoError(t, gdb.Where("booking_id = ? AND id <> ?", bookingID, rows[1].ID).Find(&siblings).Error)
	for _, s := range siblings {
		assert.Equal(t, types.BOOKING_MISSED, s.Status)
	}
}

func TestSecondAcceptLoses(t *testing.T) {
	gdb := setupTestDB(t)
	bookingID, rows := seedFanout(t, gdb, 21, 22)

	_, _, err := AcceptOffer(bookingID, 21)
	require.NoError(t, err)

	// the losing worker's row is demoted, so its pending lookup misses
	_, _, err = AcceptOffer(bookingID, 22)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// a direct transition on the demoted row fails the pending gate
	_, _, err = Transition(rows[1].ID, types.BOOKING_ACCEPTED, TransitionContext{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConcurrentAcceptSingleWinner(t *testing.T) {
	gdb := setupTestDB(t)
	workerIDs := []uint{31, 32, 33, 34, 35}
	bookingID, _ := seedFanout(t, gdb, workerIDs...)

	errs := make(chan error, len(workerIDs))
	var wg sync.WaitGroup
	for _, wid := range workerIDs {
		wg.Add(1)
		go func(wid uint) {
			defer wg.Done()
			_, _, err := AcceptOffer(bookingID, wid)
			errs <- err
		}(wid)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
		} else {
			// the loser either missed the pending lookup or lost the
			// conditional update
			lost := errors.Is(err, ErrAlreadyProcessed) || errors.Is(err, ErrInvalidTransition)
			assert.True(t, lost, "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)

	var accepted int64
	require.NoError(t, gdb.
		Model(&models.Booking{}).
		Where("booking_id = ? AND status = ?", bookingID, types.BOOKING_ACCEPTED).
		Count(&accepted).
		Error)
	assert.Equal(t, int64(1), accepted)
}

func TestRejectOfferIsIdempotent(t *testing.T) {
	gdb := setupTestDB(t)
	bookingID, rows := seedFanout(t, gdb, 41)

	require.NoError(t, RejectOffer(bookingID, 41, "too far away"))

	var row models.Booking
	require.NoError(t, gdb.First(&row, rows[0].ID).Error)
	assert.Equal(t, types.BOOKING_MISSED, row.Status)

	var logged int64
	require.NoError(t, gdb.
		Model(&models.DispatchLog{}).
		Where("booking_row_id = ? AND outcome = ?", rows[0].ID, models.DISPATCH_DECLINED).
		Count(&logged).
		Error)
	assert.Equal(t, int64(1), logged)

	err := RejectOffer(bookingID, 41, "too far away")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	require.NoError(t, gdb.First(&row, rows[0].ID).Error)
	assert.Equal(t, types.BOOKING_MISSED, row.Status)
}

func TestCompleteRequiresAccepted(t *testing.T) {
	gdb := setupTestDB(t)
	_, rows := seedFanout(t, gdb, 51)

	_, _, err := Transition(rows[0].ID, types.BOOKING_COMPLETED, TransitionContext{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, _, err = Transition(rows[0].ID, types.BOOKING_ACCEPTED, TransitionContext{})
	require.NoError(t, err)
	row, _, err := Transition(rows[0].ID, types.BOOKING_COMPLETED, TransitionContext{})
	require.NoError(t, err)
	assert.Equal(t, types.BOOKING_COMPLETED, row.Status)
}

func TestCancelWritesAuditRecord(t *testing.T) {
	gdb := setupTestDB(t)
	_, rows := seedFanout(t, gdb, 61)

	row, _, err := Transition(rows[0].ID, types.BOOKING_CANCELLED, TransitionContext{CancelReason: "change of plans"})
	require.NoError(t, err)
	assert.Equal(t, types.BOOKING_CANCELLED, row.Status)

	var record models.CancellationRecord
	require.NoError(t, gdb.Where("booking_row_id = ?", rows[0].ID).First(&record).Error)
	assert.Equal(t, "change of plans", record.Reason)
	assert.Equal(t, types.ACTOR_SEEKER, record.ActorType)
}

func TestRescheduleMovesBookingTime(t *testing.T) {
	gdb := setupTestDB(t)
	_, rows := seedFanout(t, gdb, 71)

	when := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	row, _, err := Transition(rows[0].ID, types.BOOKING_RESCHEDULED, TransitionContext{
		RescheduleDate:   &when,
		RescheduleReason: "worker unavailable",
	})
	require.NoError(t, err)
	assert.Equal(t, types.BOOKING_RESCHEDULED, row.Status)
	assert.WithinDuration(t, when, row.BookingTime, time.Second)

	var record models.RescheduleRecord
	require.NoError(t, gdb.Where("booking_row_id = ?", rows[0].ID).First(&record).Error)
	assert.Equal(t, "worker unavailable", record.Reason)
}

func TestTransitionUnknownRow(t *testing.T) {
	setupTestDB(t)
	_, _, err := Transition(99999999, types.BOOKING_ACCEPTED, TransitionContext{})
	assert.ErrorIs(t, err, ErrRowNotFound)
}
