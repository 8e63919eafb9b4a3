package dispatch

import (
	"log"
	"time"

	"workerlink/src/db"
	"workerlink/src/lib"
	"workerlink/src/models"
	"workerlink/src/types"

	"github.com/go-co-op/gocron/v2"
)

const rescanBatchLimit = 500

// StartRescan registers the interval job that re-dispatches every still
// pending offer. This is the retry path compensating for the single
// attempt per dispatch; it only reads and enqueues, so it is safe to run
// concurrently with accepts and rejects.
func StartRescan(interval time.Duration) error {
	id, err := lib.CreateCronJob(rescanPending, interval)
	if err != nil {
		log.Printf("Error scheduling pending-offer rescan: %s\n", err.Error())
		return err
	}
	log.Printf("[rescan] scheduled every %s: %s\n", interval, *id)
	return nil
}

// ScheduleStartupRescan queues a single sweep shortly after boot so
// offers stranded by a restart are re-dispatched before the first
// interval tick.
func ScheduleStartupRescan(delay time.Duration) error {
	id, err := lib.CreateOneTimeCronJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(delay))),
		gocron.NewTask(rescanPending),
	)
	if err != nil {
		log.Printf("Error scheduling startup sweep: %s\n", err.Error())
		return err
	}
	log.Printf("[rescan] startup sweep in %s: %s\n", delay, *id)
	return nil
}

func rescanPending() {
	var rows []models.Booking
	dbi := db.GetDb()
	err := dbi.
		Model(&models.Booking{}).
		Where("status = ?", types.BOOKING_PENDING).
		Order("created_at asc").
		Limit(rescanBatchLimit).
		Find(&rows).
		Error
	if err != nil {
		log.Printf("[rescan] Error retrieving pending offers: %s\n", err.Error())
		return
	}
	if len(rows) == 0 {
		return
	}
	log.Printf("[rescan] re-dispatching %d pending offers\n", len(rows))
	q := GetQueue()
	for i := range rows {
		q.Enqueue(rows[i].WorkerID, OfferFromBooking(&rows[i]))
	}
}
