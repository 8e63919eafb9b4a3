package boot

import (
	"context"
	"log"
	"os"
	"time"

	"workerlink/src/db"
	"workerlink/src/dispatch"
	"workerlink/src/lib"
	"workerlink/src/models"

	"gorm.io/gorm"
)

const (
	defaultRescanInterval = 5 * time.Second
	startupRescanDelay    = time.Second
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Worker{},
		&models.Seeker{},
		&models.Booking{},
		&models.CancellationRecord{},
		&models.RescheduleRecord{},
		&models.PaymentLedgerEntry{},
		&models.PushToken{},
		&models.WorkerLocation{},
		&models.DispatchLog{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitDispatch() {
	dispatch.GetQueue()

	interval := defaultRescanInterval
	if v := os.Getenv("RESCAN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			interval = d
		} else {
			log.Printf("Invalid RESCAN_INTERVAL %q, using default: %s\n", v, err.Error())
		}
	}
	if err := dispatch.ScheduleStartupRescan(startupRescanDelay); err != nil {
		log.Printf("Error scheduling startup sweep: %s\n", err.Error())
	}
	if err := dispatch.StartRescan(interval); err != nil {
		log.Printf("Error starting rescan job: %s\n", err.Error())
	}

	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
	}
}

// Shutdown drains the dispatch queue with a bounded wait, then stops the
// scheduler.
func Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dispatch.GetQueue().Shutdown(ctx); err != nil {
		log.Printf("Dispatch queue did not drain in time: %s\n", err.Error())
	}
	StopScheduler()
}
