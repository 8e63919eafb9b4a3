package dispatch

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"workerlink/src/db"
	"workerlink/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func testOffer() Offer {
	lat := 24.99
	lng := 121.30
	return Offer{
		RowID:         7,
		BookingID:     "BK-1001",
		ContactName:   "A. Seeker",
		ContactNumber: "+15550001111",
		WorkLocation:  "12 Canal Street",
		WorkLat:       &lat,
		WorkLng:       &lng,
		Description:   "Fix the kitchen sink",
		BookingTime:   time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestBuildMessage(t *testing.T) {
	offer := testOffer()
	msg := BuildMessage("device-token-1", offer, "850m", "2.4km")

	assert.Equal(t, "device-token-1", msg.Token)
	assert.Equal(t, "BK-1001", msg.Data["booking_id"])
	assert.Equal(t, "A. Seeker", msg.Data["customer_name"])
	assert.Equal(t, "+15550001111", msg.Data["customer_mobile"])
	assert.Equal(t, "12 Canal Street", msg.Data["work_location"])
	assert.Equal(t, "850m", msg.Data["distance"])
	assert.Equal(t, "2.4km", msg.Data["home_distance"])
	assert.Equal(t, "2026-09-14T10:30:00Z", msg.Data["booking_time"])

	assert.NotNil(t, msg.Android)
	assert.Equal(t, "offer_BK-1001", msg.Android.CollapseKey)
	assert.Equal(t, "high", msg.Android.Priority)
	if assert.NotNil(t, msg.Android.TTL) {
		assert.Equal(t, offerTTL, *msg.Android.TTL)
	}
	assert.Equal(t, "offer_BK-1001", msg.APNS.Headers["apns-collapse-id"])
}

func TestBuildMessageOmitsUnknownDistances(t *testing.T) {
	msg := BuildMessage("device-token-1", testOffer(), "", "")

	_, hasLive := msg.Data["distance"]
	_, hasHome := msg.Data["home_distance"]
	assert.False(t, hasLive)
	assert.False(t, hasHome)
}

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
		&models.PushToken{},
		&models.WorkerLocation{},
		&models.DispatchLog{},
	))
	db.NewDB(gdb)
	return gdb
}

func TestDispatchWithoutRegisteredToken(t *testing.T) {
	gdb := setupTestDB(t)

	offer := testOffer()
	offer.RowID = uint(time.Now().UnixNano() % 1_000_000_000)
	workerID := uint(990001)

	d := NewDispatcher()
	err := d.Dispatch(context.Background(), workerID, offer)
	assert.ErrorIs(t, err, ErrNoTokenRegistered)

	var logged int64
	require.NoError(t, gdb.
		Model(&models.DispatchLog{}).
		Where("booking_row_id = ? AND worker_id = ? AND outcome = ?", offer.RowID, workerID, models.DISPATCH_NO_TOKEN).
		Count(&logged).
		Error)
	assert.Equal(t, int64(1), logged)
}

func TestQueueDeliversAllJobs(t *testing.T) {
	var delivered atomic.Int64
	q := &Queue{
		dispatch: func(ctx context.Context, workerID uint, offer Offer) error {
			delivered.Add(1)
			return nil
		},
		jobs: make(chan job, 16),
	}
	q.Start(3)

	offer := testOffer()
	for i := 0; i < 10; i++ {
		q.Enqueue(uint(i+1), offer)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, q.Shutdown(ctx))
	assert.Equal(t, int64(10), delivered.Load())
}

func TestQueueEnqueueNeverBlocksWhenFull(t *testing.T) {
	block := make(chan struct{})
	var wg sync.WaitGroup
	q := &Queue{
		dispatch: func(ctx context.Context, workerID uint, offer Offer) error {
			<-block
			return nil
		},
		jobs: make(chan job, 1),
	}
	q.Start(1)

	offer := testOffer()
	finished := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			q.Enqueue(uint(i+1), offer)
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
	close(block)
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, q.Shutdown(ctx))
}

func TestQueueShutdownAfterShutdown(t *testing.T) {
	q := &Queue{
		dispatch: func(ctx context.Context, workerID uint, offer Offer) error { return nil },
		jobs:     make(chan job, 1),
	}
	q.Start(1)

	ctx := context.Background()
	assert.NoError(t, q.Shutdown(ctx))
	assert.NoError(t, q.Shutdown(ctx))
	// enqueue after shutdown is a no-op, not a panic
	q.Enqueue(1, testOffer())
}
