package dispatch

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

	"firebase.google.com/go/v4/messaging"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrNoTokenRegistered = errors.New("worker has no push token registered")

const (
	sendTimeout = 5 * time.Second
	offerTTL    = 120 * time.Second
)

// Offer is the payload an offer push carries: job facts plus the
// customer's contact, never the worker's own.
type Offer struct {
	RowID         uint
	BookingID     string
	ContactName   string
	ContactNumber string
	WorkLocation  string
	WorkLat       *float64
	WorkLng       *float64
	Description   string
	BookingTime   time.Time
}

func OfferFromBooking(b *models.Booking) Offer {
	return Offer{
		RowID:         b.ID,
		BookingID:     b.BookingID,
		ContactName:   b.ContactName,
		ContactNumber: b.ContactNumber,
		WorkLocation:  b.WorkLocation,
		WorkLat:       b.WorkLocationLat,
		WorkLng:       b.WorkLocationLng,
		Description:   b.Description,
		BookingTime:   b.BookingTime,
	}
}

// SendFunc lets tests replace the FCM round trip.
type SendFunc func(ctx context.Context, msg *messaging.Message) (string, error)

type Dispatcher struct {
	send SendFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) sendFn() SendFunc {
	if d.send != nil {
		return d.send
	}
	return func(ctx context.Context, msg *messaging.Message) (string, error) {
		fcm, err := lib.GetFirebaseMessaging()
		if err != nil {
			return "", err
		}
		return fcm.Send(ctx, msg)
	}
}

// BuildMessage assembles the platform payload for one offer. The collapse
// key is derived from the booking id so a re-send for the same offer
// replaces the previous notification on the device instead of stacking.
func BuildMessage(token string, offer Offer, liveDistance string, homeDistance string) *messaging.Message {
	data := map[string]string{
		"booking_id":      offer.BookingID,
		"customer_name":   offer.ContactName,
		"customer_mobile": offer.ContactNumber,
		"work_location":   offer.WorkLocation,
		"description":     offer.Description,
		"booking_time":    offer.BookingTime.UTC().Format(time.RFC3339),
	}
	if liveDistance != "" {
		data["distance"] = liveDistance
	}
	if homeDistance != "" {
		data["home_distance"] = homeDistance
	}
	collapse := fmt.Sprintf("offer_%s", offer.BookingID)
	ttl := offerTTL
	return &messaging.Message{
		Token: token,
		Data:  data,
		Android: &messaging.AndroidConfig{
			CollapseKey: collapse,
			Priority:    "high",
			TTL:         &ttl,
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-collapse-id": collapse},
		},
	}
}

// Dispatch makes a single delivery attempt for one offer to one worker.
// Both distance strings are advisory and independently optional; absent
// location data omits the field rather than failing the send. Retrying is
// the periodic rescan's job, not this function's.
func (d *Dispatcher) Dispatch(ctx context.Context, workerID uint, offer Offer) error {
	token, err := lookupToken(ctx, workerID)
	if err != nil {
		if errors.Is(err, ErrNoTokenRegistered) {
			logOutcome(offer.RowID, workerID, models.DISPATCH_NO_TOKEN, "")
		} else {
			log.Printf("Error looking up token for worker %d: %s\n", workerID, err.Error())
			logOutcome(offer.RowID, workerID, models.DISPATCH_FAILED, err.Error())
		}
		return err
	}

	liveDistance := ""
	dbi := db.GetDb()
	var loc models.WorkerLocation
	if err := dbi.
		Model(&models.WorkerLocation{}).
		Where("worker_id = ?", workerID).
		First(&loc).
		Error; err == nil {
		liveDistance = proximity(&loc.Latitude, &loc.Longitude, offer.WorkLat, offer.WorkLng)
	}

	homeDistance := ""
	var worker models.Worker
	if err := dbi.
		Model(&models.Worker{}).
		Where("id = ?", workerID).
		First(&worker).
		Error; err == nil {
		homeDistance = proximity(worker.HomeLat, worker.HomeLng, offer.WorkLat, offer.WorkLng)
	}

	msg := BuildMessage(token, offer, liveDistance, homeDistance)

	sctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	res, err := d.sendFn()(sctx, msg)
	if err != nil {
		log.Printf("[FCM] error sending offer %s to worker %d: %s\n", offer.BookingID, workerID, err.Error())
		logOutcome(offer.RowID, workerID, models.DISPATCH_FAILED, err.Error())
		return err
	}
	log.Printf("[FCM] offer %s sent to worker %d: %s\n", offer.BookingID, workerID, res)
	logOutcome(offer.RowID, workerID, models.DISPATCH_SENT, res)
	return nil
}

// lookupToken reads through the redis cache to the push token table.
func lookupToken(ctx context.Context, workerID uint) (string, error) {
	cacheKey := fmt.Sprintf("fcm:%s:%d", types.ACTOR_WORKER, workerID)
	if rd := lib.GetRedisClient(); rd != nil {
		val, err := rd.Get(ctx, cacheKey).Result()
		if err == nil && val != "" {
			return val, nil
		}
		if err != nil && err != redis.Nil {
			log.Printf("[redis] Error reading token cache: %s\n", err.Error())
		}
	}
	var token models.PushToken
	dbi := db.GetDb()
	if err := dbi.
		Model(&models.PushToken{}).
		Where("user_id = ? AND user_type = ?", workerID, types.ACTOR_WORKER).
		First(&token).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoTokenRegistered
		}
		return "", err
	}
	if rd := lib.GetRedisClient(); rd != nil {
		go func() {
			if err := rd.Set(context.Background(), cacheKey, token.Token, 0).Err(); err != nil {
				log.Printf("[redis] Error updating token cache: %s\n", err.Error())
			}
		}()
	}
	return token.Token, nil
}

func logOutcome(rowID uint, workerID uint, outcome string, detail string) {
	dbi := db.GetDb()
	entry := models.DispatchLog{
		BookingRowID: rowID,
		WorkerID:     workerID,
		Outcome:      outcome,
		Detail:       detail,
	}
	if err := dbi.Create(&entry).Error; err != nil {
		log.Printf("Error recording dispatch outcome for row %d: %s\n", rowID, err.Error())
	}
}
