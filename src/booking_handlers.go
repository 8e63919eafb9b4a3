package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"workerlink/src/config"
	"workerlink/src/db"
	"workerlink/src/dispatch"
	"workerlink/src/lifecycle"
	"workerlink/src/models"
	"workerlink/src/payments"
	"workerlink/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// transitionConflictMessage picks the 409 body for a transition that
// lost its status gate. Only a losing accept means another worker won;
// other targets just found the row in the wrong state.
func transitionConflictMessage(requested types.BookingStatus) string {
	if requested == types.BOOKING_ACCEPTED {
		return "booking has already been accepted by another worker"
	}
	return lifecycle.ErrInvalidTransition.Error()
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			workerIDs := make([]uint, 0, len(body.WorkerIDs)+1)
			seen := make(map[uint]bool)
			for _, id := range append(body.WorkerIDs, body.WorkerID) {
				if id == 0 || seen[id] {
					continue
				}
				seen[id] = true
				workerIDs = append(workerIDs, id)
			}
			if len(workerIDs) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "at least one worker_id is required"})
				return
			}
			bookingTime, err := time.Parse(config.TIME_PARSE_FORMAT, body.BookingTime)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}

			contactName := body.ContactName
			contactNumber := body.ContactNumber
			dbi := db.GetDb()
			var seeker models.Seeker
			if err := dbi.
				Model(&models.Seeker{}).
				Where("id = ?", body.UserID).
				First(&seeker).
				Error; err == nil {
				if contactName == "" {
					contactName = seeker.Name
				}
				if contactNumber == "" {
					contactNumber = seeker.Mobile
				}
			}

			rows := make([]models.Booking, 0, len(workerIDs))
			err = dbi.Transaction(func(tx *gorm.DB) error {
				for _, wid := range workerIDs {
					row := models.Booking{
						BookingID:       body.BookingID,
						WorkerID:        wid,
						UserID:          body.UserID,
						Status:          types.BOOKING_PENDING,
						WorkLocation:    body.WorkLocation,
						WorkLocationLat: body.WorkLocationLat,
						WorkLocationLng: body.WorkLocationLng,
						BookingTime:     bookingTime,
						Description:     body.Description,
						ContactNumber:   contactNumber,
						ContactName:     contactName,
					}
					if err := tx.Create(&row).Error; err != nil {
						return err
					}
					rows = append(rows, row)
				}
				return nil
			})
			if err != nil {
				log.Printf("Could not create booking %s: %s\n", body.BookingID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error while processing request"})
				return
			}

			q := dispatch.GetQueue()
			for i := range rows {
				q.Enqueue(rows[i].WorkerID, dispatch.OfferFromBooking(&rows[i]))
			}

			ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": rows, "count": len(rows)})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			var query struct {
				BookingID string `form:"booking_id"`
				WorkerID  uint   `form:"worker_id"`
				UserID    uint   `form:"user_id"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			dbi := db.GetDb()
			q := dbi.Model(&models.Booking{})
			if query.BookingID != "" {
				q = q.Where("booking_id = ?", query.BookingID)
			}
			if query.WorkerID != 0 {
				q = q.Where("worker_id = ?", query.WorkerID)
			}
			if query.UserID != 0 {
				q = q.Where("user_id = ?", query.UserID)
			}
			var bookings []models.Booking
			if err := q.
				Order("created_at desc").
				Limit(100).
				Find(&bookings).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			var booking models.Booking
			dbi := db.GetDb()
			if err := dbi.
				Model(&models.Booking{}).
				Where("id = ?", params.ID).
				Preload("Worker").
				Preload("User").
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "booking not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": booking})
		}).
		PUT("/bookings/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			var body types.UpdateBookingStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			tctx := lifecycle.TransitionContext{
				CancelReason:     body.CancelReason,
				RescheduleReason: body.RescheduleReason,
				ActorType:        body.ActorType,
			}
			if body.RescheduleDate != "" {
				t, err := time.Parse(config.TIME_PARSE_FORMAT, body.RescheduleDate)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
					return
				}
				tctx.RescheduleDate = &t
			}

			row, demoted, err := lifecycle.Transition(params.ID, types.BookingStatus(*body.Status), tctx)
			if err != nil {
				switch {
				case errors.Is(err, lifecycle.ErrRowNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "booking not found"})
				case errors.Is(err, lifecycle.ErrInvalidStatusValue), errors.Is(err, lifecycle.ErrMissingContextField):
					ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				case errors.Is(err, lifecycle.ErrInvalidTransition):
					ctx.JSON(http.StatusConflict, gin.H{"success": false, "message": transitionConflictMessage(types.BookingStatus(*body.Status))})
				default:
					log.Printf("Error on status transition for booking row %d: %s\n", params.ID, err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error while processing request"})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"booking": row, "missed_count": demoted}})
		}).
		PUT("/bookings/:id/payment", func(ctx *gin.Context) {
			bookingID := ctx.Params.ByName("id")
			var body types.UpdateBookingPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			if *body.PaymentStatus != 1 {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "payment_status must be 1"})
				return
			}
			updated, err := payments.ReconcilePayment(bookingID, *body.Amount, body.PaymentID)
			if err != nil {
				if errors.Is(err, payments.ErrBookingNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "booking not found"})
					return
				}
				log.Printf("Error reconciling payment for booking %s: %s\n", bookingID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error while processing request"})
				return
			}
			if updated == 0 {
				ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "no accepted booking row to reconcile", "data": gin.H{"updated": 0}})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"updated": updated}})
		})
	return g
}
