package main

import (
	"errors"
	"log"
	"net/http"

	"workerlink/src/db"
	"workerlink/src/dispatch"
	"workerlink/src/lifecycle"
	"workerlink/src/models"
	"workerlink/src/types"

	"github.com/gin-gonic/gin"
)

func alertHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/worker-alerts/:workerId", func(ctx *gin.Context) {
			var params types.WorkerRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			var alerts []models.Booking
			dbi := db.GetDb()
			if err := dbi.
				Model(&models.Booking{}).
				Where("worker_id = ? AND status = ?", params.WorkerID, types.BOOKING_PENDING).
				Order("created_at desc").
				Find(&alerts).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": alerts, "count": len(alerts)})
		}).
		POST("/worker-alerts/:workerId/test", func(ctx *gin.Context) {
			var params types.WorkerRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			var row models.Booking
			dbi := db.GetDb()
			if err := dbi.
				Model(&models.Booking{}).
				Where("worker_id = ? AND status = ?", params.WorkerID, types.BOOKING_PENDING).
				Order("created_at desc").
				First(&row).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "no pending offer for this worker"})
				return
			}
			// The test path awaits delivery instead of queueing it.
			d := dispatch.NewDispatcher()
			if err := d.Dispatch(ctx.Request.Context(), params.WorkerID, dispatch.OfferFromBooking(&row)); err != nil {
				if errors.Is(err, dispatch.ErrNoTokenRegistered) {
					ctx.JSON(http.StatusOK, gin.H{"success": false, "message": "worker has no push token registered"})
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"success": false, "message": "delivery failed: " + err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "alert delivered"})
		}).
		POST("/accept-booking-alert", func(ctx *gin.Context) {
			var body types.AlertActionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			row, demoted, err := lifecycle.AcceptOffer(body.BookingID, body.WorkerID)
			if err != nil {
				switch {
				case errors.Is(err, lifecycle.ErrAlreadyProcessed), errors.Is(err, lifecycle.ErrInvalidTransition):
					ctx.JSON(http.StatusConflict, gin.H{"success": false, "message": "booking has already been accepted by another worker"})
				default:
					log.Printf("Error accepting offer %s for worker %d: %s\n", body.BookingID, body.WorkerID, err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error while processing request"})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"booking": row, "missed_count": demoted}})
		}).
		POST("/reject-booking-alert", func(ctx *gin.Context) {
			var body types.AlertActionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			if err := lifecycle.RejectOffer(body.BookingID, body.WorkerID, body.Reason); err != nil {
				if errors.Is(err, lifecycle.ErrAlreadyProcessed) {
					ctx.JSON(http.StatusOK, gin.H{"success": false, "message": "offer has already been processed"})
					return
				}
				log.Printf("Error rejecting offer %s for worker %d: %s\n", body.BookingID, body.WorkerID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "offer rejected"})
		})
	return g
}
